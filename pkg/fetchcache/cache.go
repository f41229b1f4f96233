// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fetchcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-retry"
)

// Cache refreshes one or more trusted-keys sources on a TTL and merges their
// "keys" arrays into a single document, satisfying pmt.KeyJSONSource. Having
// more than one Source lets a recipient trust keys served by two
// independent endpoints (e.g. during a provider migration) without the pmt
// package itself knowing anything about HTTP.
//
// On a refresh failure, Cache serves the last successfully fetched document
// rather than failing the call, as long as one exists; only a cold cache
// (no prior successful fetch) propagates the error. This mirrors Google's
// own trusted-keys client, which tolerates transient endpoint outages by
// trusting its last good copy until it expires.
type Cache struct {
	sources    []Source
	ttl        time.Duration
	maxRetries uint64
	retryWait  time.Duration

	mu        sync.RWMutex
	doc       []byte
	fetchedAt time.Time

	refreshMu sync.Mutex
}

// New returns a Cache refreshing from sources at most once per ttl, retrying
// each source's fetch up to maxRetries times with a short constant backoff
// before giving up on that source for the current refresh.
func New(sources []Source, ttl time.Duration, maxRetries uint64) *Cache {
	return &Cache{
		sources:    sources,
		ttl:        ttl,
		maxRetries: maxRetries,
		retryWait:  200 * time.Millisecond,
	}
}

// Get returns the current merged trusted-keys JSON, refreshing it first if
// the TTL has elapsed. It implements pmt.KeyJSONSource.
func (c *Cache) Get(ctx context.Context) ([]byte, error) {
	if doc, ok := c.freshDoc(); ok {
		return doc, nil
	}
	return c.refresh(ctx)
}

func (c *Cache) freshDoc() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.doc) == 0 || time.Since(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.doc, true
}

func (c *Cache) refresh(ctx context.Context) ([]byte, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if doc, ok := c.freshDoc(); ok {
		return doc, nil
	}

	type fetchResult struct {
		body []byte
		err  error
	}
	results := make([]fetchResult, len(c.sources))

	var wg sync.WaitGroup
	for i, src := range c.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			b := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryWait))
			var body []byte
			err := retry.Do(ctx, b, func(ctx context.Context) error {
				data, ferr := src.Fetch(ctx)
				if ferr != nil {
					return retry.RetryableError(ferr)
				}
				body = data
				return nil
			})
			results[i] = fetchResult{body: body, err: err}
		}(i, src)
	}
	wg.Wait()

	var merr *multierror.Error
	var docs [][]byte
	for _, r := range results {
		if r.err != nil {
			merr = multierror.Append(merr, r.err)
			continue
		}
		docs = append(docs, r.body)
	}

	if len(docs) == 0 {
		if stale, ok := c.staleDoc(); ok {
			return stale, nil
		}
		return nil, fmt.Errorf("refreshing trusted keys: %w", merr.ErrorOrNil())
	}

	merged, err := mergeTrustedKeysDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("merging trusted keys documents: %w", err)
	}

	c.mu.Lock()
	c.doc = merged
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return merged, nil
}

// staleDoc returns whatever was last cached, regardless of TTL, for use as a
// fallback when every source fails on refresh.
func (c *Cache) staleDoc() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.doc) == 0 {
		return nil, false
	}
	return c.doc, true
}

// trustedKeysEnvelope is the minimal shape fetchcache needs to merge
// documents from multiple sources; it treats each key entry as opaque JSON
// so it never has to agree with pmt's internal struct tags.
type trustedKeysEnvelope struct {
	Keys []json.RawMessage `json:"keys"`
}

func mergeTrustedKeysDocuments(docs [][]byte) ([]byte, error) {
	var merged trustedKeysEnvelope
	for _, d := range docs {
		var env trustedKeysEnvelope
		if err := json.Unmarshal(d, &env); err != nil {
			return nil, fmt.Errorf("parsing trusted keys document: %w", err)
		}
		merged.Keys = append(merged.Keys, env.Keys...)
	}
	return json.Marshal(merged)
}
