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

package pmt

import (
	"context"
	"crypto/ecdsa"
)

// senderKeyProvider is a polymorphic source of sender EC verifying keys for
// a requested protocol version (spec §4.3, C4). It may fail with a
// key-fetch error. Three variants are provided: literal, trusted-JSON, and
// fetching. A Recipient may carry several, consulted in insertion order.
type senderKeyProvider interface {
	Keys(ctx context.Context, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error)
}

// literalKeyProvider carries a fixed list of keys and never errors.
type literalKeyProvider struct {
	keys []*ecdsa.PublicKey
}

func (p *literalKeyProvider) Keys(ctx context.Context, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error) {
	return p.keys, nil
}

// trustedJSONProvider parses a fixed JSON string (C5) on every call,
// returning only keys whose protocolVersion matches and whose keyExpiration
// (if present) is strictly in the future.
type trustedJSONProvider struct {
	json string
}

func (p *trustedJSONProvider) Keys(ctx context.Context, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error) {
	return parseTrustedKeys([]byte(p.json), version, now)
}

// KeyJSONSource produces the current trusted-keys JSON document from an
// external collaborator (an HTTP fetch, a cache with its own refresh
// discipline, …). fetchcache.Cache implements this interface; it is defined
// here, rather than imported from the fetchcache package, so that pmt has no
// dependency on any particular fetch/cache implementation (spec §1 keeps
// the key-distribution manager an external collaborator).
type KeyJSONSource interface {
	Get(ctx context.Context) ([]byte, error)
}

// fetchingProvider delegates the JSON string to an external source on every
// call; fetch errors surface as key-fetch failures.
type fetchingProvider struct {
	source KeyJSONSource
}

func (p *fetchingProvider) Keys(ctx context.Context, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error) {
	data, err := p.source.Get(ctx)
	if err != nil {
		return nil, newError(KindKeyFetch, "fetching trusted keys", err)
	}
	return parseTrustedKeys(data, version, now)
}

// anySenderKeys resolves the union of keys across every configured
// provider, in configured order, swallowing individual provider failures
// until all have been tried (spec §4.3's "consulted in configured insertion
// order" combined with §4.5 step 4's "no pair verified" fold).
func anySenderKeys(ctx context.Context, providers []senderKeyProvider, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, []error) {
	var keys []*ecdsa.PublicKey
	var errs []error
	for _, p := range providers {
		ks, err := p.Keys(ctx, version, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys = append(keys, ks...)
	}
	return keys, errs
}

// verifyWithProviders resolves the union of keys across providers and
// checks whether any (key, signature) pair verifies data. If no provider
// produced a single key, the first provider error (if any) surfaces as
// KindKeyFetch; otherwise a failed verification is reported as
// KindSignature, regardless of provider-level errors swallowed along the
// way (spec §4.5 step 4: "verification exceptions from individual trials
// are swallowed; only the final 'no pair verified' is reported").
func verifyWithProviders(ctx context.Context, providers []senderKeyProvider, version ProtocolVersion, now int64, data []byte, signatures [][]byte) error {
	keys, errs := anySenderKeys(ctx, providers, version, now)
	if len(keys) == 0 && len(errs) > 0 {
		return newError(KindKeyFetch, "no sender verifying keys available", errs[0])
	}
	if !verifyAny(keys, data, signatures) {
		return newError(KindSignature, "no signing key and signature pair verified", nil)
	}
	return nil
}
