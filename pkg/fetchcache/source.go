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

// Package fetchcache provides a TTL-bounded cache over an external source of
// trusted-keys JSON, standing in for Google's HTTP-served trusted signing
// keys endpoint. It implements pmt.KeyJSONSource so a Recipient can be
// wired directly to it via RecipientBuilder.FetchSenderVerifyingKeysWith.
package fetchcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source fetches the current trusted-keys JSON document from some external
// collaborator.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPSource fetches a trusted-keys document over HTTP GET, bounding the
// request with its own timeout independent of the caller's context deadline
// (grounded on the teacher's pkg/jwks.Manager.getKeys).
type HTTPSource struct {
	URL        string
	Timeout    time.Duration // default 5s
	HTTPClient *http.Client  // default http.DefaultClient
}

func (s *HTTPSource) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return 5 * time.Second
}

func (s *HTTPSource) client() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	reqCtx, done := context.WithTimeout(ctx, s.timeout())
	defer done()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching trusted keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trusted keys endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
