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
	"net/http"
	"time"
)

// Config defines how a Cache of HTTPSources is constructed from the
// environment.
type Config struct {
	// URLs is a comma-separated list of trusted-keys endpoints. More than
	// one entry lets a recipient trust two providers simultaneously during
	// a key-distribution migration.
	URLs []string `env:"PMT_TRUSTED_KEYS_URLS"`

	// TTL bounds how long a fetched document is served before a refresh is
	// attempted.
	TTL time.Duration `env:"PMT_TRUSTED_KEYS_TTL, default=1h"`

	// FetchTimeout bounds a single HTTP GET to a trusted-keys endpoint.
	FetchTimeout time.Duration `env:"PMT_TRUSTED_KEYS_FETCH_TIMEOUT, default=5s"`

	// MaxRetries is the number of additional attempts per source, per
	// refresh, before that source is considered failed for this refresh.
	MaxRetries uint64 `env:"PMT_TRUSTED_KEYS_MAX_RETRIES, default=2"`
}

// NewCacheFromConfig builds a Cache with one HTTPSource per configured URL.
func NewCacheFromConfig(cfg *Config) *Cache {
	sources := make([]Source, 0, len(cfg.URLs))
	for _, u := range cfg.URLs {
		sources = append(sources, &HTTPSource{
			URL:        u,
			Timeout:    cfg.FetchTimeout,
			HTTPClient: http.DefaultClient,
		})
	}
	return New(sources, cfg.TTL, cfg.MaxRetries)
}
