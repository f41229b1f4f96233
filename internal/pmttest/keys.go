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

// Package pmttest provides small test-only helpers shared across the pmt
// test suite, mirroring the role of the teacher's pkg/keys/testing.go.
package pmttest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
)

// MustGenerateKey generates a fresh P-256 key pair for use in tests, calling
// tb.Fatal on failure.
func MustGenerateKey(tb testing.TB) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	tb.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("failed to generate key: %v", err)
	}
	return priv, &priv.PublicKey
}
