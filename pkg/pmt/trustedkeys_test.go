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
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/payment-method-token/internal/pmttest"
)

func marshalKey(t *testing.T, pub any) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(der)
}

func TestParseTrustedKeys_ECv1_NoExpirationOK(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	doc, err := json.Marshal(trustedKeysDocument{
		Keys: []trustedKeyEntry{
			{KeyValue: marshalKey(t, pub), ProtocolVersion: "ECv1"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	keys, err := parseTrustedKeys(doc, ECv1, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
}

func TestParseTrustedKeys_ECv2_RequiresExpiration(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	doc, err := json.Marshal(trustedKeysDocument{
		Keys: []trustedKeyEntry{
			{KeyValue: marshalKey(t, pub), ProtocolVersion: "ECv2"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseTrustedKeys(doc, ECv2, 1000)
	if err == nil {
		t.Fatal("expected error when ECv2 entry has no keyExpiration")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindKeyFetch {
		t.Fatalf("expected KindKeyFetch, got %v", err)
	}
}

func TestParseTrustedKeys_ExpiredEntrySkipped(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	doc, err := json.Marshal(trustedKeysDocument{
		Keys: []trustedKeyEntry{
			{KeyValue: marshalKey(t, pub), ProtocolVersion: "ECv2", KeyExpiration: "500"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseTrustedKeys(doc, ECv2, 1000)
	if err == nil {
		t.Fatal("expected no trusted keys available error")
	}
}

func TestParseTrustedKeys_MalformedExpiration(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	doc, err := json.Marshal(trustedKeysDocument{
		Keys: []trustedKeyEntry{
			{KeyValue: marshalKey(t, pub), ProtocolVersion: "ECv1", KeyExpiration: "not-a-number"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseTrustedKeys(doc, ECv1, 1000)
	if err == nil {
		t.Fatal("expected error for malformed keyExpiration")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindExpiration {
		t.Fatalf("expected KindExpiration, got %v", err)
	}
}

func TestParseTrustedKeys_FiltersOtherVersion(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	doc, err := json.Marshal(trustedKeysDocument{
		Keys: []trustedKeyEntry{
			{KeyValue: marshalKey(t, pub), ProtocolVersion: "ECv2", KeyExpiration: "99999999999999"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseTrustedKeys(doc, ECv1, 1000)
	if err == nil {
		t.Fatal("expected no ECv1 keys to be found")
	}
}

func TestParseTrustedKeys_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := parseTrustedKeys([]byte(`{"keys":[{"keyValue":"x","protocolVersion":"ECv1","extra":true}]}`), ECv1, 1000)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}
