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
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEnvelope_ECv1_WellFormed(t *testing.T) {
	t.Parallel()

	sig := base64.StdEncoding.EncodeToString([]byte("signature-bytes"))
	raw := `{"protocolVersion":"ECv1","signature":"` + sig + `","signedMessage":"opaque"}`

	env, err := parseEnvelope(raw, ECv1)
	if err != nil {
		t.Fatal(err)
	}
	if env.SignedMessage != "opaque" {
		t.Fatalf("got signedMessage %q", env.SignedMessage)
	}
	if env.IntermediateSigningKey != nil {
		t.Fatal("expected no intermediateSigningKey for ECv1")
	}
}

func TestParseEnvelope_ECv1_ExtraKeyRejected(t *testing.T) {
	t.Parallel()

	raw := `{"protocolVersion":"ECv1","signature":"AA==","signedMessage":"x","extra":"y"}`
	_, err := parseEnvelope(raw, ECv1)
	wantShapeError(t, err)
}

func TestParseEnvelope_ECv1_MissingIntermediateKeyRejected(t *testing.T) {
	t.Parallel()

	// A 3-key envelope presented against a recipient configured for ECv2.
	raw := `{"protocolVersion":"ECv2","signature":"AA==","signedMessage":"x"}`
	_, err := parseEnvelope(raw, ECv2)
	wantShapeError(t, err)
}

func TestParseEnvelope_ProtocolVersionMismatch(t *testing.T) {
	t.Parallel()

	raw := `{"protocolVersion":"ECv2","signature":"AA==","signedMessage":"x"}`
	_, err := parseEnvelope(raw, ECv1)
	wantShapeError(t, err)
}

func TestParseEnvelope_ECv2_WellFormed(t *testing.T) {
	t.Parallel()

	raw := `{
		"protocolVersion": "ECv2",
		"signature": "AA==",
		"signedMessage": "opaque",
		"intermediateSigningKey": {
			"signedKey": "{\"keyValue\":\"abc\",\"keyExpiration\":\"123\"}",
			"signatures": ["AA==", "AQ=="]
		}
	}`
	env, err := parseEnvelope(raw, ECv2)
	if err != nil {
		t.Fatal(err)
	}
	if env.IntermediateSigningKey == nil {
		t.Fatal("expected intermediateSigningKey to be parsed")
	}
	if len(env.IntermediateSigningKey.Signatures) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(env.IntermediateSigningKey.Signatures))
	}
}

func TestParseEnvelope_ECv2_StructuralShape(t *testing.T) {
	t.Parallel()

	raw := `{
		"protocolVersion": "ECv2",
		"signature": "AQID",
		"signedMessage": "opaque",
		"intermediateSigningKey": {
			"signedKey": "{\"keyValue\":\"abc\",\"keyExpiration\":\"123\"}",
			"signatures": ["AA==", "AQ=="]
		}
	}`
	got, err := parseEnvelope(raw, ECv2)
	if err != nil {
		t.Fatal(err)
	}

	want := &envelope{
		ProtocolVersion: "ECv2",
		Signature:       []byte{0x01, 0x02, 0x03},
		SignedMessage:   "opaque",
		IntermediateSigningKey: &intermediateSigningKeyEnvelope{
			SignedKey:  `{"keyValue":"abc","keyExpiration":"123"}`,
			Signatures: [][]byte{{0x00}, {0x01}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseEnvelope() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEnvelope_ECv2_IntermediateSigningKeyExtraFieldRejected(t *testing.T) {
	t.Parallel()

	raw := `{
		"protocolVersion": "ECv2",
		"signature": "AA==",
		"signedMessage": "opaque",
		"intermediateSigningKey": {
			"signedKey": "x",
			"signatures": ["AA=="],
			"extra": "y"
		}
	}`
	_, err := parseEnvelope(raw, ECv2)
	wantShapeError(t, err)
}

func TestParseEnvelope_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := parseEnvelope("not json", ECv1)
	wantShapeError(t, err)
}

func TestParseEnvelope_InvalidBase64Signature(t *testing.T) {
	t.Parallel()

	raw := `{"protocolVersion":"ECv1","signature":"not base64!!","signedMessage":"x"}`
	_, err := parseEnvelope(raw, ECv1)
	wantShapeError(t, err)
}

func wantShapeError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindEnvelopeShape {
		t.Fatalf("expected KindEnvelopeShape, got %v", err)
	}
}
