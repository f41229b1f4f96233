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
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/payment-method-token/internal/pmttest"
)

func buildIntermediateEnvelope(t *testing.T, senderID string, version ProtocolVersion, rootPriv *ecdsa.PrivateKey, intermediatePub *ecdsa.PublicKey, keyExpiration string) *intermediateSigningKeyEnvelope {
	t.Helper()

	signedKeyDoc, err := json.Marshal(map[string]string{
		"keyValue":      marshalKey(t, intermediatePub),
		"keyExpiration": keyExpiration,
	})
	if err != nil {
		t.Fatal(err)
	}
	innerSignedBytes := lengthValue(senderID, version.String(), string(signedKeyDoc))

	return &intermediateSigningKeyEnvelope{
		SignedKey:  string(signedKeyDoc),
		Signatures: [][]byte{sign(t, rootPriv, innerSignedBytes)},
	}
}

func TestVerifyIntermediateSigningKey_Valid(t *testing.T) {
	t.Parallel()

	rootPriv, rootPub := pmttest.MustGenerateKey(t)
	_, intermediatePub := pmttest.MustGenerateKey(t)

	ik := buildIntermediateEnvelope(t, "Google", ECv2, rootPriv, intermediatePub, "99999999999999")

	providers := []senderKeyProvider{&literalKeyProvider{keys: []*ecdsa.PublicKey{rootPub}}}
	_, err := verifyIntermediateSigningKey(context.Background(), providers, "Google", ECv2, 1000, ik)
	if err != nil {
		t.Fatal(err)
	}
}

func TestVerifyIntermediateSigningKey_ExpiredRejected(t *testing.T) {
	t.Parallel()

	rootPriv, rootPub := pmttest.MustGenerateKey(t)
	_, intermediatePub := pmttest.MustGenerateKey(t)

	ik := buildIntermediateEnvelope(t, "Google", ECv2, rootPriv, intermediatePub, "0")

	providers := []senderKeyProvider{&literalKeyProvider{keys: []*ecdsa.PublicKey{rootPub}}}
	_, err := verifyIntermediateSigningKey(context.Background(), providers, "Google", ECv2, 1000, ik)
	if err == nil {
		t.Fatal("expected expired intermediate key to be rejected")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindExpiration {
		t.Fatalf("expected KindExpiration, got %v", err)
	}
}

func TestVerifyIntermediateSigningKey_BadRootSignatureFails(t *testing.T) {
	t.Parallel()

	_, rootPub := pmttest.MustGenerateKey(t)
	wrongPriv, _ := pmttest.MustGenerateKey(t)
	_, intermediatePub := pmttest.MustGenerateKey(t)

	ik := buildIntermediateEnvelope(t, "Google", ECv2, wrongPriv, intermediatePub, "99999999999999")

	providers := []senderKeyProvider{&literalKeyProvider{keys: []*ecdsa.PublicKey{rootPub}}}
	_, err := verifyIntermediateSigningKey(context.Background(), providers, "Google", ECv2, 1000, ik)
	if err == nil {
		t.Fatal("expected signature verification to fail")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindSignature {
		t.Fatalf("expected KindSignature, got %v", err)
	}
}

func TestOneShotKeyProvider_OnlyMatchesConfiguredVersion(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	p := &oneShotKeyProvider{version: ECv2, key: pub}

	keys, err := p.Keys(context.Background(), ECv2, 0)
	if err != nil || len(keys) != 1 {
		t.Fatalf("expected the key for ECv2, got %v, %v", keys, err)
	}

	keys, err = p.Keys(context.Background(), ECv1, 0)
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected no keys for ECv1, got %v, %v", keys, err)
	}
}
