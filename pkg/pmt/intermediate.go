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
	"strings"
)

// signedKeyDocument is the JSON payload carried (as a string) inside
// intermediateSigningKey.signedKey. Unlike trustedKeysDocument, unrecognized
// fields are permitted here: the signedKey payload is itself signed by the
// root keys, so tolerating forward-compatible additions does not weaken the
// protocol, and rejecting them would break recipients running against newer
// senders (spec §3).
type signedKeyDocument struct {
	KeyValue      string `json:"keyValue"`
	KeyExpiration string `json:"keyExpiration"`
}

// oneShotKeyProvider wraps the single EC public key recovered from a
// verified intermediate signing key. It satisfies senderKeyProvider so the
// outer envelope signature can be checked exactly like the ECv1 case, but
// only ever yields its key for the protocol version the intermediate key
// was itself issued under.
type oneShotKeyProvider struct {
	version ProtocolVersion
	key     *ecdsa.PublicKey
}

func (p *oneShotKeyProvider) Keys(ctx context.Context, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error) {
	if version != p.version {
		return nil, nil
	}
	return []*ecdsa.PublicKey{p.key}, nil
}

// verifyIntermediateSigningKey runs the ECv2 intermediate-signing-key
// sub-protocol (spec §3, §4.5 step 2): it reconstructs the signed bytes over
// (senderID, protocolVersion, signedKey), verifies them against the
// root/sender keys resolved from rootProviders, then parses and validates
// the signedKey payload itself (keyValue present, keyExpiration present and
// unexpired). On
// success it returns a one-shot provider vending the intermediate key, which
// the caller uses in place of rootProviders to verify the outer envelope
// signature.
func verifyIntermediateSigningKey(ctx context.Context, rootProviders []senderKeyProvider, senderID string, version ProtocolVersion, now int64, ik *intermediateSigningKeyEnvelope) (senderKeyProvider, error) {
	innerSignedBytes := lengthValue(senderID, version.String(), ik.SignedKey)

	if err := verifyWithProviders(ctx, rootProviders, version, now, innerSignedBytes, ik.Signatures); err != nil {
		return nil, err
	}

	var doc signedKeyDocument
	dec := json.NewDecoder(strings.NewReader(ik.SignedKey))
	if err := dec.Decode(&doc); err != nil {
		return nil, newError(KindEnvelopeShape, "malformed signedKey document", err)
	}
	if doc.KeyValue == "" {
		return nil, shapeError("signedKey document missing keyValue")
	}

	if doc.KeyExpiration == "" {
		return nil, newError(KindExpiration, "signedKey document missing keyExpiration", nil)
	}
	expMillis, perr := parseExpirationMillis(doc.KeyExpiration)
	if perr != nil {
		return nil, perr
	}
	if expired(expMillis, now) {
		return nil, newError(KindExpiration, "intermediate signing key has expired", nil)
	}

	pub, err := parseECPublicKey(doc.KeyValue)
	if err != nil {
		return nil, newError(KindEnvelopeShape, "signedKey keyValue is not a valid EC public key", err)
	}

	return &oneShotKeyProvider{version: version, key: pub}, nil
}
