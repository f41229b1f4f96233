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
	"encoding/json"

	"github.com/google/payment-method-token/pkg/base64util"
)

// hybridContextInfo is the HKDF "info" parameter for hybrid decryption. It
// is fixed regardless of protocol version (spec §9's resolution of the
// ECv2-context-info open question: the original implementation never varies
// it by version, so neither do we).
var hybridContextInfo = []byte("Google")

// Recipient verifies and decrypts sealed Payment Method Tokens for one
// (senderID, recipientID, protocolVersion) triple. A Recipient is built once
// via RecipientBuilder and is safe for concurrent use: Unseal reads its
// configuration but never mutates it.
type Recipient struct {
	protocolVersion ProtocolVersion
	senderID        string
	recipientID     string
	providers       []senderKeyProvider
	decrypters      []*hybridDecrypter
	clock           clockFunc
}

// payloadExpiration is the shape consulted, if present, after decryption
// (spec §4.5 step 6). A payload without messageExpiration is accepted
// without an expiration check, matching ECv1 tokens that never carry one.
type payloadExpiration struct {
	MessageExpiration string `json:"messageExpiration"`
}

// Unseal verifies and decrypts a sealed token, returning the decrypted
// message payload as a string. Every failure returns a *Error whose Kind
// identifies the stage that failed without revealing further detail (spec
// §4.6): callers should branch on errors.Is against the Err* sentinels, not
// on the error text.
func (r *Recipient) Unseal(ctx context.Context, sealed string) (string, error) {
	now := r.clock()

	env, err := parseEnvelope(sealed, r.protocolVersion)
	if err != nil {
		return "", err
	}

	signedBytes := lengthValue(r.senderID, r.recipientID, env.ProtocolVersion, env.SignedMessage)

	providers := r.providers
	if r.protocolVersion == ECv2 {
		oneShot, err := verifyIntermediateSigningKey(ctx, r.providers, r.senderID, r.protocolVersion, now, env.IntermediateSigningKey)
		if err != nil {
			return "", err
		}
		providers = []senderKeyProvider{oneShot}
	}

	if err := verifyWithProviders(ctx, providers, r.protocolVersion, now, signedBytes, [][]byte{env.Signature}); err != nil {
		return "", err
	}

	ciphertext, err := base64util.DecodeString(env.SignedMessage)
	if err != nil {
		return "", newError(KindDecryption, "cannot decrypt", nil)
	}

	plaintext, err := decryptAny(r.decrypters, ciphertext)
	if err != nil {
		return "", err
	}

	if err := checkPayloadExpiration(plaintext, now); err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// checkPayloadExpiration enforces messageExpiration when the decrypted
// payload is JSON and carries one. A non-JSON payload, or JSON without the
// field, passes unchecked: messageExpiration is an application-level
// convention, not a protocol requirement.
func checkPayloadExpiration(plaintext []byte, now int64) error {
	var p payloadExpiration
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil
	}
	if p.MessageExpiration == "" {
		return nil
	}
	exp, perr := parseExpirationMillis(p.MessageExpiration)
	if perr != nil {
		return perr
	}
	if expired(exp, now) {
		return newError(KindExpiration, "decrypted payload has expired", nil)
	}
	return nil
}
