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
	"encoding/json"
	"fmt"

	"github.com/google/payment-method-token/pkg/base64util"
)

// envelope is the parsed, but not yet verified or decrypted, sealed token.
type envelope struct {
	ProtocolVersion        string
	Signature              []byte
	SignedMessage          string
	IntermediateSigningKey *intermediateSigningKeyEnvelope // nil for ECv1
}

// intermediateSigningKeyEnvelope is the ECv2-only {signedKey, signatures[]}
// block (spec §3).
type intermediateSigningKeyEnvelope struct {
	SignedKey  string
	Signatures [][]byte
}

func shapeError(msg string) *Error {
	return newError(KindEnvelopeShape, msg, nil)
}

// parseEnvelope decodes and shape-validates a sealed token for the given
// protocol version: ECv1 requires exactly the three keys protocolVersion,
// signature, signedMessage; ECv2 additionally requires
// intermediateSigningKey. Any deviation is a security failure (spec §4.5
// step 1).
func parseEnvelope(sealed string, version ProtocolVersion) (*envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sealed), &raw); err != nil {
		return nil, newError(KindEnvelopeShape, "malformed envelope JSON", err)
	}

	wantKeys := 3
	if version == ECv2 {
		wantKeys = 4
	}
	if len(raw) != wantKeys {
		return nil, shapeError(fmt.Sprintf("envelope has %d top-level keys, want %d for %v", len(raw), wantKeys, version))
	}

	pvStr, err := requireString(raw, "protocolVersion")
	if err != nil {
		return nil, err
	}
	parsedVersion, perr := ParseProtocolVersion(pvStr)
	if perr != nil {
		return nil, perr
	}
	if parsedVersion != version {
		return nil, shapeError(fmt.Sprintf("envelope protocolVersion %q does not match configured %v", pvStr, version))
	}

	sigStr, err := requireString(raw, "signature")
	if err != nil {
		return nil, err
	}
	sigBytes, err := base64util.DecodeString(sigStr)
	if err != nil {
		return nil, shapeError("signature is not valid base64")
	}

	signedMessage, err := requireString(raw, "signedMessage")
	if err != nil {
		return nil, err
	}

	env := &envelope{
		ProtocolVersion: pvStr,
		Signature:       sigBytes,
		SignedMessage:   signedMessage,
	}

	if version == ECv2 {
		ikRaw, ok := raw["intermediateSigningKey"]
		if !ok {
			return nil, shapeError("missing intermediateSigningKey")
		}
		ik, err := parseIntermediateSigningKeyEnvelope(ikRaw)
		if err != nil {
			return nil, err
		}
		env.IntermediateSigningKey = ik
	}

	return env, nil
}

func parseIntermediateSigningKeyEnvelope(raw json.RawMessage) (*intermediateSigningKeyEnvelope, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, shapeError("malformed intermediateSigningKey")
	}
	if len(m) != 2 {
		return nil, shapeError(fmt.Sprintf("intermediateSigningKey has %d keys, want 2", len(m)))
	}

	signedKey, err := requireString(m, "signedKey")
	if err != nil {
		return nil, err
	}

	sigsRaw, ok := m["signatures"]
	if !ok {
		return nil, shapeError("intermediateSigningKey missing signatures")
	}
	var sigsB64 []string
	if err := json.Unmarshal(sigsRaw, &sigsB64); err != nil {
		return nil, shapeError("intermediateSigningKey.signatures is not a string array")
	}

	sigs := make([][]byte, len(sigsB64))
	for i, s := range sigsB64 {
		b, err := base64util.DecodeString(s)
		if err != nil {
			return nil, shapeError(fmt.Sprintf("intermediateSigningKey.signatures[%d] is not valid base64", i))
		}
		sigs[i] = b
	}

	return &intermediateSigningKeyEnvelope{SignedKey: signedKey, Signatures: sigs}, nil
}

func requireString(m map[string]json.RawMessage, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", shapeError(fmt.Sprintf("missing required field %q", key))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", shapeError(fmt.Sprintf("field %q is not a string", key))
	}
	return s, nil
}
