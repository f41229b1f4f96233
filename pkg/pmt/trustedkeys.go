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
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
)

// trustedKeysDocument is the shape of the Google trusted-signing-keys JSON:
// {"keys": [{"keyValue": "...", "protocolVersion": "ECv1", "keyExpiration": "..."}]}
type trustedKeysDocument struct {
	Keys []trustedKeyEntry `json:"keys"`
}

type trustedKeyEntry struct {
	KeyValue        string `json:"keyValue"`
	ProtocolVersion string `json:"protocolVersion"`
	KeyExpiration   string `json:"keyExpiration,omitempty"`
}

// parseTrustedKeys extracts the non-expired EC verifying keys for the given
// protocol version out of a Google trusted-keys JSON document.
//
// keyExpiration is required for ECv2 entries (spec §3): an ECv2 entry
// without one is treated as absent, same as an expired one. It is optional
// for ECv1 entries, where the fetch cache's own TTL is the expiration
// authority. A malformed (non-numeric) keyExpiration is an error, not a
// missing one (spec §9's resolution of the Long.parseLong open question).
func parseTrustedKeys(data []byte, version ProtocolVersion, now int64) ([]*ecdsa.PublicKey, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc trustedKeysDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, newError(KindKeyFetch, "malformed trusted keys document", err)
	}

	var keys []*ecdsa.PublicKey
	for _, entry := range doc.Keys {
		if entry.ProtocolVersion != version.String() {
			continue
		}

		if entry.KeyExpiration == "" {
			if version == ECv2 {
				continue
			}
		} else {
			exp, perr := parseExpirationMillis(entry.KeyExpiration)
			if perr != nil {
				return nil, perr
			}
			if expired(exp, now) {
				continue
			}
		}

		pub, err := parseECPublicKey(entry.KeyValue)
		if err != nil {
			return nil, newError(KindKeyFetch, fmt.Sprintf("invalid keyValue for protocolVersion %v", version), err)
		}
		keys = append(keys, pub)
	}

	if len(keys) == 0 {
		return nil, newError(KindKeyFetch, fmt.Sprintf("no trusted keys available for protocol version %v", version), nil)
	}
	return keys, nil
}
