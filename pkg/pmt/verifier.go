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
	"crypto/ecdsa"
	"crypto/sha256"
)

// verifyECDSA verifies a DER-encoded ECDSA-SHA256 signature over data
// against the given P-256 public key. It never returns a reason beyond
// true/false: the caller folds every failure (bad DER, wrong curve, bad
// signature) into the same "no match" outcome, since spec §4.2 requires
// verification to never reveal which check failed.
func verifyECDSA(pub *ecdsa.PublicKey, data, derSignature []byte) bool {
	if pub == nil || len(derSignature) == 0 {
		return false
	}
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], derSignature)
}

// verifyAny reports whether any (key, signature) pair verifies data. It
// implements the "succeed on any; report only if all fail" fold spec §4.2
// and §9 call for: every combination is tried, and a single caller-visible
// bool is all that escapes.
func verifyAny(keys []*ecdsa.PublicKey, data []byte, signatures [][]byte) bool {
	for _, key := range keys {
		for _, sig := range signatures {
			if verifyECDSA(key, data, sig) {
				return true
			}
		}
	}
	return false
}
