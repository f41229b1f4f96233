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
	"fmt"
)

// KEM abstracts the ECDH step of hybrid decryption (spec §4.4 step 2, C7)
// so a recipient can keep its long-term private key in an HSM and only
// expose the key-agreement operation.
type KEM interface {
	// SharedSecret performs ECDH between the recipient's long-term key and
	// the sender's ephemeral public key, returning the raw shared secret
	// (the X coordinate of the ECDH result) that feeds HKDF.
	SharedSecret(ephemeral *ecdsa.PublicKey) ([]byte, error)
}

// privateKeyKEM adapts a raw *ecdsa.PrivateKey to the KEM interface so the
// hybrid decrypter never has to special-case "local key" vs "delegated KEM"
// (spec §4.4b).
type privateKeyKEM struct {
	priv *ecdsa.PrivateKey
}

func (k *privateKeyKEM) SharedSecret(ephemeral *ecdsa.PublicKey) ([]byte, error) {
	localECDH, err := k.priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("recipient private key is not ECDH-capable: %w", err)
	}
	remoteECDH, err := ephemeral.ECDH()
	if err != nil {
		return nil, fmt.Errorf("ephemeral public key is not ECDH-capable: %w", err)
	}
	secret, err := localECDH.ECDH(remoteECDH)
	if err != nil {
		return nil, fmt.Errorf("ECDH: %w", err)
	}
	return secret, nil
}
