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
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	hmacTagSize = sha256.Size // HMAC-SHA256
	aesKeySize  = 32          // AES-256
	macKeySize  = 32
)

// hybridDecrypter is an ECIES construction: ECDH (possibly delegated to a
// KEM) feeds HKDF, which derives an AES-CTR key and an HMAC-SHA256 key
// (spec §4.4, C6). contextInfo is the HKDF "info" parameter; per spec §9's
// open question it is the constant "Google" even on the ECv2 path.
type hybridDecrypter struct {
	kem         KEM
	contextInfo []byte
}

func newHybridDecrypterFromPrivateKey(priv *ecdsa.PrivateKey, contextInfo []byte) *hybridDecrypter {
	return newHybridDecrypterFromKEM(&privateKeyKEM{priv: priv}, contextInfo)
}

func newHybridDecrypterFromKEM(kem KEM, contextInfo []byte) *hybridDecrypter {
	return &hybridDecrypter{kem: kem, contextInfo: contextInfo}
}

// decrypt parses the ciphertext envelope (ephemeral public key || AES-CTR
// ciphertext || HMAC tag), derives keys, verifies the tag in constant time,
// and returns the plaintext.
func (d *hybridDecrypter) decrypt(ciphertext []byte) ([]byte, error) {
	ephemeralPub, body, err := splitHybridCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}
	if len(body) < hmacTagSize {
		return nil, fmt.Errorf("ciphertext too short to contain an HMAC tag")
	}
	ctBody, tag := body[:len(body)-hmacTagSize], body[len(body)-hmacTagSize:]

	shared, err := d.kem.SharedSecret(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("KEM shared secret: %w", err)
	}

	aesKey, macKey, err := deriveKeys(shared, d.contextInfo)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(ctBody)
	wantTag := mac.Sum(nil)
	if !hmac.Equal(wantTag, tag) {
		return nil, fmt.Errorf("HMAC tag mismatch")
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	plaintext := make([]byte, len(ctBody))
	iv := make([]byte, aes.BlockSize)
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ctBody)

	return plaintext, nil
}

// deriveKeys runs HKDF-SHA256 over the ECDH shared secret with an empty
// salt and contextInfo as info, splitting the output into an AES-256 key
// followed by an HMAC-SHA256 key.
func deriveKeys(sharedSecret, contextInfo []byte) (aesKey, macKey []byte, err error) {
	kdf := hkdf.New(sha256.New, sharedSecret, nil, contextInfo)
	material := make([]byte, aesKeySize+macKeySize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, nil, fmt.Errorf("hkdf: %w", err)
	}
	return material[:aesKeySize], material[aesKeySize:], nil
}

// splitHybridCiphertext parses the Tink-style EC-AES-CTR-HMAC wire layout:
// a one-byte ephemeral-point length, the uncompressed SEC1 point itself,
// then the remaining bytes (AES-CTR ciphertext followed by the HMAC tag).
func splitHybridCiphertext(ciphertext []byte) (*ecdsa.PublicKey, []byte, error) {
	if len(ciphertext) < 1 {
		return nil, nil, fmt.Errorf("ciphertext is empty")
	}
	pointLen := int(ciphertext[0])
	if len(ciphertext) < 1+pointLen {
		return nil, nil, fmt.Errorf("ciphertext truncated before ephemeral public key")
	}

	curve := elliptic.P256()
	pointBytes := ciphertext[1 : 1+pointLen]
	x, y := elliptic.Unmarshal(curve, pointBytes)
	if x == nil {
		return nil, nil, fmt.Errorf("invalid ephemeral public key point")
	}

	ephemeral := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return ephemeral, ciphertext[1+pointLen:], nil
}

// decryptAny tries every decrypter in order and returns the first success
// (spec §4.4: "tried in order; the first that returns plaintext wins").
// Individual decrypter failures are not distinguished in the returned
// error: only "cannot decrypt" escapes, per spec §4.6.
func decryptAny(decrypters []*hybridDecrypter, ciphertext []byte) ([]byte, error) {
	for _, d := range decrypters {
		if pt, err := d.decrypt(ciphertext); err == nil {
			return pt, nil
		}
	}
	return nil, newError(KindDecryption, "cannot decrypt", nil)
}
