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
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/google/payment-method-token/pkg/base64util"
)

// parseECPublicKey decodes an EC public key supplied either as a bare
// base64-encoded X.509 SubjectPublicKeyInfo (the shape used inside the
// envelope and the trusted-keys JSON) or as a PEM-wrapped SPKI block (the
// shape operators tend to paste into builder calls by hand).
func parseECPublicKey(s string) (*ecdsa.PublicKey, error) {
	der, err := spkiDERBytes(s)
	if err != nil {
		return nil, err
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("x509.ParsePKIXPublicKey: %w", err)
	}

	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
	return ecPub, nil
}

// parseECPrivateKey decodes an EC private key supplied either as a bare
// base64-encoded PKCS#8 document or a PEM-wrapped one.
func parseECPrivateKey(s string) (*ecdsa.PrivateKey, error) {
	der, err := pkcs8DERBytes(s)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("x509.ParsePKCS8PrivateKey: %w", err)
	}

	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type: %T", key)
	}
	return ecKey, nil
}

func spkiDERBytes(s string) ([]byte, error) {
	if block, _ := pem.Decode([]byte(s)); block != nil {
		return block.Bytes, nil
	}
	der, err := base64util.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	return der, nil
}

func pkcs8DERBytes(s string) ([]byte, error) {
	if block, _ := pem.Decode([]byte(s)); block != nil {
		return block.Bytes, nil
	}
	der, err := base64util.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}
	return der, nil
}
