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
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/payment-method-token/internal/pmttest"
)

func TestParseECPublicKey_Base64(t *testing.T) {
	t.Parallel()

	_, pub := pmttest.MustGenerateKey(t)
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}

	got, err := parseECPublicKey(base64.StdEncoding.EncodeToString(der))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(pub) {
		t.Fatal("decoded public key does not match original")
	}
}

func TestParseECPublicKey_DecodeError(t *testing.T) {
	t.Parallel()

	if _, err := parseECPublicKey("not valid base64!!!"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseECPublicKey_WrongKeyType(t *testing.T) {
	t.Parallel()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&pk.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseECPublicKey(base64.StdEncoding.EncodeToString(der))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if want := "unsupported public key type"; !strings.Contains(err.Error(), want) {
		t.Fatalf("wrong error, want %q, got %q", want, err.Error())
	}
}

func TestParseECPrivateKey_Base64(t *testing.T) {
	t.Parallel()

	priv, _ := pmttest.MustGenerateKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	got, err := parseECPrivateKey(base64.StdEncoding.EncodeToString(der))
	if err != nil {
		t.Fatal(err)
	}
	if got.Curve != elliptic.P256() || got.D.Cmp(priv.D) != 0 {
		t.Fatal("decoded private key does not match original")
	}
}

func TestParseECPrivateKey_WrongKeyType(t *testing.T) {
	t.Parallel()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(pk)
	if err != nil {
		t.Fatal(err)
	}

	_, err = parseECPrivateKey(base64.StdEncoding.EncodeToString(der))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
