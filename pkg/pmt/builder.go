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

import "crypto/ecdsa"

// RecipientBuilder assembles a Recipient. Its methods are chainable and
// mutate builder state only; Build validates the accumulated configuration
// and produces an immutable Recipient (spec §3, §6).
type RecipientBuilder struct {
	protocolVersion ProtocolVersion
	senderID        string
	recipientID     string
	literalKeys     []*ecdsa.PublicKey
	providers       []senderKeyProvider
	privateKeys     []*ecdsa.PrivateKey
	kems            []KEM
	clock           clockFunc

	buildErr error
}

// NewRecipientBuilder returns a builder defaulted to ECv1 and senderID
// "Google", matching the wire protocol's own defaults.
func NewRecipientBuilder() *RecipientBuilder {
	return &RecipientBuilder{
		protocolVersion: ECv1,
		senderID:        "Google",
		clock:           defaultClock,
	}
}

// ProtocolVersion sets which protocol generation this recipient speaks.
func (b *RecipientBuilder) ProtocolVersion(v ProtocolVersion) *RecipientBuilder {
	b.protocolVersion = v
	return b
}

// SenderID overrides the default sender ID ("Google").
func (b *RecipientBuilder) SenderID(id string) *RecipientBuilder {
	b.senderID = id
	return b
}

// RecipientID sets this recipient's ID. Required.
func (b *RecipientBuilder) RecipientID(id string) *RecipientBuilder {
	b.recipientID = id
	return b
}

// AddSenderVerifyingKey adds a single EC public key (PEM or base64 SPKI) as
// a literal, never-expiring trust anchor.
func (b *RecipientBuilder) AddSenderVerifyingKey(key string) *RecipientBuilder {
	pub, err := parseECPublicKey(key)
	if err != nil {
		b.buildErr = newError(KindConfiguration, "invalid sender verifying key", err)
		return b
	}
	b.literalKeys = append(b.literalKeys, pub)
	return b
}

// SenderVerifyingKeys adds a provider that parses a fixed trusted-keys JSON
// document on every call (C4 variant b).
func (b *RecipientBuilder) SenderVerifyingKeys(trustedKeysJSON string) *RecipientBuilder {
	b.providers = append(b.providers, &trustedJSONProvider{json: trustedKeysJSON})
	return b
}

// FetchSenderVerifyingKeysWith adds a provider backed by an external source
// of trusted-keys JSON, such as a fetchcache.Cache (C4 variant c).
func (b *RecipientBuilder) FetchSenderVerifyingKeysWith(source KeyJSONSource) *RecipientBuilder {
	b.providers = append(b.providers, &fetchingProvider{source: source})
	return b
}

// AddRecipientPrivateKey adds a long-term EC private key (PEM or base64
// PKCS#8) the recipient holds locally.
func (b *RecipientBuilder) AddRecipientPrivateKey(key string) *RecipientBuilder {
	priv, err := parseECPrivateKey(key)
	if err != nil {
		b.buildErr = newError(KindConfiguration, "invalid recipient private key", err)
		return b
	}
	b.privateKeys = append(b.privateKeys, priv)
	return b
}

// AddRecipientKEM adds a KEM handle (e.g. an HSM-resident key) in place of a
// raw private key.
func (b *RecipientBuilder) AddRecipientKEM(kem KEM) *RecipientBuilder {
	b.kems = append(b.kems, kem)
	return b
}

// Clock overrides the time source used for expiration checks. Intended for
// tests; production recipients should leave this unset.
func (b *RecipientBuilder) Clock(clock func() int64) *RecipientBuilder {
	b.clock = clock
	return b
}

// Build validates the accumulated configuration and returns an immutable
// Recipient, or a *Error of KindConfiguration.
func (b *RecipientBuilder) Build() (*Recipient, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if !b.protocolVersion.Valid() {
		return nil, newError(KindConfiguration, "protocolVersion must be ECv1 or ECv2", nil)
	}
	if b.recipientID == "" {
		return nil, newError(KindConfiguration, "recipientId is required", nil)
	}

	providers := b.providers
	if len(b.literalKeys) > 0 {
		providers = append([]senderKeyProvider{&literalKeyProvider{keys: b.literalKeys}}, providers...)
	}
	if len(providers) == 0 {
		return nil, newError(KindConfiguration, "at least one sender verifying key or provider is required", nil)
	}

	var decrypters []*hybridDecrypter
	for _, priv := range b.privateKeys {
		decrypters = append(decrypters, newHybridDecrypterFromPrivateKey(priv, hybridContextInfo))
	}
	for _, kem := range b.kems {
		decrypters = append(decrypters, newHybridDecrypterFromKEM(kem, hybridContextInfo))
	}
	if len(decrypters) == 0 {
		return nil, newError(KindConfiguration, "at least one recipient private key or KEM is required", nil)
	}

	return &Recipient{
		protocolVersion: b.protocolVersion,
		senderID:        b.senderID,
		recipientID:     b.recipientID,
		providers:       providers,
		decrypters:      decrypters,
		clock:           b.clock,
	}, nil
}
