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

// Kind classifies why Unseal (or Build) failed. Callers should match on Kind
// via errors.Is against the sentinel Err* values, not on error text: the
// text is free to change, the Kind is not.
type Kind int

const (
	// KindConfiguration indicates a Recipient was built with an invalid or
	// incomplete configuration (missing recipient ID, no sender-key
	// providers, no decrypters, unsupported protocol version).
	KindConfiguration Kind = iota + 1

	// KindEnvelopeShape indicates the sealed input was not a well-formed
	// envelope for the configured protocol version: wrong JSON shape, wrong
	// key set, or a protocolVersion field that does not match what the
	// Recipient was built for.
	KindEnvelopeShape

	// KindSignature indicates no (signing key, signature) pair verified,
	// either for the outer envelope or, in ECv2, for the intermediate
	// signing key.
	KindSignature

	// KindDecryption indicates no configured decrypter could decrypt the
	// hybrid-encrypted payload.
	KindDecryption

	// KindExpiration indicates an intermediate signing key or the decrypted
	// payload carried an expiration timestamp that has already passed.
	KindExpiration

	// KindKeyFetch indicates a sender-key provider backed by an external
	// cache or fetcher failed to produce trusted keys.
	KindKeyFetch
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindEnvelopeShape:
		return "envelope_shape"
	case KindSignature:
		return "signature"
	case KindDecryption:
		return "decryption"
	case KindExpiration:
		return "expiration"
	case KindKeyFetch:
		return "key_fetch"
	default:
		return "unknown"
	}
}

// Error is the single error type Unseal and Build return. All cryptographic
// and structural failures fold into one of the Kind values above; Msg is a
// short, generic description that deliberately does not distinguish which
// internal check failed beyond its Kind (spec §4.6, §7).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, pmt.ErrSignature) (and the other sentinels below)
// match any *Error of the same Kind, regardless of Msg or Err, so callers
// never need to construct or inspect the concrete type.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrEnvelopeShape = &Error{Kind: KindEnvelopeShape}
	ErrSignature     = &Error{Kind: KindSignature}
	ErrDecryption    = &Error{Kind: KindDecryption}
	ErrExpiration    = &Error{Kind: KindExpiration}
	ErrKeyFetch      = &Error{Kind: KindKeyFetch}
)
