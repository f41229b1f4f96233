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

// Package pmt implements the recipient side of the Google Payment Method
// Token protocol: parsing the signed, hybrid-encrypted envelope a payment
// processor receives from Google Pay, verifying its ECDSA signature, and
// decrypting the payload.
//
// The protocol exists in two versions. ECv1 signs the envelope directly
// with a long-lived sender key. ECv2 signs it with a short-lived
// intermediate key that is itself signed by the long-lived sender key, so
// the intermediate key can be rotated far more often than the root.
//
// A Recipient is built once with NewRecipientBuilder and is safe for
// concurrent use by multiple goroutines: Unseal mutates nothing in the
// Recipient, only local state for the duration of one call.
package pmt
