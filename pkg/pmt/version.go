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

import "fmt"

// ProtocolVersion identifies which Payment Method Token protocol generation
// an envelope (or a Recipient) speaks.
type ProtocolVersion int

const (
	// ECv1 signs the envelope directly with a sender's long-lived key.
	ECv1 ProtocolVersion = iota + 1
	// ECv2 signs the envelope with a short-lived intermediate key that is
	// itself signed by the sender's long-lived key.
	ECv2
)

// String returns the wire representation of the protocol version, used both
// in the envelope JSON and in the length-value signed bytes.
func (v ProtocolVersion) String() string {
	switch v {
	case ECv1:
		return "ECv1"
	case ECv2:
		return "ECv2"
	default:
		return fmt.Sprintf("ProtocolVersion(%d)", int(v))
	}
}

// ParseProtocolVersion parses the wire representation of a protocol version.
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	switch s {
	case "ECv1":
		return ECv1, nil
	case "ECv2":
		return ECv2, nil
	default:
		return 0, newError(KindEnvelopeShape, fmt.Sprintf("unsupported protocolVersion %q", s), nil)
	}
}

// Valid reports whether v is one of the known protocol versions.
func (v ProtocolVersion) Valid() bool {
	return v == ECv1 || v == ECv2
}
