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
	"encoding/binary"
)

// lengthValue builds the canonical signed-bytes encoding used for ECDSA
// coverage: for each string in order, a 4-byte little-endian length of its
// UTF-8 byte length followed by those bytes. No delimiters, no terminator.
//
// This is the domain-separation string the sender and recipient must agree
// on bit-exactly; reordering or omitting an argument here silently breaks
// verification rather than failing loudly, which is why every call site in
// this package passes each argument explicitly from a named field instead of
// spreading a slice.
func lengthValue(parts ...string) []byte {
	out := make([]byte, 0, estimateLengthValueSize(parts))
	var lenBuf [4]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		out = append(out, lenBuf[:]...)
		out = append(out, p...)
	}
	return out
}

func estimateLengthValueSize(parts []string) int {
	n := 0
	for _, p := range parts {
		n += 4 + len(p)
	}
	return n
}
