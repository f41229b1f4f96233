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
	"strconv"
)

// parseExpirationMillis parses a decimal string of milliseconds-since-epoch.
//
// The source this protocol was distilled from parses expirations with
// Java's Long.parseLong, which throws on anything that isn't a valid
// decimal integer. We preserve that: a malformed expiration is reported as
// KindExpiration, the same as an expiration that has already passed, rather
// than being treated as "missing" and silently ignored.
func parseExpirationMillis(s string) (int64, *Error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, newError(KindExpiration, "malformed keyExpiration/messageExpiration value", err)
	}
	return v, nil
}

// expired reports whether an expiration timestamp (ms since epoch) is at or
// before now (ms since epoch). Expiration is not strict: an expiration
// exactly equal to now has already passed, matching spec invariant 7
// ("messageExpiration <= now fails").
func expired(expirationMillis, nowMillis int64) bool {
	return expirationMillis <= nowMillis
}
