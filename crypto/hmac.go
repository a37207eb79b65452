// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
)

// HmacSha512 computes HMAC-SHA-512(key, data), returning all 64 bytes. BIP-32
// child derivation uses this keyed on the parent chain code.
func HmacSha512(key, data []byte) [64]byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	var out [64]byte
	copy(out[:], mac.Sum(nil))
	return out
}
