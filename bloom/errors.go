// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import "errors"

// errMerkleTreeTruncated means a merkleblock's flag/hash streams ran out
// before the proof shape they imply was fully consumed.
var errMerkleTreeTruncated = errors.New("bloom: merkle proof truncated")

// errMerkleRootMismatch means the root recomputed from a merkleblock's
// proof does not match the root declared in its header.
var errMerkleRootMismatch = errors.New("bloom: recomputed merkle root does not match header")
