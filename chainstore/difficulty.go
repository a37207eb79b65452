// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"math/big"
)

// CompactToBig converts a compact-form (nBits) target to its big.Int
// representation, per Bitcoin's floating-point-like encoding: the low 3
// bytes are a mantissa and the high byte is an exponent in bytes.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(uint(exponent)-3))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a big.Int target to its compact (nBits)
// representation.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))

	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent<<24) | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

// CalcNextRequiredDifficulty computes the nBits value for the first block
// of a new retarget window from the previous block's bits (lastBits) and
// the time the window just ended actually took (actualTimespan): scale
// the previous target by the ratio of actual to target timespan, with
// the ratio clamped to [1/F, F] and the result never exceeding powLimit.
func CalcNextRequiredDifficulty(lastBits uint32, actualTimespan, targetTimespan int64, adjustmentFactor int64, powLimit *big.Int) uint32 {
	minTimespan := targetTimespan / adjustmentFactor
	maxTimespan := targetTimespan * adjustmentFactor

	if actualTimespan < minTimespan {
		actualTimespan = minTimespan
	} else if actualTimespan > maxTimespan {
		actualTimespan = maxTimespan
	}

	oldTarget := CompactToBig(lastBits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	if newTarget.Cmp(powLimit) > 0 {
		newTarget.Set(powLimit)
	}

	return BigToCompact(newTarget)
}
