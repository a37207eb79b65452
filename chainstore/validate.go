// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainhash"
	"github.com/corvidlabs/bitspv/wire"
)

// ErrorCode identifies a kind of header rule violation.
type ErrorCode int

const (
	// ErrHighHash indicates the block hash does not satisfy the target
	// difficulty claimed in its own nBits field.
	ErrHighHash ErrorCode = iota

	// ErrBadTargetBits indicates the nBits field decodes to a target that
	// is zero, negative, or above the network's proof-of-work limit.
	ErrBadTargetBits

	// ErrUnexpectedDifficulty indicates the nBits field does not match the
	// value required by the difficulty-adjustment schedule at the block's
	// height.
	ErrUnexpectedDifficulty

	// ErrTimeTooOld indicates the timestamp is not strictly after the
	// median timestamp of the previous eleven blocks.
	ErrTimeTooOld
)

func (e ErrorCode) String() string {
	switch e {
	case ErrHighHash:
		return "ErrHighHash"
	case ErrBadTargetBits:
		return "ErrBadTargetBits"
	case ErrUnexpectedDifficulty:
		return "ErrUnexpectedDifficulty"
	case ErrTimeTooOld:
		return "ErrTimeTooOld"
	default:
		return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
	}
}

// RuleError is returned by Put when a header violates a consensus rule
// this store enforces. Decode it with errors.As and inspect Code.
type RuleError struct {
	Code        ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{Code: c, Description: desc}
}

// medianTimeBlocks is how many previous blocks feed the median-time-past
// check.
const medianTimeBlocks = 11

// HashToBig converts a block hash to the big.Int the target comparison
// uses: the hash bytes interpreted as a little-endian 256-bit unsigned
// integer, which means reversing them for big.Int's big-endian SetBytes.
func HashToBig(hash chainhash.Hash256) *big.Int {
	buf := hash
	for i := 0; i < len(buf)/2; i++ {
		buf[i], buf[len(buf)-1-i] = buf[len(buf)-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// CheckProofOfWork verifies the header hashes below the target its own
// nBits field claims, and that the claimed target does not exceed
// powLimit.
func CheckProofOfWork(header *wire.BlockHeader, powLimit *big.Int) error {
	target := CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return ruleError(ErrBadTargetBits, fmt.Sprintf(
			"block target difficulty of %064x is too low", target))
	}
	if target.Cmp(powLimit) > 0 {
		return ruleError(ErrBadTargetBits, fmt.Sprintf(
			"block target difficulty of %064x is higher than max of %064x",
			target, powLimit))
	}

	hashNum := HashToBig(header.BlockHash())
	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrHighHash, fmt.Sprintf(
			"block hash of %064x is higher than expected max of %064x",
			hashNum, target))
	}
	return nil
}

// checkHeaderContext validates header against its stored ancestry: proof
// of work, median-time-past, and the difficulty-adjustment schedule.
// byHash resolves any stored block, so side-chain ancestry works the same
// as main-chain ancestry.
func checkHeaderContext(header *wire.BlockHeader, parent *StoredBlock, params *chaincfg.Params, byHash func(chainhash.Hash256) (*StoredBlock, error)) error {
	if err := CheckProofOfWork(header, params.PowLimit); err != nil {
		return err
	}

	mtp, err := medianTimePast(parent, byHash)
	if err != nil {
		return err
	}
	if !header.Timestamp.After(mtp) {
		return ruleError(ErrTimeTooOld, fmt.Sprintf(
			"block timestamp of %v is not after expected %v",
			header.Timestamp, mtp))
	}

	required, err := requiredBits(parent, params, byHash)
	if err != nil {
		return err
	}
	if header.Bits != required {
		return ruleError(ErrUnexpectedDifficulty, fmt.Sprintf(
			"block difficulty of %08x is not the expected value of %08x",
			header.Bits, required))
	}
	return nil
}

// medianTimePast returns the median timestamp of the medianTimeBlocks
// blocks ending at parent (fewer near genesis).
func medianTimePast(parent *StoredBlock, byHash func(chainhash.Hash256) (*StoredBlock, error)) (time.Time, error) {
	timestamps := make([]int64, 0, medianTimeBlocks)
	iter := parent
	for i := 0; i < medianTimeBlocks; i++ {
		timestamps = append(timestamps, iter.Header.Timestamp.Unix())
		if iter.Height == 0 {
			break
		}
		var err error
		iter, err = byHash(iter.Header.PrevBlock)
		if err != nil {
			return time.Time{}, err
		}
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return time.Unix(timestamps[len(timestamps)/2], 0).UTC(), nil
}

// requiredBits computes the nBits value consensus demands of parent's
// child: a recalculated target on retarget boundaries, the parent's own
// bits everywhere else. Networks with PoWNoRetargeting (regtest) keep the
// parent's bits at every height.
func requiredBits(parent *StoredBlock, params *chaincfg.Params, byHash func(chainhash.Hash256) (*StoredBlock, error)) (uint32, error) {
	if params.PoWNoRetargeting {
		return parent.Header.Bits, nil
	}

	childHeight := parent.Height + 1
	if childHeight%params.BlocksPerRetarget != 0 {
		return parent.Header.Bits, nil
	}

	// Walk back to the first block of the window just ended.
	first := parent
	for i := int32(0); i < params.BlocksPerRetarget-1; i++ {
		var err error
		first, err = byHash(first.Header.PrevBlock)
		if err != nil {
			return 0, err
		}
	}

	actualTimespan := parent.Header.Timestamp.Unix() - first.Header.Timestamp.Unix()
	return CalcNextRequiredDifficulty(
		parent.Header.Bits,
		actualTimespan,
		int64(params.TargetTimespan.Seconds()),
		params.RetargetAdjustmentFactor,
		params.PowLimit,
	), nil
}
