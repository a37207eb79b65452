// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// ErrorCode identifies a class of script execution failure, mirroring the
// ScriptError kinds named in the error-handling design: numeric, stack
// size, unbalanced conditional, signature-encoding, locktime-not-satisfied,
// and the generic execution failures around them.
type ErrorCode int

const (
	ErrDiscourageUpgradableNOPs ErrorCode = iota
	ErrEarlyReturn
	ErrEmptyStack
	ErrEqualVerify
	ErrEvalFalse
	ErrInvalidIndex
	ErrInvalidStackOperation
	ErrInvalidNumber
	ErrMinimalData
	ErrNegativeLockTime
	ErrNumEqualVerify
	ErrNumberTooBig
	ErrOpcodeDisabled
	ErrOpcodeReserved
	ErrPubKeyFormat
	ErrPushSize
	ErrReturn
	ErrScriptTooBig
	ErrSigTooShort
	ErrSigTooLong
	ErrSigHighS
	ErrSigNullFail
	ErrSigNonCanonical
	ErrStackOverflow
	ErrTooManyOperations
	ErrUnbalancedConditional
	ErrUnsatisfiedLockTime
	ErrVerify
	ErrWitnessProgramEmpty
)

var errorCodeStrings = map[ErrorCode]string{
	ErrDiscourageUpgradableNOPs: "ErrDiscourageUpgradableNOPs",
	ErrEarlyReturn:              "ErrEarlyReturn",
	ErrEmptyStack:               "ErrEmptyStack",
	ErrEqualVerify:              "ErrEqualVerify",
	ErrEvalFalse:                "ErrEvalFalse",
	ErrInvalidIndex:             "ErrInvalidIndex",
	ErrInvalidStackOperation:    "ErrInvalidStackOperation",
	ErrInvalidNumber:            "ErrInvalidNumber",
	ErrMinimalData:              "ErrMinimalData",
	ErrNegativeLockTime:         "ErrNegativeLockTime",
	ErrNumEqualVerify:           "ErrNumEqualVerify",
	ErrNumberTooBig:             "ErrNumberTooBig",
	ErrOpcodeDisabled:           "ErrOpcodeDisabled",
	ErrOpcodeReserved:           "ErrOpcodeReserved",
	ErrPubKeyFormat:             "ErrPubKeyFormat",
	ErrPushSize:                 "ErrPushSize",
	ErrReturn:                   "ErrReturn",
	ErrScriptTooBig:             "ErrScriptTooBig",
	ErrSigTooShort:              "ErrSigTooShort",
	ErrSigTooLong:               "ErrSigTooLong",
	ErrSigHighS:                 "ErrSigHighS",
	ErrSigNullFail:              "ErrSigNullFail",
	ErrSigNonCanonical:          "ErrSigNonCanonical",
	ErrStackOverflow:            "ErrStackOverflow",
	ErrTooManyOperations:        "ErrTooManyOperations",
	ErrUnbalancedConditional:    "ErrUnbalancedConditional",
	ErrUnsatisfiedLockTime:      "ErrUnsatisfiedLockTime",
	ErrVerify:                   "ErrVerify",
	ErrWitnessProgramEmpty:      "ErrWitnessProgramEmpty",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// Error is the error type returned by script execution. It always carries
// an ErrorCode so callers can branch on failure class without parsing the
// message.
type Error struct {
	Code        ErrorCode
	Description string
}

func (e Error) Error() string {
	return e.Description
}

func scriptError(c ErrorCode, desc string) Error {
	return Error{Code: c, Description: desc}
}
