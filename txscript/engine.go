// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/wire"
)

// ScriptFlags toggles consensus-rule variants the engine enforces: P2SH
// redemption and minimal-data encoding; everything else is unconditional.
type ScriptFlags uint32

const (
	// ScriptBip16 enables P2SH (BIP-16) redemption: when the output script
	// matches the P2SH template, the serialized redeem script pushed last by
	// script_sig is popped and executed as a second script against the
	// items script_sig pushed before it.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptVerifyMinimalData requires every data push to use the shortest
	// possible encoding and every scriptNum to be minimally encoded.
	ScriptVerifyMinimalData
)

// StandardVerifyFlags is the flag set used for ordinary wallet-facing
// verification: BIP-16 plus strict minimal-data encoding.
const StandardVerifyFlags = ScriptBip16 | ScriptVerifyMinimalData

type condState struct {
	branchExecuting bool
	sawElse         bool
}

// Engine executes script_sig followed by script_pubkey (and, for P2SH, the
// embedded redeem script) against one input of a transaction.
type Engine struct {
	flags        ScriptFlags
	tx           *wire.MsgTx
	txIdx        int
	scriptPubKey []byte

	// subscript is the script currently being executed, the script code
	// CHECKSIG-family opcodes hash: the output script normally, the
	// redeem script while one is running.
	subscript []byte

	stack    stack
	altStack stack

	numOps int
}

// NewEngine constructs an Engine ready to verify input txIdx of tx, which is
// claimed to spend an output locked by scriptPubKey using scriptSig.
func NewEngine(scriptPubKey, scriptSig []byte, tx *wire.MsgTx, txIdx int, flags ScriptFlags) (*Engine, error) {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidIndex, "transaction input index out of range")
	}
	if len(scriptPubKey) > MaxScriptSize || len(scriptSig) > MaxScriptSize {
		return nil, scriptError(ErrScriptTooBig, "script exceeds maximum allowed size")
	}
	return &Engine{
		flags:        flags,
		tx:           tx,
		txIdx:        txIdx,
		scriptPubKey: scriptPubKey,
	}, nil
}

// Execute runs script_sig, then script_pubkey, then (if the BIP-16 P2SH
// template matches and script_sig ends in a single clean data push) the
// embedded redeem script, requiring a true top-of-stack result after each
// executed script and a clean (non-empty, boolean) stack at the very end.
func (e *Engine) Execute() error {
	scriptSig := e.tx.TxIn[e.txIdx].SignatureScript

	sigOps, err := parseScript(scriptSig)
	if err != nil {
		return err
	}
	// Per consensus, script_sig may contain only data pushes.
	for _, op := range sigOps {
		if !isPushOpcode(op.opcode) {
			return scriptError(ErrInvalidStackOperation, "signature script contains a non-push opcode")
		}
	}

	if err := e.run(sigOps); err != nil {
		return err
	}

	savedStack := e.cloneStack()

	pubKeyOps, err := parseScript(e.scriptPubKey)
	if err != nil {
		return err
	}
	e.subscript = e.scriptPubKey
	if err := e.run(pubKeyOps); err != nil {
		return err
	}

	ok, err := e.stack.PopBool()
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrEvalFalse, "script_pubkey returned false")
	}

	if e.flags&ScriptBip16 != 0 && isScriptHashTemplate(e.scriptPubKey) {
		if len(savedStack.items) == 0 {
			return scriptError(ErrEvalFalse, "p2sh signature script has no redeem script")
		}
		redeemScript := savedStack.items[len(savedStack.items)-1]

		e.stack = stack{items: savedStack.items[:len(savedStack.items)-1]}
		e.numOps = 0

		redeemOps, err := parseScript(redeemScript)
		if err != nil {
			return err
		}
		e.subscript = redeemScript
		if err := e.run(redeemOps); err != nil {
			return err
		}
		ok, err := e.stack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return scriptError(ErrEvalFalse, "p2sh redeem script returned false")
		}
	}

	if e.stack.Depth() != 0 {
		return scriptError(ErrEvalFalse, "stack is not clean after execution")
	}
	return nil
}

func (e *Engine) cloneStack() stack {
	items := make([][]byte, len(e.stack.items))
	copy(items, e.stack.items)
	return stack{items: items}
}

func (e *Engine) run(ops []parsedOpcode) error {
	if countNonPushOps(ops) > MaxOpsPerScript {
		return scriptError(ErrTooManyOperations, "script exceeds max non-push opcode count")
	}

	var condStack []condState
	executing := func() bool {
		for _, c := range condStack {
			if !c.branchExecuting {
				return false
			}
		}
		return true
	}

	for _, op := range ops {
		if e.stack.Depth()+e.altStack.Depth() > MaxStackSize {
			return scriptError(ErrStackOverflow, "stack exceeds maximum size")
		}

		switch {
		case op.opcode == OP_IF || op.opcode == OP_NOTIF:
			var branch bool
			if executing() {
				v, err := e.stack.PopBool()
				if err != nil {
					return err
				}
				branch = v
				if op.opcode == OP_NOTIF {
					branch = !branch
				}
			}
			condStack = append(condStack, condState{branchExecuting: branch})
			continue

		case op.opcode == OP_ELSE:
			if len(condStack) == 0 {
				return scriptError(ErrUnbalancedConditional, "OP_ELSE without matching OP_IF")
			}
			top := &condStack[len(condStack)-1]
			if top.sawElse {
				return scriptError(ErrUnbalancedConditional, "multiple OP_ELSE for one OP_IF")
			}
			top.sawElse = true
			top.branchExecuting = !top.branchExecuting
			continue

		case op.opcode == OP_ENDIF:
			if len(condStack) == 0 {
				return scriptError(ErrUnbalancedConditional, "OP_ENDIF without matching OP_IF")
			}
			condStack = condStack[:len(condStack)-1]
			continue
		}

		if !executing() {
			continue
		}

		if isPushOpcode(op.opcode) {
			if err := e.execPush(op); err != nil {
				return err
			}
			continue
		}

		e.numOps++
		if err := e.execOp(op.opcode); err != nil {
			return err
		}
	}

	if len(condStack) != 0 {
		return scriptError(ErrUnbalancedConditional, "unbalanced conditional at end of script")
	}
	return nil
}

func (e *Engine) minimalData() bool {
	return e.flags&ScriptVerifyMinimalData != 0
}

func (e *Engine) execPush(op parsedOpcode) error {
	switch {
	case op.opcode == OP_0:
		e.stack.PushByteArray(nil)
	case op.opcode == OP_1NEGATE:
		e.stack.PushInt(-1)
	case op.opcode >= OP_1 && op.opcode <= OP_16:
		e.stack.PushInt(scriptNum(op.opcode - OP_1 + 1))
	default:
		if e.minimalData() {
			if err := checkMinimalPush(op); err != nil {
				return err
			}
		}
		e.stack.PushByteArray(op.data)
	}
	return nil
}

func checkMinimalPush(op parsedOpcode) error {
	dataLen := len(op.data)
	if dataLen == 0 && op.opcode != OP_0 {
		return scriptError(ErrMinimalData, "zero-length push must use OP_0")
	}
	if dataLen == 1 && op.data[0] >= 1 && op.data[0] <= 16 {
		return scriptError(ErrMinimalData, "push of small int must use OP_1..OP_16")
	}
	if dataLen == 1 && op.data[0] == 0x81 {
		return scriptError(ErrMinimalData, "push of -1 must use OP_1NEGATE")
	}
	switch {
	case dataLen <= 75:
		if int(op.opcode) != dataLen {
			return scriptError(ErrMinimalData, "push does not use the minimal direct opcode")
		}
	case dataLen <= 255:
		if op.opcode != OP_PUSHDATA1 {
			return scriptError(ErrMinimalData, "push should use OP_PUSHDATA1")
		}
	case dataLen <= 65535:
		if op.opcode != OP_PUSHDATA2 {
			return scriptError(ErrMinimalData, "push should use OP_PUSHDATA2")
		}
	}
	return nil
}

// checkScriptSigPushesOnly reports an error if script contains anything
// other than data pushes, without constructing an Engine.
func checkScriptSigPushesOnly(script []byte) error {
	ops, err := parseScript(script)
	if err != nil {
		return err
	}
	for _, op := range ops {
		if !isPushOpcode(op.opcode) {
			return scriptError(ErrInvalidStackOperation, "signature script contains a non-push opcode")
		}
	}
	return nil
}

func (e *Engine) execOp(op byte) error {
	switch op {
	case OP_NOP, OP_NOP1:
		return nil

	case OP_VERIFY:
		ok, err := e.stack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return scriptError(ErrVerify, "OP_VERIFY failed")
		}
		return nil

	case OP_RETURN:
		return scriptError(ErrEarlyReturn, "OP_RETURN")

	case OP_TOALTSTACK:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		e.altStack.PushByteArray(v)
		return nil

	case OP_FROMALTSTACK:
		v, err := e.altStack.PopByteArray()
		if err != nil {
			return err
		}
		e.stack.PushByteArray(v)
		return nil

	case OP_DUP:
		return e.stack.DupN(1)
	case OP_2DUP:
		return e.stack.DupN(2)
	case OP_3DUP:
		return e.stack.DupN(3)
	case OP_DROP:
		return e.stack.DropN(1)
	case OP_2DROP:
		return e.stack.DropN(2)
	case OP_SWAP:
		return e.stack.SwapN(1)
	case OP_2SWAP:
		return e.stack.SwapN(2)
	case OP_OVER:
		return e.stack.OverN(1)
	case OP_2OVER:
		return e.stack.OverN(2)
	case OP_ROT:
		return e.stack.RotN(1)
	case OP_2ROT:
		return e.stack.RotN(2)
	case OP_NIP:
		return e.stack.NipN(1)
	case OP_TUCK:
		return e.stack.Tuck()
	case OP_DEPTH:
		e.stack.PushInt(scriptNum(e.stack.Depth()))
		return nil
	case OP_IFDUP:
		ok, err := e.stack.PeekBool(0)
		if err != nil {
			return err
		}
		if ok {
			v, err := e.stack.PeekByteArray(0)
			if err != nil {
				return err
			}
			e.stack.PushByteArray(v)
		}
		return nil
	case OP_PICK:
		n, err := e.stack.PopInt(e.minimalData())
		if err != nil {
			return err
		}
		return e.stack.PickN(int(n))
	case OP_ROLL:
		n, err := e.stack.PopInt(e.minimalData())
		if err != nil {
			return err
		}
		return e.stack.RollN(int(n))

	case OP_SIZE:
		v, err := e.stack.PeekByteArray(0)
		if err != nil {
			return err
		}
		e.stack.PushInt(scriptNum(len(v)))
		return nil

	case OP_EQUAL, OP_EQUALVERIFY:
		a, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		b, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		eq := bytes.Equal(a, b)
		if op == OP_EQUALVERIFY {
			if !eq {
				return scriptError(ErrEqualVerify, "OP_EQUALVERIFY failed")
			}
			return nil
		}
		e.stack.PushBool(eq)
		return nil

	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		return e.execUnaryNum(op)

	case OP_ADD, OP_SUB, OP_BOOLAND, OP_BOOLOR, OP_NUMEQUAL, OP_NUMEQUALVERIFY,
		OP_NUMNOTEQUAL, OP_LESSTHAN, OP_GREATERTHAN, OP_LESSTHANOREQUAL,
		OP_GREATERTHANOREQUAL, OP_MIN, OP_MAX:
		return e.execBinaryNum(op)

	case OP_WITHIN:
		max, err := e.stack.PopInt(e.minimalData())
		if err != nil {
			return err
		}
		min, err := e.stack.PopInt(e.minimalData())
		if err != nil {
			return err
		}
		x, err := e.stack.PopInt(e.minimalData())
		if err != nil {
			return err
		}
		e.stack.PushBool(x >= min && x < max)
		return nil

	case OP_RIPEMD160:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		h := crypto.Ripemd160(v)
		e.stack.PushByteArray(h[:])
		return nil

	case OP_SHA1:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		e.stack.PushByteArray(sha1Sum(v))
		return nil

	case OP_SHA256:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		h := crypto.Sha256(v)
		e.stack.PushByteArray(h[:])
		return nil

	case OP_HASH160:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		h := crypto.Hash160(v)
		e.stack.PushByteArray(h[:])
		return nil

	case OP_HASH256:
		v, err := e.stack.PopByteArray()
		if err != nil {
			return err
		}
		h := crypto.DoubleSha256(v)
		e.stack.PushByteArray(h[:])
		return nil

	case OP_CODESEPARATOR:
		return nil

	case OP_CHECKSIG, OP_CHECKSIGVERIFY:
		return e.execCheckSig(op)

	case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
		return e.execCheckMultiSig(op)

	case OP_CHECKLOCKTIMEVERIFY:
		return e.execCheckLockTimeVerify()

	case OP_CHECKSEQUENCEVERIFY:
		return e.execCheckSequenceVerify()

	case OP_RESERVED:
		return scriptError(ErrOpcodeReserved, "reserved opcode executed")

	default:
		return scriptError(ErrOpcodeDisabled, "opcode not supported by this engine")
	}
}

func (e *Engine) execUnaryNum(op byte) error {
	n, err := e.stack.PopInt(e.minimalData())
	if err != nil {
		return err
	}
	switch op {
	case OP_1ADD:
		e.stack.PushInt(n + 1)
	case OP_1SUB:
		e.stack.PushInt(n - 1)
	case OP_NEGATE:
		e.stack.PushInt(-n)
	case OP_ABS:
		if n < 0 {
			n = -n
		}
		e.stack.PushInt(n)
	case OP_NOT:
		e.stack.PushBool(n == 0)
	case OP_0NOTEQUAL:
		e.stack.PushBool(n != 0)
	}
	return nil
}

func (e *Engine) execBinaryNum(op byte) error {
	b, err := e.stack.PopInt(e.minimalData())
	if err != nil {
		return err
	}
	a, err := e.stack.PopInt(e.minimalData())
	if err != nil {
		return err
	}

	switch op {
	case OP_ADD:
		e.stack.PushInt(a + b)
	case OP_SUB:
		e.stack.PushInt(a - b)
	case OP_BOOLAND:
		e.stack.PushBool(a != 0 && b != 0)
	case OP_BOOLOR:
		e.stack.PushBool(a != 0 || b != 0)
	case OP_NUMEQUAL:
		e.stack.PushBool(a == b)
	case OP_NUMEQUALVERIFY:
		if a != b {
			return scriptError(ErrNumEqualVerify, "OP_NUMEQUALVERIFY failed")
		}
	case OP_NUMNOTEQUAL:
		e.stack.PushBool(a != b)
	case OP_LESSTHAN:
		e.stack.PushBool(a < b)
	case OP_GREATERTHAN:
		e.stack.PushBool(a > b)
	case OP_LESSTHANOREQUAL:
		e.stack.PushBool(a <= b)
	case OP_GREATERTHANOREQUAL:
		e.stack.PushBool(a >= b)
	case OP_MIN:
		if a < b {
			e.stack.PushInt(a)
		} else {
			e.stack.PushInt(b)
		}
	case OP_MAX:
		if a > b {
			e.stack.PushInt(a)
		} else {
			e.stack.PushInt(b)
		}
	}
	return nil
}

func (e *Engine) execCheckLockTimeVerify() error {
	n, err := e.stack.PeekInt(0, e.minimalData())
	if err != nil {
		return err
	}
	if n < 0 {
		return scriptError(ErrNegativeLockTime, "negative locktime")
	}
	if e.tx.TxIn[e.txIdx].Sequence == wire.MaxTxInSequenceNum {
		return scriptError(ErrUnsatisfiedLockTime, "locktime requirement on finalized input")
	}

	const lockTimeThreshold = 500000000
	txLock := scriptNum(e.tx.LockTime)
	if (txLock < lockTimeThreshold) != (n < lockTimeThreshold) {
		return scriptError(ErrUnsatisfiedLockTime, "locktime type mismatch (height vs time)")
	}
	if n > txLock {
		return scriptError(ErrUnsatisfiedLockTime, "locktime requirement not satisfied")
	}
	return nil
}

func (e *Engine) execCheckSequenceVerify() error {
	n, err := e.stack.PeekInt(0, e.minimalData())
	if err != nil {
		return err
	}
	if n < 0 {
		return scriptError(ErrNegativeLockTime, "negative sequence")
	}

	const sequenceLockTimeDisableFlag = 1 << 31
	if int64(n)&sequenceLockTimeDisableFlag != 0 {
		return nil
	}
	if e.tx.Version < 2 {
		return scriptError(ErrUnsatisfiedLockTime, "CSV requires tx version >= 2")
	}
	seq := e.tx.TxIn[e.txIdx].Sequence
	if seq&sequenceLockTimeDisableFlag != 0 {
		return scriptError(ErrUnsatisfiedLockTime, "input sequence disables relative locktime")
	}

	const typeMask = 1 << 22
	if int64(n)&typeMask != int64(seq)&typeMask {
		return scriptError(ErrUnsatisfiedLockTime, "sequence type mismatch (blocks vs time)")
	}

	const valueMask = 0x0000ffff
	if int64(n)&valueMask > int64(seq)&valueMask {
		return scriptError(ErrUnsatisfiedLockTime, "relative locktime requirement not satisfied")
	}
	return nil
}
