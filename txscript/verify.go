// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "github.com/corvidlabs/bitspv/wire"

// Verify runs scriptSig then scriptPubKey (and, for P2SH, the embedded
// redeem script) against input txIdx of tx.
func Verify(scriptSig, scriptPubKey []byte, tx *wire.MsgTx, txIdx int, flags ScriptFlags) error {
	engine, err := NewEngine(scriptPubKey, scriptSig, tx, txIdx, flags)
	if err != nil {
		return err
	}
	return engine.Execute()
}
