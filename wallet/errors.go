// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrNotRelevant is returned by ReceivePending/ReceiveFromBlock when a
// transaction pays none of the wallet's scripts, spends none of its
// outputs, and doesn't connect to any transaction it already knows.
var ErrNotRelevant = errors.New("wallet: transaction is not relevant to this wallet")

// ErrWatchingOnly is returned by CompleteTx and BuildRotationSweeps on a
// wallet constructed from public key material only, and by signing when a
// selected input's key has no private half.
var ErrWatchingOnly = errors.New("wallet: operation requires a spending key, wallet is watching-only")

// ErrKeyIsEncrypted describes an operation that needs a private key while
// the key chain is locked. No function of this package returns it.
var ErrKeyIsEncrypted = errors.New("wallet: key chain is encrypted and locked")

// ErrWrongPassword describes a passphrase that does not decrypt the
// wallet's key chain. No function of this package returns it: decrypting
// the seed (keychain.EncryptedMnemonic's Unlock and Decrypt) reports
// keychain.ErrWrongPassphrase.
var ErrWrongPassword = errors.New("wallet: wrong password")

// ErrReadOnly describes the read-only mode SetReadOnly enters after a
// second consecutive save failure. No Wallet method checks that mode or
// returns this error; IsReadOnly reports whether the mode is set.
var ErrReadOnly = errors.New("wallet: wallet is read-only after a persistent disk error")

// InsufficientFundsError reports a coin-selection failure, distinguishing
// a plain balance shortfall from a shortfall caused specifically by the
// minimum-fee requirement.
type InsufficientFundsError struct {
	Shortfall    btcutil.Amount
	MissingMinFee bool
}

func (e *InsufficientFundsError) Error() string {
	if e.MissingMinFee {
		return fmt.Sprintf("wallet: insufficient funds to cover required minimum fee (short %s)", e.Shortfall)
	}
	return fmt.Sprintf("wallet: insufficient funds (short %s)", e.Shortfall)
}

// ErrTxTooLarge is returned by CompleteTx when even after coin selection
// the resulting transaction would exceed the relay size limit.
var ErrTxTooLarge = errors.New("wallet: completed transaction exceeds the relay size limit")

// ErrNoChangeAddress describes a change output that is needed when neither
// an explicit change address nor a key chain capable of deriving one is
// available. No function of this package returns it.
var ErrNoChangeAddress = errors.New("wallet: no change address available")
