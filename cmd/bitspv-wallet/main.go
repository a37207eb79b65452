// Copyright (c) 2026 The bitspv developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// bitspv-wallet creates and drives wallet files: "new" generates a
// wallet, "balance" reports its funds, and "send" builds, signs, and
// broadcasts a payment.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"

	"github.com/corvidlabs/bitspv/addresses"
	"github.com/corvidlabs/bitspv/chaincfg"
	"github.com/corvidlabs/bitspv/chainstore"
	"github.com/corvidlabs/bitspv/keychain"
	"github.com/corvidlabs/bitspv/peergroup"
	"github.com/corvidlabs/bitspv/wallet"
	"github.com/corvidlabs/bitspv/wallet/store"
	"github.com/corvidlabs/bitspv/wire"
)

// Exit codes shared by the bitspv command-line tools.
const (
	exitSuccess           = 0
	exitBadArgs           = 2
	exitInsufficientFunds = 3
	exitBadPassword       = 4
	exitChainNotSynced    = 5
	exitUnexpected        = 10
)

// maxChainTipAge is how far behind the best-known header's timestamp may
// lag the wall clock before send refuses to build a payment against it.
const maxChainTipAge = 24 * time.Hour

// broadcastTimeout bounds how long send waits for enough peers to relay
// the new transaction back.
const broadcastTimeout = 60 * time.Second

var defaultDataDir = btcutil.AppDataDir("bitspv", false)

// globalOptions are shared by every subcommand. Defaults for the
// network, data directory, and log level come from the BITCOINJ_NETWORK,
// BITCOINJ_DATA_DIR, and BITCOINJ_LOG_LEVEL environment variables when
// set.
type globalOptions struct {
	DataDir  string `short:"d" long:"data-dir" description:"Directory holding the wallet and chain data"`
	Network  string `long:"network" description:"Bitcoin network" choice:"main" choice:"test" choice:"regtest"`
	Password string `long:"password" description:"Wallet passphrase"`
	LogLevel string `long:"log-level" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

var opts = globalOptions{}

// exitError carries a process exit code up through go-flags' Execute
// plumbing.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func errBadArgs(format string, args ...interface{}) error {
	return &exitError{code: exitBadArgs, msg: fmt.Sprintf(format, args...)}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func netParams() (*chaincfg.Params, error) {
	params, err := chaincfg.ParamsForName(opts.Network)
	if err != nil {
		return nil, errBadArgs("unknown network %q", opts.Network)
	}
	return params, nil
}

func walletPath(params *chaincfg.Params) string {
	return filepath.Join(opts.DataDir, params.Name, "wallet.dat")
}

// openWallet loads and unlocks the wallet file, mapping each failure to
// the exit code the tool documents.
func openWallet(params *chaincfg.Params) (*wallet.Wallet, *store.Seed, error) {
	path := walletPath(params)
	w, seed, err := store.OpenWallet(path, opts.Password, params)
	if errors.Is(err, keychain.ErrWrongPassphrase) {
		return nil, nil, &exitError{code: exitBadPassword, msg: "wallet passphrase does not match"}
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, errBadArgs("no wallet at %s; run \"bitspv-wallet new\" first", path)
	}
	if err != nil {
		return nil, nil, err
	}
	return w, seed, nil
}

// newCommand creates a wallet file and prints its backup mnemonic and
// first receive address.
type newCommand struct {
	Encrypted bool `long:"encrypted" description:"Encrypt the seed under --password"`
}

func (c *newCommand) Execute(args []string) error {
	params, err := netParams()
	if err != nil {
		return err
	}
	path := walletPath(params)
	if _, err := os.Stat(path); err == nil {
		return errBadArgs("wallet already exists at %s", path)
	}
	if c.Encrypted && opts.Password == "" {
		return errBadArgs("--encrypted requires --password")
	}
	passphrase := ""
	if c.Encrypted {
		passphrase = opts.Password
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	w, _, mnemonic, err := store.CreateWallet(path, passphrase, params, uint32(time.Now().Unix()))
	if err != nil {
		return err
	}
	key, err := w.CurrentReceiveAddress()
	if err != nil {
		return err
	}
	addr := addresses.FromPubKey(key.PubKey().SerializeCompressed(), params)

	fmt.Printf("Wallet created at %s\n", path)
	fmt.Printf("Backup mnemonic:  %s\n", mnemonic)
	fmt.Printf("First address:    %s\n", addr)
	return nil
}

// balanceCommand prints the wallet's funds in BTC.
type balanceCommand struct {
	Estimated bool `long:"estimated" description:"Include unconfirmed (pending) funds"`
	Available bool `long:"available" description:"Confirmed, spendable funds only (default)"`
}

func (c *balanceCommand) Execute(args []string) error {
	if c.Estimated && c.Available {
		return errBadArgs("--estimated and --available are mutually exclusive")
	}
	params, err := netParams()
	if err != nil {
		return err
	}
	w, _, err := openWallet(params)
	if err != nil {
		return err
	}

	amount := w.Balance()
	if c.Estimated {
		amount = w.EstimatedBalance()
	}
	fmt.Printf("%s\n", amount)
	return nil
}

// sendCommand builds, signs, saves, and broadcasts a payment.
type sendCommand struct {
	To       string  `long:"to" required:"true" description:"Destination address"`
	Amount   float64 `long:"amount" required:"true" description:"Amount to send in BTC"`
	FeePerKB int64   `long:"fee-per-kb" description:"Fee rate in satoshis per kilobyte"`
	Peers    string  `long:"peers" description:"Comma-separated ip:port list to broadcast through instead of DNS seeds"`
}

func (c *sendCommand) Execute(args []string) error {
	params, err := netParams()
	if err != nil {
		return err
	}
	addr, err := addresses.Decode(c.To, params)
	if err != nil {
		return errBadArgs("invalid destination address %q: %v", c.To, err)
	}
	amount, err := btcutil.NewAmount(c.Amount)
	if err != nil || amount <= 0 {
		return errBadArgs("invalid amount %v", c.Amount)
	}

	chain, err := chainstore.OpenLevelStore(filepath.Join(opts.DataDir, params.Name, "chain"), params)
	if err != nil {
		return err
	}
	defer chain.Close()
	tip := chain.Tip()
	if tip == nil || tip.Height == 0 || time.Since(tip.Header.Timestamp) > maxChainTipAge {
		return &exitError{code: exitChainNotSynced, msg: "header chain is not synced; run bitspvd first"}
	}

	w, seed, err := openWallet(params)
	if err != nil {
		return err
	}

	req := &wallet.SendRequest{
		Outputs:              []*wire.TxOut{{Value: amount, PkScript: addr.PayToScript()}},
		FeePerKB:             btcutil.Amount(c.FeePerKB),
		EnsureMinRequiredFee: true,
	}
	tx, err := w.CompleteTx(req)
	var insufficient *wallet.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return &exitError{code: exitInsufficientFunds, msg: insufficient.Error()}
	}
	if err != nil {
		return err
	}
	if _, err := w.ReceivePending(tx, wallet.SourceSelf); err != nil {
		return err
	}
	if err := store.SaveWallet(walletPath(params), w, seed); err != nil {
		return err
	}

	if err := broadcast(params, chain, w, tx, c.Peers); err != nil {
		return err
	}
	fmt.Printf("%s\n", tx.TxHash())
	return nil
}

// broadcast spins up a peer group for long enough to announce tx and see
// it relayed back by a majority of connected peers.
func broadcast(params *chaincfg.Params, chain chainstore.Store, w *wallet.Wallet, tx *wire.MsgTx, peerList string) error {
	cfg := &peergroup.Config{Params: params, Store: chain}
	if peerList != "" {
		cfg.Discovery = peergroup.NewStaticDiscovery(strings.Split(peerList, ","))
	}
	group, err := peergroup.New(cfg)
	if err != nil {
		return err
	}
	group.AddWallet(w)
	if err := group.Start(); err != nil {
		return err
	}
	defer group.Stop()

	// Peers need a moment to finish their handshakes before any of them
	// counts as ready to announce to.
	deadline := time.Now().Add(broadcastTimeout)
	var b *peergroup.Broadcast
	for {
		b, err = group.BroadcastTransaction(tx)
		if err == nil {
			break
		}
		if !errors.Is(err, peergroup.ErrNoPeers) || time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}

	done := make(chan error, 1)
	go func() { done <- b.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Until(deadline)):
		return errors.New("timed out waiting for the network to relay the transaction")
	}
}

func main() {
	os.Exit(walletMain(os.Args[1:]))
}

func walletMain(args []string) int {
	opts = globalOptions{
		DataDir:  envOr("BITCOINJ_DATA_DIR", defaultDataDir),
		Network:  envOr("BITCOINJ_NETWORK", "main"),
		LogLevel: envOr("BITCOINJ_LOG_LEVEL", "warn"),
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, cmdArgs []string) error {
		if !setLogLevels(opts.LogLevel) {
			return errBadArgs("invalid log level %q", opts.LogLevel)
		}
		return cmd.Execute(cmdArgs)
	}
	parser.AddCommand("new", "Create a new wallet",
		"Generate a fresh BIP-39 seed and write the wallet file.", &newCommand{})
	parser.AddCommand("balance", "Show the wallet balance",
		"Print the confirmed (or, with --estimated, total) balance in BTC.", &balanceCommand{})
	parser.AddCommand("send", "Send coins",
		"Build, sign, and broadcast a payment from this wallet.", &sendCommand{})

	if _, err := parser.ParseArgs(args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.msg)
			return exitErr.code
		}
		var flagErr *flags.Error
		if errors.As(err, &flagErr) {
			if flagErr.Type == flags.ErrHelp {
				return exitSuccess
			}
			return exitBadArgs
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUnexpected
	}
	return exitSuccess
}
