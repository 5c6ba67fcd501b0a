// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/nft-auction/api"
	"github.com/meterio/nft-auction/genesis"
	"github.com/meterio/nft-auction/indexer"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
	log       = slog.Default().With("pkg", "auctiond")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "auctiond",
		Usage:     "NFT auction registry node",
		Copyright: "2020 Meter Foundation <https://meter.io/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			genesisFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			observeAddrFlag,
			ntpServerFlag,
			verbosityFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "dev-accounts",
				Usage:  "print the pre-funded accounts of the devnet genesis",
				Action: devAccountsAction,
			},
			{
				Name:      "decode-script",
				Usage:     "dump the header and body of hex encoded script data",
				ArgsUsage: "<hex>",
				Action:    decodeScriptAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	if err := applyConfig(ctx); err != nil {
		return err
	}
	initLogger(ctx)
	go checkClockOffset(ctx.String(ntpServerFlag.Name))

	gene := selectGenesis(ctx)

	var mainDB *lvldb.LevelDB
	var logDB *logdb.LogDB
	var instanceDir string
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(instanceDir)
		logDB = openLogDB(instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing log database..."); logDB.Close() }()

	feeds := pricefeed.NewDirectory()
	if err := gene.RegisterFeeds(feeds); err != nil {
		return errors.WithMessage(err, "register price feeds")
	}
	engine := script.NewScriptEngine(feeds)
	creator := state.NewCreator(mainDB)
	initState(gene, creator, engine)

	rt, err := runtime.New(creator, engine, nil)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing runtime..."); rt.Close() }()

	indexCtx, cancelIndex := context.WithCancel(exitSignal)
	indexDone := make(chan struct{})
	go func() {
		defer close(indexDone)
		if err := indexer.New(logDB).Run(indexCtx, rt); err != nil {
			log.Error("indexer stopped", "err", err)
		}
	}()
	defer func() { log.Info("stopping indexer..."); cancelIndex(); <-indexDone }()

	apiHandler, apiCloser := api.New(rt, logDB, ctx.String(apiCorsFlag.Name), fullVersion())
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	observeURL, observeSrvCloser := startObserveServer(ctx)
	defer func() { log.Info("stopping observe server..."); observeSrvCloser() }()

	printStartupMessage(gene, instanceDir, apiURL, observeURL, rt.Seq())

	<-exitSignal.Done()
	return nil
}

func devAccountsAction(ctx *cli.Context) error {
	for i, acc := range genesis.DevAccounts() {
		fmt.Printf("#%d %v 0x%x\n", i, acc.Address, crypto.FromECDSA(acc.PrivateKey))
	}
	return nil
}

func decodeScriptAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expect exactly one hex argument")
	}
	data, err := hex.DecodeString(strings.TrimPrefix(ctx.Args().First(), "0x"))
	if err != nil {
		return errors.WithMessage(err, "decode hex")
	}
	sd, body, err := decodeScript(data)
	if err != nil {
		return err
	}
	spew.Dump(sd.Header, body)
	return nil
}

// decodeScript splits data into its header and the body of the addressed module.
func decodeScript(data []byte) (*script.ScriptData, interface{}, error) {
	sd, err := script.SplitScriptData(data)
	if err != nil {
		return nil, nil, err
	}
	switch sd.Header.GetModID() {
	case script.AUCTION_MODULE_ID:
		body, err := auction.AuctionDecodeFromBytes(sd.Payload)
		return sd, body, err
	case script.TOKENS_MODULE_ID:
		body, err := tokens.TokensDecodeFromBytes(sd.Payload)
		return sd, body, err
	default:
		return nil, nil, fmt.Errorf("unknown module %v", sd.Header.GetModID())
	}
}
