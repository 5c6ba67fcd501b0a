// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/meterio/nft-auction/genesis"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/state"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "gopkg.in/urfave/cli.v1"
)

// verbosity levels of --verbosity, from quietest.
var verbosityLevels = []slog.Level{
	slog.LevelError + 4,
	slog.LevelError,
	slog.LevelWarn,
	slog.LevelInfo,
	slog.LevelDebug,
}

func logLevel(verbosity int) slog.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity >= len(verbosityLevels) {
		verbosity = len(verbosityLevels) - 1
	}
	return verbosityLevels[verbosity]
}

func initLogger(ctx *cli.Context) {
	w := os.Stderr
	handler := tint.NewHandler(w, &tint.Options{
		Level:      logLevel(ctx.Int(verbosityFlag.Name)),
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})
	slog.SetDefault(slog.New(handler))
	log = slog.Default().With("pkg", "auctiond")
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	gene, err := genesis.Load(path)
	if err != nil {
		fatal(fmt.Sprintf("load genesis [%v]: %v", path, err))
	}
	return gene
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	instanceDir := filepath.Join(makeDataDir(ctx), "instance-"+gene.Name)
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(dataDir string) *lvldb.LevelDB {
	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		fatal(fmt.Sprintf("open registry database [%v]: %v", dir, err))
	}
	return db
}

func openLogDB(dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open registry database: %v", err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

// initState writes gene into the registry state unless a genesis is already there.
func initState(gene *genesis.Genesis, creator *state.Creator, engine *script.ScriptEngine) {
	st := creator.NewState()
	applied, err := gene.Apply(st, engine)
	if err != nil {
		fatal("apply genesis:", err)
	}
	if !applied {
		log.Info("genesis already applied", "name", gene.Name)
		return
	}
	if err := st.Stage().Commit(); err != nil {
		fatal("commit genesis:", err)
	}
	log.Info("genesis applied", "name", gene.Name)
}

func startObserveServer(ctx *cli.Context) (string, func()) {
	addr := ctx.String(observeAddrFlag.Name)
	if addr == "" {
		return "", func() {}
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen observe addr [%v]: %v", addr, err))
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("observe server stopped", "err", err)
		}
	}()
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			log.Warn("can't close observe http service", "err", err)
		}
		wg.Wait()
	}
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}

	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXVersion(handler)
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			fatal("API server stopped:", err)
		}
	}()
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			log.Warn("can't close API http service", "err", err)
		}
		wg.Wait()
	}
}

func printStartupMessage(gene *genesis.Genesis, instanceDir, apiURL, observeURL string, seq uint64) {
	if observeURL == "" {
		observeURL = "disabled"
	}
	fmt.Printf(`Starting %v
    Genesis     [ %v ]
    Last seq    [ %v ]
    Instance    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		fullVersion(),
		gene.Name,
		seq,
		instanceDir,
		apiURL,
		observeURL)
}
