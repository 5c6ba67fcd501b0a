// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML file supplying values for flags not given on the command line",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for registry databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "YAML genesis file (devnet genesis if empty)",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save registry state to disk instead of memory",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.IntFlag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	observeAddrFlag = cli.StringFlag{
		Name:  "observe-addr",
		Value: "localhost:8670",
		Usage: "metrics listening address (disabled if empty)",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "ap.pool.ntp.org",
		Usage: "NTP server used to check the local clock (disabled if empty)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-4)",
	}
)
