// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

// Config is the layout of the file given by --config.
type Config struct {
	DataDir   string `toml:"data_dir"`
	Genesis   string `toml:"genesis"`
	Persist   *bool  `toml:"persist"`
	Verbosity *int   `toml:"verbosity"`
	NTPServer string `toml:"ntp_server"`

	API struct {
		Addr    string `toml:"addr"`
		Cors    string `toml:"cors"`
		Timeout *int   `toml:"timeout"`
	} `toml:"api"`

	Observe struct {
		Addr string `toml:"addr"`
	} `toml:"observe"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer file.Close()

	var cfg Config
	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %v", path)
	}
	return &cfg, nil
}

// flagValues maps flag names to the values present in c.
func (c *Config) flagValues() map[string]string {
	values := make(map[string]string)
	str := func(name, v string) {
		if v != "" {
			values[name] = v
		}
	}
	str(dataDirFlag.Name, c.DataDir)
	str(genesisFlag.Name, c.Genesis)
	str(ntpServerFlag.Name, c.NTPServer)
	str(apiAddrFlag.Name, c.API.Addr)
	str(apiCorsFlag.Name, c.API.Cors)
	str(observeAddrFlag.Name, c.Observe.Addr)
	if c.Persist != nil {
		values[persistFlag.Name] = strconv.FormatBool(*c.Persist)
	}
	if c.Verbosity != nil {
		values[verbosityFlag.Name] = strconv.Itoa(*c.Verbosity)
	}
	if c.API.Timeout != nil {
		values[apiTimeoutFlag.Name] = strconv.Itoa(*c.API.Timeout)
	}
	return values
}

// applyConfig loads the --config file, if any, into the flags of ctx.
// Flags given on the command line win.
func applyConfig(ctx *cli.Context) error {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return nil
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	for name, value := range cfg.flagValues() {
		if ctx.IsSet(name) {
			continue
		}
		if err := ctx.Set(name, value); err != nil {
			return errors.Wrapf(err, "config %v", name)
		}
	}
	return nil
}
