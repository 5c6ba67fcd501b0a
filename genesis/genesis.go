// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/script"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/meterio/nft-auction/state"
	"github.com/meterio/nft-auction/xenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Account is a pre-funded ETH account. Balance is in ether.
type Account struct {
	Address meter.Address `yaml:"address"`
	Balance string        `yaml:"balance"`
}

// TokenBalance is an ERC-20 allocation in whole token units.
type TokenBalance struct {
	Address meter.Address `yaml:"address"`
	Amount  string        `yaml:"amount"`
}

type ERC20 struct {
	Contract meter.Address  `yaml:"contract"`
	Decimals uint8          `yaml:"decimals"`
	Balances []TokenBalance `yaml:"balances"`
}

type NFT struct {
	Contract meter.Address `yaml:"contract"`
	TokenID  uint64        `yaml:"tokenId"`
	Owner    meter.Address `yaml:"owner"`
	URI      string        `yaml:"uri,omitempty"`
}

// Feed binds token to a static USD price feed. Answer is in USD.
type Feed struct {
	Token    meter.Address `yaml:"token"`
	Feed     meter.Address `yaml:"feed"`
	Answer   string        `yaml:"answer"`
	Decimals uint8         `yaml:"decimals"`
}

// Genesis describes the initial ledgers and registry settings.
type Genesis struct {
	Name     string        `yaml:"name"`
	LaunchAt uint64        `yaml:"launchTime"`
	Admin    meter.Address `yaml:"admin"`
	Minter   meter.Address `yaml:"minter"`
	Accounts []Account     `yaml:"accounts"`
	ERC20s   []ERC20       `yaml:"erc20"`
	NFTs     []NFT         `yaml:"nfts"`
	Feeds    []Feed        `yaml:"feeds"`
}

// Load reads a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.UnmarshalStrict(data, &gen); err != nil {
		return nil, errors.Wrap(err, "parse genesis")
	}
	if gen.Name == "" {
		gen.Name = "custom"
	}
	return &gen, nil
}

// RegisterFeeds installs the static aggregators of g into feeds.
// Aggregators live in memory and are registered on every start.
func (g *Genesis) RegisterFeeds(feeds *pricefeed.Directory) error {
	for _, f := range g.Feeds {
		answer, err := meter.ParseUnits(f.Answer, int32(f.Decimals))
		if err != nil {
			return errors.Wrapf(err, "feed %v answer", f.Feed)
		}
		feeds.Register(f.Feed, pricefeed.NewStatic(answer, f.Decimals))
	}
	return nil
}

// Applied reports whether a genesis was already written to st.
func Applied(st *state.State) bool {
	return builtin.Params.Native(st).Get(meter.KeyGenesisApplied).Sign() != 0
}

// Apply writes the genesis allocations into st once. It returns false when
// st already holds a genesis.
func (g *Genesis) Apply(st *state.State, engine *script.ScriptEngine) (bool, error) {
	if Applied(st) {
		return false, nil
	}
	params := builtin.Params.Native(st)
	params.SetAddress(meter.KeyAuctionAdmin, g.Admin)
	params.SetAddress(meter.KeyTokenMinter, g.Minter)

	for _, acc := range g.Accounts {
		bal, err := meter.ParseEther(acc.Balance)
		if err != nil {
			return false, errors.Wrapf(err, "account %v balance", acc.Address)
		}
		st.SetBalance(acc.Address, bal)
	}

	for _, t := range g.ERC20s {
		token := builtin.ERC20(t.Contract, st)
		if t.Decimals != 0 {
			token.SetDecimals(t.Decimals)
		}
		for _, b := range t.Balances {
			amount, err := meter.ParseUnits(b.Amount, int32(token.Decimals()))
			if err != nil {
				return false, errors.Wrapf(err, "erc20 %v balance of %v", t.Contract, b.Address)
			}
			if err := token.Mint(b.Address, amount); err != nil {
				return false, errors.Wrapf(err, "erc20 %v mint", t.Contract)
			}
		}
	}

	for _, n := range g.NFTs {
		token, id := builtin.NFT(n.Contract, st), new(big.Int).SetUint64(n.TokenID)
		if err := token.Mint(n.Owner, id); err != nil {
			return false, errors.Wrapf(err, "nft %v #%v", n.Contract, n.TokenID)
		}
		if n.URI != "" {
			if err := token.SetTokenURI(id, n.URI); err != nil {
				return false, errors.Wrapf(err, "nft %v #%v uri", n.Contract, n.TokenID)
			}
		}
	}

	if len(g.Feeds) > 0 {
		env := setypes.NewScriptEnv(st, &xenv.TransactionContext{
			Origin:    g.Admin,
			Timestamp: g.LaunchAt,
		}, &meter.AuctionAccountAddr)
		for _, f := range g.Feeds {
			if err := engine.Auction().SetPriceFeed(env, f.Token, f.Feed); err != nil {
				return false, errors.Wrapf(err, "price feed of %v", f.Token)
			}
		}
	}

	params.Set(meter.KeyGenesisApplied, big.NewInt(1))
	if err := st.Err(); err != nil {
		return false, err
	}
	log.Info("genesis applied", "name", g.Name, "accounts", len(g.Accounts), "erc20", len(g.ERC20s), "nfts", len(g.NFTs), "feeds", len(g.Feeds))
	return true, nil
}
