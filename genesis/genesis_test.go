// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"testing"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/genesis"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: sample
launchTime: 1700000000
admin: "0x0000000000000000000000000000000000000a01"
minter: "0x0000000000000000000000000000000000000a01"
accounts:
  - address: "0x0000000000000000000000000000000000000b01"
    balance: "2.5"
erc20:
  - contract: "0x0000000000000000000000000000000000000c01"
    decimals: 6
    balances:
      - address: "0x0000000000000000000000000000000000000b01"
        amount: "12.5"
nfts:
  - contract: "0x0000000000000000000000000000000000000d01"
    tokenId: 4
    owner: "0x0000000000000000000000000000000000000b01"
feeds:
  - token: "0x0000000000000000000000000000000000000000"
    feed: "0x0000000000000000000000000000000000000e01"
    answer: "2000"
    decimals: 8
`

func newState(t *testing.T) *state.State {
	kv, err := lvldb.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { kv.Close() })
	return state.New(kv, nil)
}

func TestParseAndApply(t *testing.T) {
	gen, err := genesis.Parse([]byte(sample))
	require.Nil(t, err)
	assert.Equal(t, "sample", gen.Name)

	holder := meter.MustParseAddress("0x0000000000000000000000000000000000000b01")
	usdc := meter.MustParseAddress("0x0000000000000000000000000000000000000c01")
	nft := meter.MustParseAddress("0x0000000000000000000000000000000000000d01")
	feed := meter.MustParseAddress("0x0000000000000000000000000000000000000e01")

	feeds := pricefeed.NewDirectory()
	require.Nil(t, gen.RegisterFeeds(feeds))
	answer, decimals, err := feeds.LatestPrice(feed)
	require.Nil(t, err)
	assert.Equal(t, uint8(8), decimals)
	assert.Equal(t, 0, answer.Cmp(big.NewInt(2000_0000_0000)))

	st := newState(t)
	engine := script.NewScriptEngine(feeds)
	applied, err := gen.Apply(st, engine)
	require.Nil(t, err)
	assert.True(t, applied)

	assert.Equal(t, 0, st.GetBalance(holder).Cmp(meter.MustParseEther("2.5")))
	assert.Equal(t, 0, builtin.ERC20(usdc, st).BalanceOf(holder).Cmp(big.NewInt(12_500_000)))
	owner, err := builtin.NFT(nft, st).OwnerOf(big.NewInt(4))
	require.Nil(t, err)
	assert.Equal(t, holder, owner)
	assert.Equal(t, feed, engine.Auction().GetPriceFeed(st, meter.Address{}))
	assert.Equal(t, gen.Admin, engine.Auction().GetAdmin(st))

	applied, err = gen.Apply(st, engine)
	require.Nil(t, err)
	assert.False(t, applied)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := genesis.Parse([]byte("name: x\nbogus: 1\n"))
	assert.NotNil(t, err)
}

func TestDevnet(t *testing.T) {
	gen := genesis.NewDevnet()
	assert.Len(t, genesis.DevAccounts(), 5)
	assert.Equal(t, genesis.DevAccounts()[0].Address, gen.Admin)

	st := newState(t)
	feeds := pricefeed.NewDirectory()
	require.Nil(t, gen.RegisterFeeds(feeds))
	applied, err := gen.Apply(st, script.NewScriptEngine(feeds))
	require.Nil(t, err)
	assert.True(t, applied)
	assert.True(t, genesis.Applied(st))
	owner, err := builtin.NFT(genesis.DevNFTAddr, st).OwnerOf(big.NewInt(1))
	require.Nil(t, err)
	assert.Equal(t, genesis.DevAccounts()[1].Address, owner)
	assert.Equal(t, "ipfs://devnet/1.json", builtin.NFT(genesis.DevNFTAddr, st).TokenURI(big.NewInt(1)))
	assert.Equal(t, []meter.Address{genesis.DevNFTAddr}, builtin.NFTRegistry(st).Contracts())
	assert.Equal(t, uint8(6), builtin.ERC20(genesis.DevUSDCAddr, st).Decimals())
}
