// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/meterio/nft-auction/state"
	"github.com/meterio/nft-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice   = meter.BytesToAddress([]byte("alice"))
	nftAddr = meter.BytesToAddress([]byte("nft"))
)

func newEnv(t *testing.T, caller meter.Address) *setypes.ScriptEnv {
	kv, err := lvldb.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { kv.Close() })
	st := state.New(kv, nil)
	return setypes.NewScriptEnv(st, &xenv.TransactionContext{Origin: caller, Timestamp: 100}, &meter.AuctionAccountAddr)
}

func TestEncodeDecode(t *testing.T) {
	body := auction.NewCreateBody(60, big.NewInt(1000), nftAddr, big.NewInt(3))
	data, err := script.EncodeScriptData(body)
	require.Nil(t, err)
	assert.True(t, script.IsScriptData(data))
	assert.Equal(t, script.ScriptPrefix[:], data[:4])
	assert.Equal(t, script.ScriptPattern[:], data[4:8])

	sd, err := script.SplitScriptData(data)
	require.Nil(t, err)
	assert.Equal(t, script.AUCTION_MODULE_ID, sd.Header.GetModID())

	decoded, err := auction.AuctionDecodeFromBytes(sd.Payload)
	require.Nil(t, err)
	assert.Equal(t, body.Duration, decoded.Duration)
	assert.Equal(t, body.NFTContract, decoded.NFTContract)

	_, err = script.EncodeScriptData("nope")
	assert.Equal(t, script.ErrUnknownBody, err)
}

func TestHandleScriptData(t *testing.T) {
	se := script.NewScriptEngine(pricefeed.NewDirectory())
	assert.Len(t, se.Modules(), 2)

	env := newEnv(t, alice)
	data, err := script.EncodeScriptData(auction.NewCreateBody(60, big.NewInt(1000), meter.Address{}, big.NewInt(0)))
	require.Nil(t, err)

	out, err := se.HandleScriptData(env, data)
	require.Nil(t, err)
	var id uint64
	require.Nil(t, rlp.DecodeBytes(out.GetData(), &id))
	assert.Equal(t, uint64(0), id)
	assert.Len(t, out.GetEvents(), 1)

	env = newEnv(t, alice)
	data, err = script.EncodeScriptData(tokens.NewERC20MintBody(nftAddr, alice, big.NewInt(5), 0))
	require.Nil(t, err)
	out, err = se.HandleScriptData(env, data)
	require.Nil(t, err)
	assert.Len(t, out.GetTransfers(), 1)
}

func TestHandleMalformed(t *testing.T) {
	se := script.NewScriptEngine(nil)
	env := newEnv(t, alice)

	_, err := se.HandleScriptData(env, []byte{0x01, 0x02})
	assert.Equal(t, script.ErrNotScript, err)

	_, err = se.HandleScriptData(env, []byte{0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0xc0})
	assert.Equal(t, script.ErrPatternMismatch, err)

	payload, _ := rlp.EncodeToBytes(&script.ScriptData{Header: script.ScriptHeader{ModID: 77}})
	data := append(append(script.ScriptPrefix[:], script.ScriptPattern[:]...), payload...)
	_, err = se.HandleScriptData(env, data)
	assert.ErrorIs(t, err, script.ErrUnknownModule)
}
