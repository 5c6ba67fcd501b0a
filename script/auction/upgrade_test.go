// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLegacy(st *state.State, id uint64, r *legacyRecord) {
	st.EncodeStorage(AuctionAccountAddr, recordKey(id), func() ([]byte, error) {
		return rlp.EncodeToBytes(r)
	})
}

func TestMigrateFresh(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv, nil)
	a := NewAuction(nil)

	from, to, err := a.Migrate(st, 100)
	assert.Nil(t, err)
	assert.Equal(t, StorageV2, from)
	assert.Equal(t, StorageV2, to)
	assert.Equal(t, StorageV2, GetStorageVersion(st))

	// idempotent
	from, to, err = a.Migrate(st, 200)
	assert.Nil(t, err)
	assert.Equal(t, from, to)
}

func TestMigrateV1(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv, nil)
	a := NewAuction(nil)

	seller := meter.BytesToAddress([]byte("seller"))
	bidder := meter.BytesToAddress([]byte("bidder"))
	writeLegacy(st, 0, &legacyRecord{
		Seller:        seller,
		Duration:      10,
		StartingPrice: big.NewInt(100),
		NFTContract:   meter.BytesToAddress([]byte("nft")),
		TokenID:       big.NewInt(1),
		HighestBidder: bidder,
		HighestPrice:  big.NewInt(200),
		Ended:         true,
	})
	writeLegacy(st, 1, &legacyRecord{
		Seller:        seller,
		Duration:      50,
		StartingPrice: big.NewInt(300),
		TokenID:       big.NewInt(0),
		HighestPrice:  big.NewInt(0),
	})
	a.setNextAuctionID(st, 2)
	require.Nil(t, st.Stage().Commit())

	// the v1 layout does not decode as the current one
	_, err := a.GetAuction(state.New(kv, nil), 0)
	assert.NotNil(t, err)

	st = state.New(kv, nil)
	from, to, err := a.Migrate(st, 1000)
	require.Nil(t, err)
	assert.Equal(t, StorageV1, from)
	assert.Equal(t, StorageV2, to)

	ended, err := a.GetAuction(st, 0)
	require.Nil(t, err)
	assert.Equal(t, bidder, ended.HighestBidder)
	assert.Equal(t, "200", ended.HighestPrice.String())
	assert.Equal(t, uint32(1), ended.BidCount)
	assert.Equal(t, uint64(0), ended.StartTime)
	assert.True(t, ended.Ended)

	open, err := a.GetAuction(st, 1)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), open.StartTime)
	assert.Equal(t, "300", open.HighestPrice.String(), "price starts at the starting price")
	assert.True(t, open.IsOpen(1050))
	assert.False(t, open.IsOpen(1051))
	assert.Equal(t, uint64(2), a.GetNextAuctionID(st))
}

func TestMigrateFutureVersion(t *testing.T) {
	kv, _ := lvldb.NewMem()
	defer kv.Close()
	st := state.New(kv, nil)
	setStorageVersion(st, 9)

	_, _, err := NewAuction(nil).Migrate(st, 0)
	assert.Equal(t, ErrUnsupportedVersion, err)
}
