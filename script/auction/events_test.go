// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"math/big"
	"testing"

	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvents(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(t, 42)

	env := f.env(seller, nil, t0)
	_, err := f.a.CreateAuction(env, 30, big.NewInt(500), nftAddr, big.NewInt(42))
	require.Nil(t, err)
	require.Len(t, env.GetEvents(), 1)

	ev := env.GetEvents()[0]
	assert.Equal(t, auction.AuctionAccountAddr, ev.Address)
	assert.Equal(t, meter.Bytes32(auction.AuctionCreatedEvent.ID), ev.Topics[0])
	assert.Len(t, ev.Topics, 4)

	decoded, err := auction.DecodeEvent(ev)
	require.Nil(t, err)
	created := decoded.(*auction.AuctionCreated)
	assert.Equal(t, uint64(0), created.AuctionID)
	assert.Equal(t, seller, created.Seller)
	assert.Equal(t, nftAddr, created.NFTContract)
	assert.Equal(t, "42", created.TokenID.String())
	assert.Equal(t, "500", created.StartPrice.String())
	assert.Equal(t, uint64(30), created.Duration)
	assert.Equal(t, t0, created.StartTime)

	env = f.env(buyer, big.NewInt(600), t0+1)
	require.Nil(t, f.a.PlaceBid(env, 0, meter.Address{}, nil))
	require.Len(t, env.GetTransfers(), 1)
	decoded, err = auction.DecodeEvent(env.GetEvents()[0])
	require.Nil(t, err)
	bid := decoded.(*auction.BidPlaced)
	assert.Equal(t, buyer, bid.Bidder)
	assert.Equal(t, "600", bid.Amount.String())
	assert.True(t, bid.Token.IsZero())
	assert.Equal(t, t0+1, bid.Timestamp)

	env = f.env(admin, nil, t0+2)
	require.Nil(t, f.a.SetPriceFeed(env, meter.Address{}, ethFeed))
	decoded, err = auction.DecodeEvent(env.GetEvents()[0])
	require.Nil(t, err)
	assert.Equal(t, ethFeed, decoded.(*auction.PriceFeedSet).Feed)

	next := meter.BytesToAddress([]byte("next"))
	env = f.env(admin, nil, t0+3)
	require.Nil(t, f.a.SetAdmin(env, next))
	require.Len(t, env.GetEvents(), 1)
	decoded, err = auction.DecodeEvent(env.GetEvents()[0])
	require.Nil(t, err)
	changed := decoded.(*auction.AdminChanged)
	assert.Equal(t, admin, changed.PreviousAdmin)
	assert.Equal(t, next, changed.NewAdmin)
}

func TestDecodeForeignEvent(t *testing.T) {
	_, err := auction.DecodeEvent(&tx.Event{Address: nftAddr, Topics: []meter.Bytes32{{}}})
	assert.NotNil(t, err)

	_, err = auction.DecodeEvent(&tx.Event{Address: auction.AuctionAccountAddr, Topics: []meter.Bytes32{{0x1}}})
	assert.NotNil(t, err)
}
