// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"database/sql"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller  = meter.BytesToAddress([]byte("seller"))
	seller2 = meter.BytesToAddress([]byte("seller2"))
	alice   = meter.BytesToAddress([]byte("alice"))
	bob     = meter.BytesToAddress([]byte("bob"))
	nftAddr = meter.BytesToAddress([]byte("nft"))
	usdc    = meter.BytesToAddress([]byte("usdc"))
)

func newDB(t *testing.T) *logdb.LogDB {
	db, err := logdb.NewMem()
	require.Nil(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestEvents(t *testing.T) {
	db := newDB(t)

	txEvent := &tx.Event{
		Address: meter.BytesToAddress([]byte("addr")),
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 97, 48},
	}

	for i := uint64(1); i <= 100; i++ {
		err := db.Prepare(i, 1000+i).
			ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin"))).
			Insert(tx.Events{txEvent}, nil).
			Commit()
		require.Nil(t, err)
	}

	limit := 5
	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	other := meter.BytesToBytes32([]byte("other"))
	addr := meter.BytesToAddress([]byte("addr"))
	es, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   10,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: logdb.DESC,
		CriteriaSet: []*logdb.EventCriteria{
			{Address: &addr, Topics: [5]*meter.Bytes32{&t0, &other}},
			{Address: &addr, Topics: [5]*meter.Bytes32{&t0, &t1}},
		},
	})
	require.Nil(t, err)
	require.Len(t, es, limit)
	assert.Equal(t, uint64(10), es[0].Seq)
	assert.Equal(t, t1, *es[0].Topics[1])
	assert.Nil(t, es[0].Topics[2])
	assert.Equal(t, txEvent.Data, es[0].Data)

	es, err = db.FilterEvents(context.Background(), &logdb.EventFilter{
		Range: &logdb.Range{Unit: logdb.Time, From: 1050, To: 1059},
	})
	require.Nil(t, err)
	assert.Len(t, es, 10)

	es, err = db.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Topics: [5]*meter.Bytes32{&other}}},
	})
	require.Nil(t, err)
	assert.Empty(t, es)

	seq, err := db.LastSeq(context.Background())
	require.Nil(t, err)
	assert.Equal(t, uint64(100), seq)
}

func TestLastSeqWithoutLogs(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	seq, err := db.LastSeq(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), seq)

	require.Nil(t, db.Prepare(7, 1000).Commit())
	seq, err = db.LastSeq(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(7), seq)

	// replaying an older batch keeps the high-water mark
	require.Nil(t, db.Prepare(3, 900).Commit())
	seq, err = db.LastSeq(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(7), seq)
}

func TestTransfers(t *testing.T) {
	db := newDB(t)

	transfer := &tx.Transfer{
		Sender:    alice,
		Recipient: meter.AuctionAccountAddr,
		Amount:    big.NewInt(100),
		Token:     usdc,
	}
	for i := uint64(1); i <= 20; i++ {
		err := db.Prepare(i, i).ForTransaction(meter.BytesToBytes32([]byte("txID")), alice).
			Insert(nil, tx.Transfers{transfer}).Commit()
		require.Nil(t, err)
	}

	ts, err := db.FilterTransfers(context.Background(), &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{{Sender: &alice}},
		Options:     &logdb.Options{Offset: 5, Limit: 5},
	})
	require.Nil(t, err)
	require.Len(t, ts, 5)
	assert.Equal(t, uint64(6), ts[0].Seq)
	assert.Equal(t, usdc, ts[0].Token)
	assert.Equal(t, 0, ts[0].Amount.Cmp(big.NewInt(100)))

	ts, err = db.FilterTransfers(context.Background(), &logdb.TransferFilter{
		CriteriaSet: []*logdb.TransferCriteria{{Recipient: &alice}},
	})
	require.Nil(t, err)
	assert.Empty(t, ts)
}

func seed(t *testing.T, db *logdb.LogDB) {
	auctions := []*logdb.Auction{
		{AuctionID: 0, Seller: seller, NFTContract: nftAddr, TokenID: big.NewInt(1), StartPrice: meter.MustParseEther("0.01"), Duration: 10, StartTime: 100, Category: "art"},
		{AuctionID: 1, Seller: seller, NFTContract: nftAddr, TokenID: big.NewInt(2), StartPrice: meter.MustParseEther("2"), Duration: 10, StartTime: 200, Category: "art"},
		{AuctionID: 2, Seller: seller2, NFTContract: meter.Address{}, TokenID: big.NewInt(0), StartPrice: meter.MustParseEther("0.5"), Duration: 10, StartTime: 300, Category: "music"},
	}
	for i, a := range auctions {
		require.Nil(t, db.Prepare(uint64(i+1), a.StartTime).AddAuction(a).Commit())
	}

	bid := func(seq, id uint64, bidder meter.Address, amount string) {
		b := &logdb.Bid{
			TxID:      meter.BytesToBytes32(new(big.Int).SetUint64(seq).Bytes()),
			Seq:       seq,
			AuctionID: id,
			Bidder:    bidder,
			Amount:    meter.MustParseEther(amount),
			Timestamp: 100 + seq,
		}
		require.Nil(t, db.Prepare(seq, b.Timestamp).AddBid(b).Commit())
	}
	bid(10, 0, alice, "1")
	bid(11, 0, bob, "3")
	bid(12, 2, alice, "0.6")

	require.Nil(t, db.Prepare(13, 120).EndAuction(0, bob, meter.MustParseEther("3"), meter.Address{}, 120).Commit())
}

func TestFilterAuctions(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	ctx := context.Background()

	all, total, err := db.FilterAuctions(ctx, nil)
	require.Nil(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(2), all[0].AuctionID, "default sort is newest first")

	active, total, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{Status: logdb.StatusActive})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), total)
	for _, a := range active {
		assert.False(t, a.Ended)
	}

	ended, _, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{Status: logdb.StatusEnded})
	require.Nil(t, err)
	require.Len(t, ended, 1)
	e := ended[0]
	assert.Equal(t, uint64(0), e.AuctionID)
	require.NotNil(t, e.EndTime)
	assert.Equal(t, uint64(120), *e.EndTime)
	assert.Equal(t, bob, *e.HighestBidder)
	assert.Equal(t, 0, e.HighestBid.Cmp(meter.MustParseEther("3")))
	assert.Equal(t, uint32(2), e.BidCount)

	bySeller, total, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{Seller: &seller2})
	require.Nil(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, uint64(2), bySeller[0].AuctionID)

	byPrice, _, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{SortBy: logdb.SortStartPrice, Order: logdb.ASC})
	require.Nil(t, err)
	assert.Equal(t, []uint64{0, 2, 1}, []uint64{byPrice[0].AuctionID, byPrice[1].AuctionID, byPrice[2].AuctionID})

	paged, total, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{NFTContract: &nftAddr, Page: logdb.Page{Page: 2, PageSize: 1}})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), total)
	require.Len(t, paged, 1)
	assert.Equal(t, uint64(0), paged[0].AuctionID)

	byCategory, total, err := db.FilterAuctions(ctx, &logdb.AuctionFilter{Category: "music"})
	require.Nil(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Equal(t, uint64(2), byCategory[0].AuctionID)
	assert.Equal(t, "music", byCategory[0].Category)

	_, total, err = db.FilterAuctions(ctx, &logdb.AuctionFilter{Category: "art", Status: logdb.StatusActive})
	require.Nil(t, err)
	assert.Equal(t, uint64(1), total)

	a, err := db.GetAuction(ctx, 1)
	require.Nil(t, err)
	assert.Nil(t, a.HighestBid)
	assert.Nil(t, a.HighestBidder)

	a, err = db.GetAuction(ctx, 42)
	assert.Nil(t, err)
	assert.Nil(t, a)
}

func TestFloorPrices(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	ctx := context.Background()

	floors, err := db.FloorPrices(ctx, nftAddr)
	require.Nil(t, err)
	require.Len(t, floors, 1)
	assert.True(t, floors[0].Token.IsZero())
	assert.Equal(t, 0, floors[0].Price.Cmp(meter.MustParseEther("3")))
	assert.Equal(t, uint64(1), floors[0].Sales)

	// a cheaper sale lowers the floor, an unsold auction does not
	b := &logdb.Bid{TxID: meter.BytesToBytes32([]byte("cheap")), Seq: 14, AuctionID: 1, Bidder: alice, Amount: meter.MustParseEther("2.5"), Timestamp: 210}
	require.Nil(t, db.Prepare(14, 210).AddBid(b).Commit())
	require.Nil(t, db.Prepare(15, 220).EndAuction(1, alice, b.Amount, meter.Address{}, 220).Commit())
	require.Nil(t, db.Prepare(16, 230).AddAuction(&logdb.Auction{
		AuctionID: 3, Seller: seller, NFTContract: nftAddr, TokenID: big.NewInt(3), StartPrice: big.NewInt(1), Duration: 1, StartTime: 225,
	}).Commit())
	require.Nil(t, db.Prepare(17, 240).EndAuction(3, meter.Address{}, big.NewInt(1), meter.Address{}, 240).Commit())

	floors, err = db.FloorPrices(ctx, nftAddr)
	require.Nil(t, err)
	require.Len(t, floors, 1)
	assert.Equal(t, 0, floors[0].Price.Cmp(meter.MustParseEther("2.5")))
	assert.Equal(t, uint64(2), floors[0].Sales)

	floors, err = db.FloorPrices(ctx, usdc)
	require.Nil(t, err)
	assert.Empty(t, floors)
}

func TestAddCategoryColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	raw, err := sql.Open("sqlite3", path)
	require.Nil(t, err)
	_, err = raw.Exec(`CREATE TABLE auction (
	auctionID INTEGER PRIMARY KEY,
	seller BLOB(20) NOT NULL,
	nftContract BLOB(20) NOT NULL,
	tokenID BLOB(32) NOT NULL,
	startPrice BLOB(32) NOT NULL,
	duration INTEGER NOT NULL,
	startTime INTEGER NOT NULL,
	ended INTEGER NOT NULL DEFAULT 0,
	endTime INTEGER,
	highestBidder BLOB(20),
	highestBid BLOB(32),
	token BLOB(20),
	bidCount INTEGER NOT NULL DEFAULT 0
);
INSERT INTO auction(auctionID, seller, nftContract, tokenID, startPrice, duration, startTime) VALUES (5, x'01', x'02', x'03', x'04', 10, 100);`)
	require.Nil(t, err)
	require.Nil(t, raw.Close())

	db, err := logdb.New(path)
	require.Nil(t, err)
	defer db.Close()

	a, err := db.GetAuction(context.Background(), 5)
	require.Nil(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "", a.Category)
	assert.Equal(t, uint64(10), a.Duration)
}

func TestBids(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	ctx := context.Background()

	bids, total, err := db.AuctionBids(ctx, 0, logdb.Page{})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), total)
	require.Len(t, bids, 2)
	assert.Equal(t, bob, bids[0].Bidder)

	bids, total, err = db.BidsByBidder(ctx, alice, logdb.Page{Page: 1, PageSize: 1000})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Len(t, bids, 2)
	assert.Equal(t, uint64(2), bids[0].AuctionID)
}

func TestStats(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	s, err := db.Stats(ctx)
	require.Nil(t, err)
	assert.Equal(t, logdb.Stats{}, *s)

	seed(t, db)
	s, err = db.Stats(ctx)
	require.Nil(t, err)
	assert.Equal(t, logdb.Stats{TotalAuctions: 3, ActiveAuctions: 2, EndedAuctions: 1, TotalBids: 3}, *s)

	es, err := db.EnhancedStats(ctx)
	require.Nil(t, err)
	assert.Equal(t, 0, es.TVL.Cmp(meter.MustParseEther("0.6")))
	assert.Equal(t, 0, es.TotalVolume.Cmp(meter.MustParseEther("4.6")))
	assert.Equal(t, uint64(2), es.UniqueBidder)
	assert.InDelta(t, 4.6/3, es.MeanBid, 1e-9)
	assert.Greater(t, es.StdDevBid, 0.0)
}

func TestPageNormalize(t *testing.T) {
	p := logdb.Page{Page: -3, PageSize: 101}
	p.Normalize()
	assert.Equal(t, logdb.Page{Page: 1, PageSize: logdb.DefaultPageSize}, p)

	p = logdb.Page{Page: 4, PageSize: 100}
	p.Normalize()
	assert.Equal(t, logdb.Page{Page: 4, PageSize: 100}, p)
}

func TestFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.Nil(t, err)
	seed(t, db)
	db.Close()

	db, err = logdb.New(path)
	require.Nil(t, err)
	defer db.Close()
	s, err := db.Stats(context.Background())
	require.Nil(t, err)
	assert.Equal(t, uint64(3), s.TotalAuctions)
}
