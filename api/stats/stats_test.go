// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stats_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/stats"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller = meter.BytesToAddress([]byte("seller"))
	alice  = meter.BytesToAddress([]byte("alice"))
	bob    = meter.BytesToAddress([]byte("bob"))
)

func initStatsServer(t *testing.T) *httptest.Server {
	db, err := logdb.NewMem()
	require.Nil(t, err)
	t.Cleanup(db.Close)

	for i := uint64(0); i < 2; i++ {
		require.Nil(t, db.Prepare(i+1, 100).AddAuction(&logdb.Auction{
			AuctionID:  i,
			Seller:     seller,
			TokenID:    new(big.Int),
			StartPrice: meter.MustParseEther("0.1"),
			Duration:   60,
			StartTime:  100,
		}).Commit())
	}
	bid := func(seq, id uint64, bidder meter.Address, amount string) {
		require.Nil(t, db.Prepare(seq, 100+seq).AddBid(&logdb.Bid{
			TxID:      meter.BytesToBytes32(new(big.Int).SetUint64(seq).Bytes()),
			Seq:       seq,
			AuctionID: id,
			Bidder:    bidder,
			Amount:    meter.MustParseEther(amount),
			Timestamp: 100 + seq,
		}).Commit())
	}
	bid(3, 0, alice, "1")
	bid(4, 0, bob, "2")
	bid(5, 1, alice, "3")
	require.Nil(t, db.Prepare(6, 200).EndAuction(0, bob, meter.MustParseEther("2"), meter.Address{}, 200).Commit())

	router := mux.NewRouter()
	stats.New(db).Mount(router, "/stats")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string, v interface{}) {
	res, err := http.Get(url)
	require.Nil(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	data, err := io.ReadAll(res.Body)
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal(data, v))
}

func TestStats(t *testing.T) {
	ts := initStatsServer(t)

	var s stats.Stats
	httpGet(t, ts.URL+"/stats", &s)
	assert.Equal(t, stats.Stats{TotalAuctions: 2, ActiveAuctions: 1, EndedAuctions: 1, TotalBids: 3}, s)

	var es stats.EnhancedStats
	httpGet(t, ts.URL+"/stats/enhanced", &es)
	assert.Equal(t, s, es.Stats)
	assert.Equal(t, meter.MustParseEther("3").String(), es.TVL)
	assert.Equal(t, meter.MustParseEther("3").String(), es.TVLByToken[meter.Address{}])
	assert.Equal(t, meter.MustParseEther("6").String(), es.TotalVolume)
	assert.InDelta(t, 2.0, es.MeanBid, 1e-9)
	assert.InDelta(t, 1.0, es.StdDevBid, 1e-9)
	assert.Equal(t, uint64(2), es.UniqueBidders)
}
