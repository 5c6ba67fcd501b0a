// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package indexer

import (
	"context"
	"log/slog"

	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var log = slog.Default().With("pkg", "indexer")

var indexedCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "indexer_outputs_total",
	Help: "Runtime outputs written to the log db",
})

func init() {
	prometheus.MustRegister(indexedCounter)
}

// Indexer writes committed runtime outputs into the log db.
type Indexer struct {
	db *logdb.LogDB
}

func New(db *logdb.LogDB) *Indexer {
	return &Indexer{db: db}
}

// Index writes the raw logs of out and the auction rows derived from them.
func (ix *Indexer) Index(out *runtime.Output) error {
	batch := ix.db.Prepare(out.Seq, out.Timestamp).
		ForTransaction(out.TxID, out.Origin).
		Insert(out.Events, out.Transfers)

	for _, e := range out.Events {
		if e.Address != auction.AuctionAccountAddr {
			continue
		}
		decoded, err := auction.DecodeEvent(e)
		if err != nil {
			log.Warn("skip undecodable registry event", "seq", out.Seq, "err", err)
			continue
		}
		switch ev := decoded.(type) {
		case *auction.AuctionCreated:
			batch.AddAuction(&logdb.Auction{
				AuctionID:   ev.AuctionID,
				Seller:      ev.Seller,
				NFTContract: ev.NFTContract,
				TokenID:     ev.TokenID,
				StartPrice:  ev.StartPrice,
				Duration:    ev.Duration,
				StartTime:   ev.StartTime,
				Category:    ev.Category,
			})
		case *auction.BidPlaced:
			batch.AddBid(&logdb.Bid{
				TxID:      out.TxID,
				Seq:       out.Seq,
				AuctionID: ev.AuctionID,
				Bidder:    ev.Bidder,
				Amount:    ev.Amount,
				Token:     ev.Token,
				Timestamp: ev.Timestamp,
			})
		case *auction.AuctionEnded:
			batch.EndAuction(ev.AuctionID, ev.Winner, ev.FinalPrice, ev.Token, ev.Timestamp)
		}
	}
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "index seq %v", out.Seq)
	}
	indexedCounter.Inc()
	return nil
}

// Run indexes every output of rt until ctx is done.
func (ix *Indexer) Run(ctx context.Context, rt *runtime.Runtime) error {
	ch := make(chan *runtime.Output, 256)
	sub := rt.SubscribeOutputs(ch)
	defer sub.Unsubscribe()

	log.Info("indexer started", "db", ix.db.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case out := <-ch:
			if err := ix.Index(out); err != nil {
				log.Error("index failed", "err", err)
			}
		}
	}
}
