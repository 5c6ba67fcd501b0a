// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"math/big"

	"gonum.org/v1/gonum/stat"
	"github.com/meterio/nft-auction/meter"
	"github.com/shopspring/decimal"
)

// Stats counts indexed auctions and bids.
func (db *LogDB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	row := db.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(ended = 0), 0), COALESCE(SUM(ended = 1), 0) FROM auction")
	if err := row.Scan(&s.TotalAuctions, &s.ActiveAuctions, &s.EndedAuctions); err != nil {
		return nil, err
	}
	total, err := db.count(ctx, "SELECT COUNT(*) FROM bid")
	if err != nil {
		return nil, err
	}
	s.TotalBids = total
	return &s, nil
}

// EnhancedStats adds value locked in active auctions and bid volume to Stats.
func (db *LogDB) EnhancedStats(ctx context.Context) (*EnhancedStats, error) {
	base, err := db.Stats(ctx)
	if err != nil {
		return nil, err
	}
	es := &EnhancedStats{
		Stats:       *base,
		TVL:         new(big.Int),
		TVLByToken:  make(map[meter.Address]*big.Int),
		TotalVolume: new(big.Int),
	}

	rows, err := db.db.QueryContext(ctx, "SELECT highestBid, token FROM auction WHERE ended = 0 AND highestBid IS NOT NULL")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var amount, token []byte
		if err := rows.Scan(&amount, &token); err != nil {
			rows.Close()
			return nil, err
		}
		v := new(big.Int).SetBytes(amount)
		addr := meter.BytesToAddress(token)
		es.TVL.Add(es.TVL, v)
		if cur, ok := es.TVLByToken[addr]; ok {
			cur.Add(cur, v)
		} else {
			es.TVLByToken[addr] = v
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.db.QueryContext(ctx, "SELECT amount, token, bidder FROM bid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ethBids []float64
	bidders := make(map[meter.Address]struct{})
	for rows.Next() {
		var amount, token, bidder []byte
		if err := rows.Scan(&amount, &token, &bidder); err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(amount)
		es.TotalVolume.Add(es.TotalVolume, v)
		bidders[meter.BytesToAddress(bidder)] = struct{}{}
		if meter.BytesToAddress(token).IsZero() {
			f, _ := decimal.NewFromBigInt(v, -meter.EtherDecimals).Float64()
			ethBids = append(ethBids, f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	es.UniqueBidder = uint64(len(bidders))
	switch {
	case len(ethBids) > 1:
		es.MeanBid = stat.Mean(ethBids, nil)
		es.StdDevBid = stat.StdDev(ethBids, nil)
	case len(ethBids) == 1:
		es.MeanBid = ethBids[0]
	}
	return es, nil
}
