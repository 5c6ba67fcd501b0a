// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/meterio/nft-auction/meter"
)

const auctionColumns = "auctionID, seller, nftContract, tokenID, startPrice, duration, startTime, ended, endTime, highestBidder, highestBid, token, bidCount, category"

func (db *LogDB) count(ctx context.Context, stmt string, args ...interface{}) (n uint64, err error) {
	err = db.db.QueryRowContext(ctx, stmt, args...).Scan(&n)
	return
}

// FilterAuctions returns one page of auctions matching filter and the total number of matches.
func (db *LogDB) FilterAuctions(ctx context.Context, filter *AuctionFilter) ([]*Auction, uint64, error) {
	if filter == nil {
		filter = &AuctionFilter{}
	}
	page := filter.Page
	page.Normalize()

	var args []interface{}
	where := " WHERE 1"
	switch filter.Status {
	case StatusActive:
		where += " AND ended = 0"
	case StatusEnded:
		where += " AND ended = 1"
	}
	if filter.Seller != nil {
		args = append(args, filter.Seller.Bytes())
		where += " AND seller = ?"
	}
	if filter.NFTContract != nil {
		args = append(args, filter.NFTContract.Bytes())
		where += " AND nftContract = ?"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += " AND category = ?"
	}

	total, err := db.count(ctx, "SELECT COUNT(*) FROM auction"+where, args...)
	if err != nil {
		return nil, 0, err
	}

	var orderBy string
	switch filter.SortBy {
	case SortHighestBid:
		orderBy = "highestBid"
	case SortBidCount:
		orderBy = "bidCount"
	case SortStartPrice:
		orderBy = "startPrice"
	default:
		orderBy = "startTime"
	}
	if filter.Order == ASC {
		orderBy += " ASC"
	} else {
		orderBy += " DESC"
	}

	stmt := "SELECT " + auctionColumns + " FROM auction" + where + " ORDER BY " + orderBy + ", auctionID ASC limit ?, ?"
	args = append(args, page.offset(), page.PageSize)
	auctions, err := db.queryAuctions(ctx, stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	return auctions, total, nil
}

// GetAuction returns the indexed auction id, or nil if it is unknown.
func (db *LogDB) GetAuction(ctx context.Context, id uint64) (*Auction, error) {
	auctions, err := db.queryAuctions(ctx, "SELECT "+auctionColumns+" FROM auction WHERE auctionID = ?", id)
	if err != nil || len(auctions) == 0 {
		return nil, err
	}
	return auctions[0], nil
}

func (db *LogDB) queryAuctions(ctx context.Context, stmt string, args ...interface{}) ([]*Auction, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]*Auction, 0)
	for rows.Next() {
		var (
			a             Auction
			seller        []byte
			nftContract   []byte
			tokenID       []byte
			startPrice    []byte
			endTime       sql.NullInt64
			highestBidder []byte
			highestBid    []byte
			token         []byte
		)
		if err := rows.Scan(
			&a.AuctionID,
			&seller,
			&nftContract,
			&tokenID,
			&startPrice,
			&a.Duration,
			&a.StartTime,
			&a.Ended,
			&endTime,
			&highestBidder,
			&highestBid,
			&token,
			&a.BidCount,
			&a.Category,
		); err != nil {
			return nil, err
		}
		a.Seller = meter.BytesToAddress(seller)
		a.NFTContract = meter.BytesToAddress(nftContract)
		a.TokenID = new(big.Int).SetBytes(tokenID)
		a.StartPrice = new(big.Int).SetBytes(startPrice)
		if endTime.Valid {
			v := uint64(endTime.Int64)
			a.EndTime = &v
		}
		if len(highestBidder) > 0 {
			addr := meter.BytesToAddress(highestBidder)
			a.HighestBidder = &addr
		}
		if len(highestBid) > 0 {
			a.HighestBid = new(big.Int).SetBytes(highestBid)
		}
		if len(token) > 0 {
			addr := meter.BytesToAddress(token)
			a.Token = &addr
		}
		auctions = append(auctions, &a)
	}
	return auctions, rows.Err()
}

// FloorPrices returns, per payment token, the lowest price nftContract items sold for.
// Auctions that ended without bids are not sales.
func (db *LogDB) FloorPrices(ctx context.Context, nftContract meter.Address) ([]*FloorPrice, error) {
	rows, err := db.db.QueryContext(ctx, "SELECT token, MIN(highestBid), COUNT(*) FROM auction WHERE nftContract = ? AND ended = 1 AND highestBidder IS NOT NULL GROUP BY token ORDER BY token ASC",
		nftContract.Bytes())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	floors := make([]*FloorPrice, 0)
	for rows.Next() {
		var (
			f     FloorPrice
			token []byte
			price []byte
		)
		if err := rows.Scan(&token, &price, &f.Sales); err != nil {
			return nil, err
		}
		f.Token = meter.BytesToAddress(token)
		f.Price = new(big.Int).SetBytes(price)
		floors = append(floors, &f)
	}
	return floors, rows.Err()
}

// AuctionBids returns one page of the bids of auction id, newest first.
func (db *LogDB) AuctionBids(ctx context.Context, id uint64, page Page) ([]*Bid, uint64, error) {
	page.Normalize()
	total, err := db.count(ctx, "SELECT COUNT(*) FROM bid WHERE auctionID = ?", id)
	if err != nil {
		return nil, 0, err
	}
	bids, err := db.queryBids(ctx, "SELECT txID, seq, auctionID, bidder, amount, token, timestamp FROM bid WHERE auctionID = ? ORDER BY seq DESC limit ?, ?",
		id, page.offset(), page.PageSize)
	return bids, total, err
}

// BidsByBidder returns one page of the bids placed by bidder, newest first.
func (db *LogDB) BidsByBidder(ctx context.Context, bidder meter.Address, page Page) ([]*Bid, uint64, error) {
	page.Normalize()
	total, err := db.count(ctx, "SELECT COUNT(*) FROM bid WHERE bidder = ?", bidder.Bytes())
	if err != nil {
		return nil, 0, err
	}
	bids, err := db.queryBids(ctx, "SELECT txID, seq, auctionID, bidder, amount, token, timestamp FROM bid WHERE bidder = ? ORDER BY seq DESC limit ?, ?",
		bidder.Bytes(), page.offset(), page.PageSize)
	return bids, total, err
}

func (db *LogDB) queryBids(ctx context.Context, stmt string, args ...interface{}) ([]*Bid, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]*Bid, 0)
	for rows.Next() {
		var (
			b      Bid
			txID   []byte
			bidder []byte
			amount []byte
			token  []byte
		)
		if err := rows.Scan(&txID, &b.Seq, &b.AuctionID, &bidder, &amount, &token, &b.Timestamp); err != nil {
			return nil, err
		}
		b.TxID = meter.BytesToBytes32(txID)
		b.Bidder = meter.BytesToAddress(bidder)
		b.Amount = new(big.Int).SetBytes(amount)
		b.Token = meter.BytesToAddress(token)
		bids = append(bids, &b)
	}
	return bids, rows.Err()
}
