// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"
	"math/big"

	"github.com/meterio/nft-auction/meter"
)

// AuctionRecord is the stored state of one auction.
type AuctionRecord struct {
	ID            uint64
	Seller        meter.Address
	Duration      uint64 // seconds
	StartTime     uint64 // unix seconds
	StartingPrice *big.Int
	NFTContract   meter.Address
	TokenID       *big.Int
	HighestBidder meter.Address
	HighestPrice  *big.Int
	HighestToken  meter.Address // zero for ETH
	BidCount      uint32
	Ended         bool
	Category      string `rlp:"optional"`
}

// EndTime is the last second at which bids are accepted.
func (r *AuctionRecord) EndTime() uint64 {
	return r.StartTime + r.Duration
}

// IsOpen reports whether bids are accepted at now.
func (r *AuctionRecord) IsOpen(now uint64) bool {
	return !r.Ended && now <= r.EndTime()
}

// HasBids reports whether at least one bid was accepted.
func (r *AuctionRecord) HasBids() bool {
	return !r.HighestBidder.IsZero()
}

// HasItem reports whether an NFT is held in escrow for this auction.
func (r *AuctionRecord) HasItem() bool {
	return !r.NFTContract.IsZero()
}

func (r *AuctionRecord) ToString() string {
	return fmt.Sprintf("Auction(id=%v, seller=%v, nft=%v#%v, start=%v, duration=%v, startingPrice=%v, highest=%v %v by %v, bids=%v, ended=%v, category=%q)",
		r.ID, r.Seller, r.NFTContract, r.TokenID, r.StartTime, r.Duration, r.StartingPrice,
		r.HighestPrice, r.HighestToken, r.HighestBidder, r.BidCount, r.Ended, r.Category)
}

// legacyRecord is the storage layout written by version 1 of the registry.
type legacyRecord struct {
	Seller        meter.Address
	Duration      uint64
	StartingPrice *big.Int
	NFTContract   meter.Address
	TokenID       *big.Int
	HighestBidder meter.Address
	HighestPrice  *big.Int
	Ended         bool
}
