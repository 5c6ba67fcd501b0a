// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/script/auction"
)

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func toBig(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}

// Auction is the live state of an auction as kept by the registry.
type Auction struct {
	ID            uint64         `json:"id"`
	Seller        meter.Address  `json:"seller"`
	NFTContract   meter.Address  `json:"nftContract"`
	TokenID       string         `json:"tokenId"`
	StartingPrice string         `json:"startingPrice"`
	Duration      uint64         `json:"duration"`
	StartTime     uint64         `json:"startTime"`
	EndTime       uint64         `json:"endTime"`
	HighestBidder *meter.Address `json:"highestBidder"`
	HighestPrice  string         `json:"highestPrice"`
	HighestToken  meter.Address  `json:"highestToken"`
	BidCount      uint32         `json:"bidCount"`
	Ended         bool           `json:"ended"`
	Open          bool           `json:"open"`
	Remaining     string         `json:"remaining"`
	Category      string         `json:"category"`
}

func convertRecord(r *auction.AuctionRecord, now uint64) *Auction {
	a := &Auction{
		ID:            r.ID,
		Seller:        r.Seller,
		NFTContract:   r.NFTContract,
		TokenID:       bigString(r.TokenID),
		StartingPrice: bigString(r.StartingPrice),
		Duration:      r.Duration,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime(),
		HighestPrice:  bigString(r.HighestPrice),
		HighestToken:  r.HighestToken,
		BidCount:      r.BidCount,
		Ended:         r.Ended,
		Open:          !r.Ended && r.IsOpen(now),
		Remaining:     meter.PrettyRemaining(r.EndTime(), now),
		Category:      r.Category,
	}
	if r.HasBids() {
		bidder := r.HighestBidder
		a.HighestBidder = &bidder
	}
	return a
}

// IndexedAuction is an auction row of the log db.
type IndexedAuction struct {
	ID            uint64         `json:"id"`
	Seller        meter.Address  `json:"seller"`
	NFTContract   meter.Address  `json:"nftContract"`
	TokenID       string         `json:"tokenId"`
	StartPrice    string         `json:"startPrice"`
	Duration      uint64         `json:"duration"`
	StartTime     uint64         `json:"startTime"`
	Ended         bool           `json:"ended"`
	EndTime       *uint64        `json:"endTime"`
	HighestBidder *meter.Address `json:"highestBidder"`
	HighestBid    *string        `json:"highestBid"`
	Token         *meter.Address `json:"token"`
	BidCount      uint32         `json:"bidCount"`
	Category      string         `json:"category"`
}

func convertIndexed(a *logdb.Auction) *IndexedAuction {
	ia := &IndexedAuction{
		ID:            a.AuctionID,
		Seller:        a.Seller,
		NFTContract:   a.NFTContract,
		TokenID:       bigString(a.TokenID),
		StartPrice:    bigString(a.StartPrice),
		Duration:      a.Duration,
		StartTime:     a.StartTime,
		Ended:         a.Ended,
		EndTime:       a.EndTime,
		HighestBidder: a.HighestBidder,
		Token:         a.Token,
		BidCount:      a.BidCount,
		Category:      a.Category,
	}
	if a.HighestBid != nil {
		s := a.HighestBid.String()
		ia.HighestBid = &s
	}
	return ia
}

type AuctionList struct {
	Auctions []*IndexedAuction `json:"auctions"`
	Total    uint64            `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

type Bid struct {
	AuctionID uint64        `json:"auctionId"`
	Bidder    meter.Address `json:"bidder"`
	Amount    string        `json:"amount"`
	Token     meter.Address `json:"token"`
	Timestamp uint64        `json:"timestamp"`
	TxID      meter.Bytes32 `json:"txId"`
}

func convertBid(b *logdb.Bid) *Bid {
	return &Bid{
		AuctionID: b.AuctionID,
		Bidder:    b.Bidder,
		Amount:    bigString(b.Amount),
		Token:     b.Token,
		Timestamp: b.Timestamp,
		TxID:      b.TxID,
	}
}

func convertBids(bids []*logdb.Bid) []*Bid {
	out := make([]*Bid, len(bids))
	for i, b := range bids {
		out[i] = convertBid(b)
	}
	return out
}

type BidList struct {
	Bids     []*Bid `json:"bids"`
	Total    uint64 `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// CreateRequest lists an item. A zero nftContract lists no item.
type CreateRequest struct {
	From          meter.Address         `json:"from"`
	Duration      uint64                `json:"duration"`
	StartingPrice *math.HexOrDecimal256 `json:"startingPrice"`
	NFTContract   meter.Address         `json:"nftContract"`
	TokenID       *math.HexOrDecimal256 `json:"tokenId"`
	Category      string                `json:"category,omitempty"`
}

// BidRequest bids on an auction. ETH bids send amount as value, token bids pull it through the allowance.
type BidRequest struct {
	From   meter.Address         `json:"from"`
	Token  meter.Address         `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type EndRequest struct {
	From meter.Address `json:"from"`
}

// Receipt reports a committed call.
type Receipt struct {
	TxID      meter.Bytes32 `json:"txId"`
	Seq       uint64        `json:"seq"`
	Timestamp uint64        `json:"timestamp"`
	AuctionID *uint64       `json:"auctionId,omitempty"`
}
