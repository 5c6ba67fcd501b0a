// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	Seq       uint64
	Index     uint32
	Timestamp uint64
	TxID      meter.Bytes32
	TxOrigin  meter.Address
	Address   meter.Address // registry or token ledger
	Topics    [5]*meter.Bytes32
	Data      []byte
}

func newEvent(seq, ts uint64, index uint32, txID meter.Bytes32, txOrigin meter.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		Seq:       seq,
		Index:     index,
		Timestamp: ts,
		TxID:      txID,
		TxOrigin:  txOrigin,
		Address:   txEvent.Address,
		Data:      txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

// Transfer represents tx.Transfer that can be stored in db.
type Transfer struct {
	Seq       uint64
	Index     uint32
	Timestamp uint64
	TxID      meter.Bytes32
	TxOrigin  meter.Address
	Sender    meter.Address
	Recipient meter.Address
	Amount    *big.Int
	Token     meter.Address // zero for ETH
}

func newTransfer(seq, ts uint64, index uint32, txID meter.Bytes32, txOrigin meter.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		Seq:       seq,
		Index:     index,
		Timestamp: ts,
		TxID:      txID,
		TxOrigin:  txOrigin,
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    transfer.Amount,
		Token:     transfer.Token,
	}
}

// Auction is the indexed view of a registry auction.
type Auction struct {
	AuctionID     uint64
	Seller        meter.Address
	NFTContract   meter.Address
	TokenID       *big.Int
	StartPrice    *big.Int
	Duration      uint64
	StartTime     uint64
	Ended         bool
	EndTime       *uint64 // set once ended
	HighestBidder *meter.Address
	HighestBid    *big.Int // nil until the first bid
	Token         *meter.Address
	BidCount      uint32
	Category      string
}

// FloorPrice is the lowest sale price of a collection in one payment token.
type FloorPrice struct {
	Token meter.Address // zero for ETH
	Price *big.Int
	Sales uint64
}

// Bid is one accepted bid.
type Bid struct {
	TxID      meter.Bytes32
	Seq       uint64
	AuctionID uint64
	Bidder    meter.Address
	Amount    *big.Int
	Token     meter.Address
	Timestamp uint64
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *meter.Address
	Topics  [5]*meter.Bytes32
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

type TransferCriteria struct {
	TxOrigin  *meter.Address //who sent the call
	Sender    *meter.Address //who transferred tokens
	Recipient *meter.Address //who received tokens
}

type TransferFilter struct {
	TxID        *meter.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}

// Status selects auctions by their ended flag.
type Status string

const (
	StatusAll    Status = ""
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// SortBy names an auction column to order by.
type SortBy string

const (
	SortStartTime  SortBy = "start_time"
	SortHighestBid SortBy = "highest_bid"
	SortBidCount   SortBy = "bid_count"
	SortStartPrice SortBy = "start_price"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page of at most MaxPageSize rows.
type Page struct {
	Page     int
	PageSize int
}

// Normalize applies the defaults: page below 1 becomes 1, a size outside [1, MaxPageSize] becomes DefaultPageSize.
func (p *Page) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
}

func (p Page) offset() int { return (p.Page - 1) * p.PageSize }

type AuctionFilter struct {
	Status      Status
	Seller      *meter.Address
	NFTContract *meter.Address
	Category    string
	SortBy      SortBy
	Order       Order // default desc
	Page        Page
}

// Stats counts auctions and bids.
type Stats struct {
	TotalAuctions  uint64
	ActiveAuctions uint64
	EndedAuctions  uint64
	TotalBids      uint64
}

// EnhancedStats adds value figures to Stats. Amounts are raw token units.
type EnhancedStats struct {
	Stats
	TVL          *big.Int // sum of highest bids of active auctions
	TVLByToken   map[meter.Address]*big.Int
	TotalVolume  *big.Int // sum of all bids
	MeanBid      float64  // ETH bids only, in ether
	StdDevBid    float64
	UniqueBidder uint64
}
