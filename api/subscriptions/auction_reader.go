// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/auction"
)

// auctionReader turns registry events into AuctionMessages, optionally for one auction only.
type auctionReader struct {
	auctionID *uint64
}

func newAuctionReader(auctionID *uint64) *auctionReader {
	return &auctionReader{auctionID}
}

func (ar *auctionReader) Read(out *runtime.Output) []interface{} {
	var msgs []interface{}
	for _, e := range out.Events {
		decoded, err := auction.DecodeEvent(e)
		if err != nil {
			continue
		}
		msg := &AuctionMessage{Timestamp: out.Timestamp, Meta: logMeta(out)}
		switch ev := decoded.(type) {
		case *auction.AuctionCreated:
			msg.Type = "created"
			msg.AuctionID = &ev.AuctionID
			msg.Seller = &ev.Seller
			msg.NFTContract = &ev.NFTContract
			msg.TokenID = hexOrDecimal(ev.TokenID)
			msg.Amount = hexOrDecimal(ev.StartPrice)
			msg.Duration = ev.Duration
			msg.Category = ev.Category
			msg.Timestamp = ev.StartTime
		case *auction.BidPlaced:
			msg.Type = "bid"
			msg.AuctionID = &ev.AuctionID
			msg.Bidder = &ev.Bidder
			msg.Amount = hexOrDecimal(ev.Amount)
			msg.Token = &ev.Token
			msg.Timestamp = ev.Timestamp
		case *auction.AuctionEnded:
			msg.Type = "ended"
			msg.AuctionID = &ev.AuctionID
			msg.Winner = &ev.Winner
			msg.Amount = hexOrDecimal(ev.FinalPrice)
			msg.Token = &ev.Token
			msg.Timestamp = ev.Timestamp
		case *auction.PriceFeedSet:
			msg.Type = "feed"
			msg.Token = &ev.Token
			msg.Feed = &ev.Feed
		case *auction.AdminChanged:
			msg.Type = "admin"
			msg.PreviousAdmin = &ev.PreviousAdmin
			msg.Admin = &ev.NewAdmin
		default:
			continue
		}
		if ar.auctionID != nil && (msg.AuctionID == nil || *msg.AuctionID != *ar.auctionID) {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
