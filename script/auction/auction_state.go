// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

// the global variables in auction
var (
	// 0x74696f6e2d6163636f756e742d61646472657373
	AuctionAccountAddr = meter.AuctionAccountAddr
	NextAuctionIDKey   = meter.Blake2b([]byte("next-auction-id-key"))
	StorageVersionKey  = meter.Blake2b([]byte("storage-version-key"))
	FeedTokenListKey   = meter.Blake2b([]byte("price-feed-token-list-key"))
)

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func recordKey(id uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("auction-record-key"), uint64Bytes(id))
}

func bidsKey(id uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("auction-bids-key"), uint64Bytes(id))
}

func feedKey(token meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("price-feed-key"), token[:])
}

func decodeUint64(st *state.State, key meter.Bytes32) (v uint64) {
	st.DecodeStorage(AuctionAccountAddr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func encodeUint64(st *state.State, key meter.Bytes32, v uint64) {
	st.EncodeStorage(AuctionAccountAddr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(v)
	})
}

// GetNextAuctionID returns the id the next created auction will get.
func (a *Auction) GetNextAuctionID(st *state.State) uint64 {
	return decodeUint64(st, NextAuctionIDKey)
}

func (a *Auction) setNextAuctionID(st *state.State, id uint64) {
	encodeUint64(st, NextAuctionIDKey, id)
}

// GetAuction loads auction id.
func (a *Auction) GetAuction(st *state.State, id uint64) (*AuctionRecord, error) {
	if id >= a.GetNextAuctionID(st) {
		return nil, ErrAuctionNotFound
	}
	var (
		record AuctionRecord
		found  bool
	)
	st.DecodeStorage(AuctionAccountAddr, recordKey(id), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		return rlp.DecodeBytes(raw, &record)
	})
	if err := st.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAuctionNotFound
	}
	return &record, nil
}

func (a *Auction) setAuction(st *state.State, record *AuctionRecord) {
	st.EncodeStorage(AuctionAccountAddr, recordKey(record.ID), func() ([]byte, error) {
		return rlp.EncodeToBytes(record)
	})
}

// GetBids returns the retained bid history of auction id, oldest first.
func (a *Auction) GetBids(st *state.State, id uint64) (bids []*meter.AuctionTx) {
	st.DecodeStorage(AuctionAccountAddr, bidsKey(id), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &bids)
	})
	if bids == nil {
		bids = make([]*meter.AuctionTx, 0)
	}
	return
}

func (a *Auction) appendBid(st *state.State, id uint64, bid *meter.AuctionTx) {
	bids := append(a.GetBids(st, id), bid)
	if len(bids) > meter.AUCTION_MAX_BIDS {
		bids = bids[len(bids)-meter.AUCTION_MAX_BIDS:]
	}
	st.EncodeStorage(AuctionAccountAddr, bidsKey(id), func() ([]byte, error) {
		return rlp.EncodeToBytes(bids)
	})
}

// GetPriceFeed returns the feed registered for token, zero if none.
func (a *Auction) GetPriceFeed(st *state.State, token meter.Address) (feed meter.Address) {
	st.DecodeStorage(AuctionAccountAddr, feedKey(token), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &feed)
	})
	return
}

// GetPriceFeeds returns all registered token to feed bindings.
func (a *Auction) GetPriceFeeds(st *state.State) map[meter.Address]meter.Address {
	feeds := make(map[meter.Address]meter.Address)
	for _, token := range a.getFeedTokens(st) {
		feeds[token] = a.GetPriceFeed(st, token)
	}
	return feeds
}

func (a *Auction) getFeedTokens(st *state.State) (tokens []meter.Address) {
	st.DecodeStorage(AuctionAccountAddr, FeedTokenListKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &tokens)
	})
	return
}

func (a *Auction) setPriceFeed(st *state.State, token, feed meter.Address) {
	st.EncodeStorage(AuctionAccountAddr, feedKey(token), func() ([]byte, error) {
		if feed.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(feed)
	})

	tokens := a.getFeedTokens(st)
	kept := tokens[:0]
	for _, t := range tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	if !feed.IsZero() {
		kept = append(kept, token)
	}
	st.EncodeStorage(AuctionAccountAddr, FeedTokenListKey, func() ([]byte, error) {
		if len(kept) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(kept)
	})
}

// GetAdmin returns the account allowed to manage price feeds.
func (a *Auction) GetAdmin(st *state.State) meter.Address {
	return builtin.Params.Native(st).GetAddress(meter.KeyAuctionAdmin)
}

func (a *Auction) setAdmin(st *state.State, admin meter.Address) {
	builtin.Params.Native(st).SetAddress(meter.KeyAuctionAdmin, admin)
}

// GetStorageVersion returns the layout version of stored records, 0 for a fresh registry.
func GetStorageVersion(st *state.State) uint32 {
	return uint32(decodeUint64(st, StorageVersionKey))
}

func setStorageVersion(st *state.State, v uint32) {
	encodeUint64(st, StorageVersionKey, uint64(v))
}
