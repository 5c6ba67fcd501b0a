// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
)

const (
	// StorageV1 records carry no start time, payment token or bid count.
	StorageV1 = uint32(1)
	// StorageV2 is the current layout.
	StorageV2 = uint32(2)
)

// Version returns the storage layout and body version this code writes.
func Version() uint32 {
	return StorageV2
}

// Migrate upgrades stored records to the current layout. now becomes the start time of
// auctions still open in the old layout, since v1 never stored one.
// It returns the version found and the version left in storage.
func (a *Auction) Migrate(st *state.State, now uint64) (from uint32, to uint32, err error) {
	from = GetStorageVersion(st)
	next := a.GetNextAuctionID(st)
	if from == 0 {
		if next == 0 {
			setStorageVersion(st, Version())
			return Version(), Version(), st.Err()
		}
		// registries written before versioning carry the v1 layout
		from = StorageV1
	}
	if from > Version() {
		return from, from, ErrUnsupportedVersion
	}
	if from == Version() {
		return from, from, nil
	}

	for id := uint64(0); id < next; id++ {
		var legacy legacyRecord
		found := false
		st.DecodeStorage(AuctionAccountAddr, recordKey(id), func(raw []byte) error {
			if len(raw) == 0 {
				return nil
			}
			found = true
			return rlp.DecodeBytes(raw, &legacy)
		})
		if err = st.Err(); err != nil {
			return from, from, errors.Wrapf(err, "decode v1 auction %d", id)
		}
		if !found {
			continue
		}
		a.setAuction(st, upgradeRecord(id, &legacy, now))
	}
	setStorageVersion(st, Version())
	log.Info("auction storage migrated", "from", from, "to", Version(), "auctions", next)
	return from, Version(), st.Err()
}

func upgradeRecord(id uint64, legacy *legacyRecord, now uint64) *AuctionRecord {
	r := &AuctionRecord{
		ID:            id,
		Seller:        legacy.Seller,
		Duration:      legacy.Duration,
		StartingPrice: legacy.StartingPrice,
		NFTContract:   legacy.NFTContract,
		TokenID:       legacy.TokenID,
		HighestBidder: legacy.HighestBidder,
		HighestPrice:  legacy.HighestPrice,
		Ended:         legacy.Ended,
	}
	if !r.Ended {
		r.StartTime = now
	}
	if r.HasBids() {
		r.BidCount = 1
	} else if r.HighestPrice == nil || r.HighestPrice.Sign() == 0 {
		// v1 left the price at zero until the first bid
		r.HighestPrice = new(big.Int).Set(r.StartingPrice)
	}
	return r
}
