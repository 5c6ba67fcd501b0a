// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"time"

	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
)

// EndAuction settles auction id once its window has elapsed. The item goes to the highest
// bidder and the winning bid to the seller; without bids the item returns to the seller.
// Anyone may settle.
func (a *Auction) EndAuction(env *setypes.ScriptEnv, id uint64) (err error) {
	var ret []byte
	start := time.Now()
	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			ret = []byte(err.Error())
			rejectedCounter.WithLabelValues(meter.GetOpName(meter.OP_END)).Inc()
		}
		env.SetReturnData(ret)
		log.Debug("end completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	state := env.GetState()
	now := env.GetTimestamp()

	if env.GetValue().Sign() != 0 {
		err = ErrNotPayable
		return
	}

	record, err := a.GetAuction(state, id)
	if err != nil {
		return
	}
	if record.Ended {
		err = ErrAuctionEnded
		return
	}
	if now <= record.EndTime() {
		log.Info("end rejected, auction still open", "id", id, "endTime", record.EndTime(), "now", now)
		err = ErrAuctionNotExpired
		return
	}

	record.Ended = true
	winner := meter.Address{}
	finalPrice := new(big.Int)
	if record.HasBids() {
		winner = record.HighestBidder
		finalPrice = record.HighestPrice
		if record.HasItem() {
			if err = env.TransferNFTFromAuction(winner, record.NFTContract, record.TokenID); err != nil {
				return
			}
		}
		if err = env.TransferFromAuction(record.Seller, record.HighestToken, record.HighestPrice); err != nil {
			return
		}
	} else if record.HasItem() {
		if err = env.TransferNFTFromAuction(record.Seller, record.NFTContract, record.TokenID); err != nil {
			return
		}
	}
	a.setAuction(state, record)

	if err = emitAuctionEnded(env, record, winner, finalPrice, now); err != nil {
		return
	}
	if err = state.Err(); err != nil {
		return
	}

	auctionsEndedCounter.Inc()
	log.Info("auction ended", "id", id, "winner", winner, "finalPrice", finalPrice, "token", record.HighestToken, "seller", record.Seller)
	return
}
