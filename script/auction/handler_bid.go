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

// PlaceBid bids on auction id. A zero token bids the ETH value attached to the call,
// otherwise amount of the ERC-20 token is pulled through the allowance granted to the registry.
// The bid must be worth strictly more than the current highest price; the outbid bidder is refunded.
func (a *Auction) PlaceBid(env *setypes.ScriptEnv, id uint64, token meter.Address, amount *big.Int) (err error) {
	var ret []byte
	start := time.Now()
	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			ret = []byte(err.Error())
			rejectedCounter.WithLabelValues(meter.GetOpName(meter.OP_BID)).Inc()
		}
		env.SetReturnData(ret)
		log.Debug("bid completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	state := env.GetState()
	bidder := env.GetCaller()
	now := env.GetTimestamp()
	value := env.GetValue()

	if token.IsZero() {
		if amount != nil && amount.Sign() != 0 && amount.Cmp(value) != 0 {
			err = ErrMixedPayment
			return
		}
		amount = value
	} else if value.Sign() != 0 {
		err = ErrMixedPayment
		return
	}
	if amount == nil || amount.Sign() <= 0 {
		err = ErrInvalidAmount
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
	if now > record.EndTime() {
		log.Info("bid rejected, auction expired", "id", id, "bidder", bidder, "endTime", record.EndTime(), "now", now)
		err = ErrAuctionExpired
		return
	}
	if bidder == record.Seller {
		err = ErrSellerBid
		return
	}

	higher, err := a.outbids(state, amount, token, record.HighestPrice, record.HighestToken)
	if err != nil {
		return
	}
	if !higher {
		log.Info("bid rejected, too low", "id", id, "bidder", bidder, "amount", amount, "token", token, "highest", record.HighestPrice, "highestToken", record.HighestToken)
		err = ErrBidTooLow
		return
	}

	if err = env.TransferToAuction(bidder, token, amount); err != nil {
		return
	}
	if record.HasBids() {
		if err = env.TransferFromAuction(record.HighestBidder, record.HighestToken, record.HighestPrice); err != nil {
			return
		}
	}

	record.HighestBidder = bidder
	record.HighestPrice = new(big.Int).Set(amount)
	record.HighestToken = token
	record.BidCount++
	a.setAuction(state, record)

	bid := meter.NewAuctionTx(bidder, record.HighestPrice, token, now, env.GetTxCtx().Nonce)
	a.appendBid(state, id, bid)

	if err = emitBidPlaced(env, id, bid); err != nil {
		return
	}
	if err = state.Err(); err != nil {
		return
	}

	bidsPlacedCounter.Inc()
	log.Info("bid placed", "id", id, "bidder", bidder, "amount", amount, "token", token,
		"remaining", meter.PrettyRemaining(record.EndTime(), now))
	return
}
