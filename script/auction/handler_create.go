// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
)

// CreateAuction lists tokenID of nftContract for duration seconds. The caller must own the
// token and have approved the registry, which takes custody until the auction ends.
// A zero nftContract lists no item and skips custody.
func (a *Auction) CreateAuction(env *setypes.ScriptEnv, duration uint64, startingPrice *big.Int, nftContract meter.Address, tokenID *big.Int) (uint64, error) {
	return a.CreateAuctionInCategory(env, duration, startingPrice, nftContract, tokenID, "")
}

// CreateAuctionInCategory is CreateAuction with a free-form category label for listings.
func (a *Auction) CreateAuctionInCategory(env *setypes.ScriptEnv, duration uint64, startingPrice *big.Int, nftContract meter.Address, tokenID *big.Int, category string) (id uint64, err error) {
	var ret []byte
	start := time.Now()
	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			ret = []byte(err.Error())
			rejectedCounter.WithLabelValues(meter.GetOpName(meter.OP_CREATE)).Inc()
		}
		env.SetReturnData(ret)
		log.Debug("create completed", "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	state := env.GetState()
	seller := env.GetCaller()

	if env.GetValue().Sign() != 0 {
		err = ErrNotPayable
		return
	}
	if startingPrice == nil || startingPrice.Sign() <= 0 {
		err = ErrInvalidStartingPrice
		return
	}
	if duration == 0 {
		err = ErrInvalidDuration
		return
	}
	if len(category) > meter.AUCTION_MAX_CATEGORY_LEN {
		err = ErrInvalidCategory
		return
	}
	if tokenID == nil {
		tokenID = new(big.Int)
	}

	if !nftContract.IsZero() {
		nft := builtin.NFT(nftContract, state)
		owner, e := nft.OwnerOf(tokenID)
		if e != nil || owner != seller {
			log.Info("create rejected, not token owner", "seller", seller, "nft", nftContract, "tokenId", tokenID, "owner", owner)
			err = ErrNotTokenOwner
			return
		}
		if !nft.IsApprovedOrOwner(AuctionAccountAddr, tokenID) {
			log.Info("create rejected, registry not approved", "seller", seller, "nft", nftContract, "tokenId", tokenID)
			err = ErrNotApproved
			return
		}
		if err = env.TransferNFTToAuction(seller, nftContract, tokenID); err != nil {
			return
		}
	}

	id = a.GetNextAuctionID(state)
	record := &AuctionRecord{
		ID:            id,
		Seller:        seller,
		Duration:      duration,
		StartTime:     env.GetTimestamp(),
		StartingPrice: new(big.Int).Set(startingPrice),
		NFTContract:   nftContract,
		TokenID:       new(big.Int).Set(tokenID),
		HighestPrice:  new(big.Int).Set(startingPrice),
		Category:      category,
	}
	a.setAuction(state, record)
	a.setNextAuctionID(state, id+1)

	if err = emitAuctionCreated(env, record); err != nil {
		return
	}
	if err = state.Err(); err != nil {
		return
	}
	if ret, err = rlp.EncodeToBytes(id); err != nil {
		return
	}

	auctionsCreatedCounter.Inc()
	nextAuctionIDGauge.Set(float64(id + 1))
	log.Info("auction created", "id", id, "seller", seller, "nft", nftContract, "tokenId", tokenID, "category", category,
		"startingPrice", meter.FormatEther(startingPrice), "duration", meter.PrettyDuration(time.Duration(duration)*time.Second))
	return
}
