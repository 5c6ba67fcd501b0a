// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"log/slog"
	"math/big"

	"github.com/meterio/nft-auction/meter"
)

var log = slog.Default().With("pkg", "auction")

// PriceOracle resolves a price feed address to its latest USD answer.
type PriceOracle interface {
	LatestPrice(feed meter.Address) (answer *big.Int, decimals uint8, err error)
}

// Auction is the NFT auction registry module. All of its data lives in the
// storage of meter.AuctionAccountAddr, which also holds escrowed tokens and funds.
type Auction struct {
	oracle PriceOracle
}

// NewAuction creates the registry. oracle may be nil, cross-token bids are then rejected.
func NewAuction(oracle PriceOracle) *Auction {
	return &Auction{oracle: oracle}
}

func (a *Auction) Start() error {
	log.Info("auction module started", "version", Version())
	return nil
}
