// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/state"
	"github.com/shopspring/decimal"
)

func tokenDecimals(st *state.State, token meter.Address) uint8 {
	if token.IsZero() {
		return meter.EtherDecimals
	}
	return builtin.ERC20(token, st).Decimals()
}

// ValueInUSD prices amount of token through the feed registered with setPriceFeed.
func (a *Auction) ValueInUSD(st *state.State, token meter.Address, amount *big.Int) (decimal.Decimal, error) {
	feed := a.GetPriceFeed(st, token)
	if feed.IsZero() || a.oracle == nil {
		return decimal.Zero, ErrNoPriceFeed
	}
	answer, decimals, err := a.oracle.LatestPrice(feed)
	if err != nil {
		return decimal.Zero, err
	}
	return pricefeed.ToUSD(amount, tokenDecimals(st, token), answer, decimals), nil
}

// outbids reports whether amount of token is strictly worth more than current of currentToken.
// Same-token amounts compare directly, otherwise both sides are priced in USD.
func (a *Auction) outbids(st *state.State, amount *big.Int, token meter.Address, current *big.Int, currentToken meter.Address) (bool, error) {
	if token == currentToken {
		return amount.Cmp(current) > 0, nil
	}
	offered, err := a.ValueInUSD(st, token, amount)
	if err != nil {
		return false, err
	}
	standing, err := a.ValueInUSD(st, currentToken, current)
	if err != nil {
		return false, err
	}
	return offered.GreaterThan(standing), nil
}
