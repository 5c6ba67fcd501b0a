// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/nft-auction/meter"
	"github.com/shopspring/decimal"
)

// Feed binds a payment token to its USD aggregator. The zero token is ETH.
type Feed struct {
	Token meter.Address `json:"token"`
	Feed  meter.Address `json:"feed"`
}

type Quote struct {
	Token  meter.Address        `json:"token"`
	Feed   meter.Address        `json:"feed"`
	Amount math.HexOrDecimal256 `json:"amount"`
	USD    decimal.Decimal      `json:"usd"`
}

type SetFeedRequest struct {
	From  meter.Address `json:"from"`
	Token meter.Address `json:"token"`
	Feed  meter.Address `json:"feed"`
}

type SetAdminRequest struct {
	From  meter.Address `json:"from"`
	Admin meter.Address `json:"admin"`
}

type Receipt struct {
	TxID meter.Bytes32 `json:"txId"`
	Seq  uint64        `json:"seq"`
}
