// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
)

// Account for marshal account
type Account struct {
	Balance      math.HexOrDecimal256  `json:"balance"`
	Token        *meter.Address        `json:"token,omitempty"`
	TokenBalance *math.HexOrDecimal256 `json:"tokenBalance,omitempty"`
	NFTCount     *uint64               `json:"nftCount,omitempty"`
}

// CallData represents a raw script clause
type CallData struct {
	From  meter.Address         `json:"from"`
	Value *math.HexOrDecimal256 `json:"value"`
	Data  string                `json:"data"`
}

type Event struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
}

type Transfer struct {
	Sender    meter.Address        `json:"sender"`
	Recipient meter.Address        `json:"recipient"`
	Amount    math.HexOrDecimal256 `json:"amount"`
	Token     meter.Address        `json:"token"`
}

type CallResult struct {
	TxID      meter.Bytes32 `json:"txId"`
	Seq       uint64        `json:"seq"`
	Data      string        `json:"data"`
	Events    []*Event      `json:"events"`
	Transfers []*Transfer   `json:"transfers"`
	Reverted  bool          `json:"reverted"`
	Error     string        `json:"error"`
}

func hexOrDecimal(v *big.Int) math.HexOrDecimal256 {
	if v == nil {
		return math.HexOrDecimal256{}
	}
	return math.HexOrDecimal256(*v)
}

func convertCallResult(out *runtime.Output, err error) *CallResult {
	res := &CallResult{
		Events:    make([]*Event, 0),
		Transfers: make([]*Transfer, 0),
	}
	if out != nil {
		res.TxID = out.TxID
		res.Seq = out.Seq
		res.Data = hexutil.Encode(out.Data)
	}
	if err != nil {
		// reverted calls carry no events
		res.Reverted = true
		res.Error = err.Error()
		return res
	}
	for _, e := range out.Events {
		event := &Event{
			Address: e.Address,
			Topics:  make([]meter.Bytes32, len(e.Topics)),
			Data:    hexutil.Encode(e.Data),
		}
		copy(event.Topics, e.Topics)
		res.Events = append(res.Events, event)
	}
	for _, t := range out.Transfers {
		res.Transfers = append(res.Transfers, &Transfer{
			Sender:    t.Sender,
			Recipient: t.Recipient,
			Amount:    hexOrDecimal(t.Amount),
			Token:     t.Token,
		})
	}
	return res
}
