// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/nft-auction/api/events"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/tx"
)

func logMeta(out *runtime.Output) events.LogMeta {
	return events.LogMeta{
		Seq:       out.Seq,
		Timestamp: out.Timestamp,
		TxID:      out.TxID,
		TxOrigin:  out.Origin,
	}
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	h := math.HexOrDecimal256(*v)
	return &h
}

// AuctionMessage is a registry event pushed to auction subscribers.
// Type is one of created, bid, ended, feed or admin.
type AuctionMessage struct {
	Type          string                `json:"type"`
	AuctionID     *uint64               `json:"auctionId,omitempty"`
	Seller        *meter.Address        `json:"seller,omitempty"`
	NFTContract   *meter.Address        `json:"nftContract,omitempty"`
	TokenID       *math.HexOrDecimal256 `json:"tokenId,omitempty"`
	Duration      uint64                `json:"duration,omitempty"`
	Category      string                `json:"category,omitempty"`
	Bidder        *meter.Address        `json:"bidder,omitempty"`
	Winner        *meter.Address        `json:"winner,omitempty"`
	Amount        *math.HexOrDecimal256 `json:"amount,omitempty"`
	Token         *meter.Address        `json:"token,omitempty"`
	Feed          *meter.Address        `json:"feed,omitempty"`
	PreviousAdmin *meter.Address        `json:"previousAdmin,omitempty"`
	Admin         *meter.Address        `json:"admin,omitempty"`
	Timestamp     uint64                `json:"timestamp"`
	Meta          events.LogMeta        `json:"meta"`
}

type EventMessage struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    events.LogMeta  `json:"meta"`
}

func convertEvent(out *runtime.Output, event *tx.Event) *EventMessage {
	return &EventMessage{
		Address: event.Address,
		Topics:  event.Topics,
		Data:    hexutil.Encode(event.Data),
		Meta:    logMeta(out),
	}
}

// EventFilter matches events by address and topics. Nil fields match anything.
type EventFilter struct {
	Address *meter.Address
	Topic0  *meter.Bytes32
	Topic1  *meter.Bytes32
	Topic2  *meter.Bytes32
	Topic3  *meter.Bytes32
	Topic4  *meter.Bytes32
}

func (ef *EventFilter) Match(event *tx.Event) bool {
	if ef.Address != nil && *ef.Address != event.Address {
		return false
	}
	matchTopic := func(topic *meter.Bytes32, index int) bool {
		if topic != nil {
			if len(event.Topics) <= index {
				return false
			}
			if *topic != event.Topics[index] {
				return false
			}
		}
		return true
	}
	return matchTopic(ef.Topic0, 0) &&
		matchTopic(ef.Topic1, 1) &&
		matchTopic(ef.Topic2, 2) &&
		matchTopic(ef.Topic3, 3) &&
		matchTopic(ef.Topic4, 4)
}

type TransferMessage struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Token     meter.Address         `json:"token"`
	Meta      events.LogMeta        `json:"meta"`
}

func convertTransfer(out *runtime.Output, transfer *tx.Transfer) *TransferMessage {
	return &TransferMessage{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    hexOrDecimal(transfer.Amount),
		Token:     transfer.Token,
		Meta:      logMeta(out),
	}
}

type TransferFilter struct {
	TxOrigin  *meter.Address
	Sender    *meter.Address
	Recipient *meter.Address
}

func (tf *TransferFilter) Match(origin meter.Address, transfer *tx.Transfer) bool {
	if tf.TxOrigin != nil && *tf.TxOrigin != origin {
		return false
	}
	if tf.Sender != nil && *tf.Sender != transfer.Sender {
		return false
	}
	if tf.Recipient != nil && *tf.Recipient != transfer.Recipient {
		return false
	}
	return true
}

// BeatMessage summarizes one committed call. Bloom is a binary encoded
// holiman bloom filter over every address and topic the call touched.
type BeatMessage struct {
	Seq       uint64        `json:"seq"`
	Timestamp uint64        `json:"timestamp"`
	TxID      meter.Bytes32 `json:"txID"`
	TxOrigin  meter.Address `json:"txOrigin"`
	Events    int           `json:"events"`
	Transfers int           `json:"transfers"`
	Bloom     string        `json:"bloom"`
	K         uint64        `json:"k"`
}
