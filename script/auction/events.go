// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/meterio/nft-auction/tx"
)

const eventsABI = `[
	{"type":"event","name":"AuctionCreated","anonymous":false,"inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true},
		{"name":"nftContract","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"startPrice","type":"uint256","indexed":false},
		{"name":"duration","type":"uint256","indexed":false},
		{"name":"startTime","type":"uint256","indexed":false},
		{"name":"category","type":"string","indexed":false}]},
	{"type":"event","name":"BidPlaced","anonymous":false,"inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"bidder","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"tokenAddress","type":"address","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"event","name":"AuctionEnded","anonymous":false,"inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"winner","type":"address","indexed":true},
		{"name":"finalPrice","type":"uint256","indexed":false},
		{"name":"tokenAddress","type":"address","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"event","name":"PriceFeedSet","anonymous":false,"inputs":[
		{"name":"token","type":"address","indexed":true},
		{"name":"feed","type":"address","indexed":true}]},
	{"type":"event","name":"AdminChanged","anonymous":false,"inputs":[
		{"name":"previousAdmin","type":"address","indexed":true},
		{"name":"newAdmin","type":"address","indexed":true}]}
]`

var (
	// Events is the ABI of all registry events.
	Events = mustParseABI(eventsABI)

	AuctionCreatedEvent = Events.Events["AuctionCreated"]
	BidPlacedEvent      = Events.Events["BidPlaced"]
	AuctionEndedEvent   = Events.Events["AuctionEnded"]
	PriceFeedSetEvent   = Events.Events["PriceFeedSet"]
	AdminChangedEvent   = Events.Events["AdminChanged"]

	errUnknownEvent = errors.New("unknown auction event")
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// AuctionCreated is the decoded AuctionCreated log.
type AuctionCreated struct {
	AuctionID   uint64
	Seller      meter.Address
	NFTContract meter.Address
	TokenID     *big.Int
	StartPrice  *big.Int
	Duration    uint64
	StartTime   uint64
	Category    string
}

// BidPlaced is the decoded BidPlaced log.
type BidPlaced struct {
	AuctionID uint64
	Bidder    meter.Address
	Amount    *big.Int
	Token     meter.Address
	Timestamp uint64
}

// AuctionEnded is the decoded AuctionEnded log. Winner is zero when nobody bid.
type AuctionEnded struct {
	AuctionID  uint64
	Winner     meter.Address
	FinalPrice *big.Int
	Token      meter.Address
	Timestamp  uint64
}

// PriceFeedSet is the decoded PriceFeedSet log.
type PriceFeedSet struct {
	Token meter.Address
	Feed  meter.Address
}

// AdminChanged is the decoded AdminChanged log. NewAdmin is zero when the role was renounced.
type AdminChanged struct {
	PreviousAdmin meter.Address
	NewAdmin      meter.Address
}

func uintTopic(v uint64) meter.Bytes32 {
	return meter.BytesToBytes32(new(big.Int).SetUint64(v).Bytes())
}

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr[:])
}

func u256(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

func emit(env *setypes.ScriptEnv, ev abi.Event, topics []meter.Bytes32, values ...interface{}) error {
	data, err := ev.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return err
	}
	env.AddEvent(AuctionAccountAddr, append([]meter.Bytes32{meter.Bytes32(ev.ID)}, topics...), data)
	return nil
}

func emitAuctionCreated(env *setypes.ScriptEnv, r *AuctionRecord) error {
	return emit(env, AuctionCreatedEvent,
		[]meter.Bytes32{uintTopic(r.ID), addressTopic(r.Seller), addressTopic(r.NFTContract)},
		r.TokenID, r.StartingPrice, u256(r.Duration), u256(r.StartTime), r.Category)
}

func emitBidPlaced(env *setypes.ScriptEnv, id uint64, bid *meter.AuctionTx) error {
	return emit(env, BidPlacedEvent,
		[]meter.Bytes32{uintTopic(id), addressTopic(bid.Address)},
		bid.Amount, common.Address(bid.Token), u256(bid.Timestamp))
}

func emitAuctionEnded(env *setypes.ScriptEnv, r *AuctionRecord, winner meter.Address, price *big.Int, ts uint64) error {
	return emit(env, AuctionEndedEvent,
		[]meter.Bytes32{uintTopic(r.ID), addressTopic(winner)},
		price, common.Address(r.HighestToken), u256(ts))
}

func emitPriceFeedSet(env *setypes.ScriptEnv, token, feed meter.Address) error {
	return emit(env, PriceFeedSetEvent, []meter.Bytes32{addressTopic(token), addressTopic(feed)})
}

func emitAdminChanged(env *setypes.ScriptEnv, previous, admin meter.Address) error {
	return emit(env, AdminChangedEvent, []meter.Bytes32{addressTopic(previous), addressTopic(admin)})
}

func topicHashes(topics []meter.Bytes32) []common.Hash {
	hashes := make([]common.Hash, len(topics))
	for i, t := range topics {
		hashes[i] = common.Hash(t)
	}
	return hashes
}

func unpack(ev abi.Event, e *tx.Event) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := ev.Inputs.NonIndexed().UnpackIntoMap(out, e.Data); err != nil {
		return nil, err
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(out, indexed, topicHashes(e.Topics[1:])); err != nil {
		return nil, err
	}
	return out, nil
}

func toAddress(v interface{}) meter.Address {
	if addr, ok := v.(common.Address); ok {
		return meter.Address(addr)
	}
	return meter.Address{}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func toBig(v interface{}) *big.Int {
	if b, ok := v.(*big.Int); ok {
		return b
	}
	return new(big.Int)
}

// DecodeEvent turns a registry log into one of the typed event structs above.
func DecodeEvent(e *tx.Event) (interface{}, error) {
	if e.Address != AuctionAccountAddr || len(e.Topics) == 0 {
		return nil, errUnknownEvent
	}
	ev, err := Events.EventByID(common.Hash(e.Topics[0]))
	if err != nil {
		return nil, errUnknownEvent
	}
	m, err := unpack(*ev, e)
	if err != nil {
		return nil, err
	}
	switch ev.Name {
	case "AuctionCreated":
		return &AuctionCreated{
			AuctionID:   toBig(m["auctionId"]).Uint64(),
			Seller:      toAddress(m["seller"]),
			NFTContract: toAddress(m["nftContract"]),
			TokenID:     toBig(m["tokenId"]),
			StartPrice:  toBig(m["startPrice"]),
			Duration:    toBig(m["duration"]).Uint64(),
			StartTime:   toBig(m["startTime"]).Uint64(),
			Category:    toString(m["category"]),
		}, nil
	case "BidPlaced":
		return &BidPlaced{
			AuctionID: toBig(m["auctionId"]).Uint64(),
			Bidder:    toAddress(m["bidder"]),
			Amount:    toBig(m["amount"]),
			Token:     toAddress(m["tokenAddress"]),
			Timestamp: toBig(m["timestamp"]).Uint64(),
		}, nil
	case "AuctionEnded":
		return &AuctionEnded{
			AuctionID:  toBig(m["auctionId"]).Uint64(),
			Winner:     toAddress(m["winner"]),
			FinalPrice: toBig(m["finalPrice"]),
			Token:      toAddress(m["tokenAddress"]),
			Timestamp:  toBig(m["timestamp"]).Uint64(),
		}, nil
	case "PriceFeedSet":
		return &PriceFeedSet{
			Token: toAddress(m["token"]),
			Feed:  toAddress(m["feed"]),
		}, nil
	case "AdminChanged":
		return &AdminChanged{
			PreviousAdmin: toAddress(m["previousAdmin"]),
			NewAdmin:      toAddress(m["newAdmin"]),
		}, nil
	}
	return nil, errUnknownEvent
}
