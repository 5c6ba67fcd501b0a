// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/meter"
)

// AuctionBody is the rlp payload of an auction script call.
type AuctionBody struct {
	Opcode        uint32
	Version       uint32
	AuctionID     uint64
	Duration      uint64
	StartingPrice *big.Int
	NFTContract   meter.Address
	TokenID       *big.Int
	Token         meter.Address // payment token of a bid, token of a price feed
	Amount        *big.Int
	Target        meter.Address // price feed or new admin
	Timestamp     uint64
	Nonce         uint64
	Category      string `rlp:"optional"`
}

func (ab *AuctionBody) ToString() string {
	return fmt.Sprintf("AuctionBody: Opcode=%v, Version=%v, AuctionID=%v, Duration=%v, StartingPrice=%v, NFTContract=%v, TokenID=%v, Token=%v, Amount=%v, Target=%v, Timestamp=%v, Nonce=%v, Category=%q",
		meter.GetOpName(ab.Opcode), ab.Version, ab.AuctionID, ab.Duration, ab.StartingPrice, ab.NFTContract.String(), ab.TokenID, ab.Token.String(), ab.Amount, ab.Target.String(), ab.Timestamp, ab.Nonce, ab.Category)
}

func AuctionEncodeBytes(ab *AuctionBody) []byte {
	auctionBytes, err := rlp.EncodeToBytes(ab)
	if err != nil {
		log.Error("rlp encode failed", "error", err)
		return []byte{}
	}
	return auctionBytes
}

func AuctionDecodeFromBytes(bytes []byte) (*AuctionBody, error) {
	ab := AuctionBody{}
	err := rlp.DecodeBytes(bytes, &ab)
	return &ab, err
}

// NewCreateBody builds the payload of createAuction.
func NewCreateBody(duration uint64, startingPrice *big.Int, nftContract meter.Address, tokenID *big.Int) *AuctionBody {
	return &AuctionBody{
		Opcode:        meter.OP_CREATE,
		Version:       Version(),
		Duration:      duration,
		StartingPrice: startingPrice,
		NFTContract:   nftContract,
		TokenID:       tokenID,
	}
}

// NewBidBody builds the payload of placeBid. ETH bids leave token zero and attach the value to the call.
func NewBidBody(id uint64, token meter.Address, amount *big.Int) *AuctionBody {
	return &AuctionBody{
		Opcode:    meter.OP_BID,
		Version:   Version(),
		AuctionID: id,
		Token:     token,
		Amount:    amount,
	}
}

// NewEndBody builds the payload of endAuction.
func NewEndBody(id uint64) *AuctionBody {
	return &AuctionBody{Opcode: meter.OP_END, Version: Version(), AuctionID: id}
}

// NewSetPriceFeedBody builds the payload of setPriceFeed.
func NewSetPriceFeedBody(token, feed meter.Address) *AuctionBody {
	return &AuctionBody{Opcode: meter.OP_SETFEED, Version: Version(), Token: token, Target: feed}
}

// NewSetAdminBody builds the payload handing over administration.
func NewSetAdminBody(admin meter.Address) *AuctionBody {
	return &AuctionBody{Opcode: meter.OP_SETADMIN, Version: Version(), Target: admin}
}
