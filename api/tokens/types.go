// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
)

// NFT describes one token of an ERC721 contract. InEscrow is set while the registry holds it.
type NFT struct {
	Contract meter.Address        `json:"contract"`
	TokenID  math.HexOrDecimal256 `json:"tokenId"`
	Owner    meter.Address        `json:"owner"`
	Approved meter.Address        `json:"approved"`
	TokenURI string               `json:"tokenUri"`
	InEscrow bool                 `json:"inEscrow"`
}

// Metadata is an NFT with its collection figures.
type Metadata struct {
	*NFT
	TotalSupply uint64        `json:"totalSupply"`
	FloorPrices []*FloorPrice `json:"floorPrices"`
}

// FloorPrice is the lowest sale of a collection settled in Token.
type FloorPrice struct {
	Token meter.Address        `json:"token"`
	Price math.HexOrDecimal256 `json:"price"`
	Sales uint64               `json:"sales"`
}

func convertFloors(floors []*logdb.FloorPrice) []*FloorPrice {
	out := make([]*FloorPrice, len(floors))
	for i, f := range floors {
		out[i] = &FloorPrice{Token: f.Token, Price: hexOrDecimal(f.Price), Sales: f.Sales}
	}
	return out
}

type Floor struct {
	Contract meter.Address `json:"contract"`
	Prices   []*FloorPrice `json:"prices"`
}

// Wallet lists the NFTs held by Owner.
type Wallet struct {
	Owner meter.Address `json:"owner"`
	NFTs  []*NFT        `json:"nfts"`
	Total int           `json:"total"`
}

type ERC20 struct {
	Contract    meter.Address        `json:"contract"`
	Decimals    uint8                `json:"decimals"`
	TotalSupply math.HexOrDecimal256 `json:"totalSupply"`
}

type Allowance struct {
	Owner   meter.Address        `json:"owner"`
	Spender meter.Address        `json:"spender"`
	Amount  math.HexOrDecimal256 `json:"amount"`
}

type Operator struct {
	Owner    meter.Address `json:"owner"`
	Operator meter.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

// Request is the body of every token call. From is the caller, Owner the
// account tokens are pulled from by transfers on behalf of it.
type Request struct {
	From     meter.Address         `json:"from"`
	Owner    *meter.Address        `json:"owner,omitempty"`
	To       meter.Address         `json:"to"`
	TokenID  *math.HexOrDecimal256 `json:"tokenId,omitempty"`
	Amount   *math.HexOrDecimal256 `json:"amount,omitempty"`
	Approved bool                  `json:"approved,omitempty"`
	Decimals uint8                 `json:"decimals,omitempty"`
	TokenURI string                `json:"tokenUri,omitempty"`
}

func (r *Request) tokenID() *big.Int {
	if r.TokenID == nil {
		return new(big.Int)
	}
	return (*big.Int)(r.TokenID)
}

func (r *Request) amount() *big.Int {
	if r.Amount == nil {
		return new(big.Int)
	}
	return (*big.Int)(r.Amount)
}

func (r *Request) owner() meter.Address {
	if r.Owner == nil {
		return r.From
	}
	return *r.Owner
}

type Receipt struct {
	TxID meter.Bytes32 `json:"txId"`
	Seq  uint64        `json:"seq"`
}

func hexOrDecimal(v *big.Int) math.HexOrDecimal256 {
	if v == nil {
		return math.HexOrDecimal256{}
	}
	return math.HexOrDecimal256(*v)
}
