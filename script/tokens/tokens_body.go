// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/meter"
)

// TokensBody is the rlp payload of a tokens script call.
type TokensBody struct {
	Opcode   uint32
	Version  uint32
	Contract meter.Address
	From     meter.Address
	To       meter.Address // recipient, spender or operator
	TokenID  *big.Int
	Amount   *big.Int
	Approved bool
	Decimals uint8
	Nonce    uint64
	URI      string `rlp:"optional"` // metadata of a minted NFT
}

func (tb *TokensBody) ToString() string {
	return fmt.Sprintf("TokensBody: Opcode=%v, Version=%v, Contract=%v, From=%v, To=%v, TokenID=%v, Amount=%v, Approved=%v, Decimals=%v, Nonce=%v, URI=%q",
		meter.GetOpName(tb.Opcode), tb.Version, tb.Contract, tb.From, tb.To, tb.TokenID, tb.Amount, tb.Approved, tb.Decimals, tb.Nonce, tb.URI)
}

func TokensEncodeBytes(tb *TokensBody) []byte {
	b, err := rlp.EncodeToBytes(tb)
	if err != nil {
		log.Error("rlp encode failed", "error", err)
		return []byte{}
	}
	return b
}

func TokensDecodeFromBytes(bytes []byte) (*TokensBody, error) {
	tb := TokensBody{}
	err := rlp.DecodeBytes(bytes, &tb)
	return &tb, err
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func NewNFTMintBody(contract, to meter.Address, tokenID *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_NFT_MINT, Contract: contract, To: to, TokenID: tokenID, Amount: new(big.Int)}
}

func NewNFTApproveBody(contract, to meter.Address, tokenID *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_NFT_APPROVE, Contract: contract, To: to, TokenID: tokenID, Amount: new(big.Int)}
}

func NewNFTApprovalForAllBody(contract, operator meter.Address, approved bool) *TokensBody {
	return &TokensBody{Opcode: meter.OP_NFT_APPROVE_ALL, Contract: contract, To: operator, Approved: approved, TokenID: new(big.Int), Amount: new(big.Int)}
}

func NewNFTTransferBody(contract, from, to meter.Address, tokenID *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_NFT_TRANSFER, Contract: contract, From: from, To: to, TokenID: tokenID, Amount: new(big.Int)}
}

// NewERC20MintBody mints amount to to. A non-zero decimals also sets the token decimals.
func NewERC20MintBody(contract, to meter.Address, amount *big.Int, decimals uint8) *TokensBody {
	return &TokensBody{Opcode: meter.OP_ERC20_MINT, Contract: contract, To: to, Amount: amount, Decimals: decimals, TokenID: new(big.Int)}
}

func NewERC20ApproveBody(contract, spender meter.Address, amount *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_ERC20_APPROVE, Contract: contract, To: spender, Amount: amount, TokenID: new(big.Int)}
}

func NewERC20TransferBody(contract, to meter.Address, amount *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_ERC20_TRANSFER, Contract: contract, To: to, Amount: amount, TokenID: new(big.Int)}
}

func NewERC20TransferFromBody(contract, from, to meter.Address, amount *big.Int) *TokensBody {
	return &TokensBody{Opcode: meter.OP_ERC20_TRANSFER_FROM, Contract: contract, From: from, To: to, Amount: amount, TokenID: new(big.Int)}
}
