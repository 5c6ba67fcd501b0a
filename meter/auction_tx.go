// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
)

// AuctionTx is one accepted bid.
type AuctionTx struct {
	TxID      Bytes32
	Address   Address
	Amount    *big.Int // in the smallest unit of Token
	Token     Address  // zero for ETH
	Timestamp uint64
	Nonce     uint64
}

func (a *AuctionTx) ToString() string {
	return fmt.Sprintf("AuctionTx(addr=%v, amount=%v, token=%v, nonce=%v, time=%v)",
		a.Address, a.Amount.String(), a.Token, a.Nonce, time.Unix(int64(a.Timestamp), 0).UTC().Format(time.RFC3339))
}

func (a *AuctionTx) ID() (hash Bytes32) {
	hw := NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		a.Address,
		a.Amount,
		a.Token,
		a.Timestamp,
		a.Nonce,
	})
	if err != nil {
		fmt.Printf("rlp encode failed, %s.\n", err.Error())
		return Bytes32{}
	}
	hw.Sum(hash[:0])
	return
}

func NewAuctionTx(addr Address, amount *big.Int, token Address, time uint64, nonce uint64) *AuctionTx {
	tx := &AuctionTx{
		Address:   addr,
		Amount:    amount,
		Token:     token,
		Timestamp: time,
		Nonce:     nonce,
	}
	tx.TxID = tx.ID()
	return tx
}
