// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"fmt"
	"math/big"
	"time"

	"github.com/meterio/nft-auction/meter"
)

// TransactionContext transaction context.
type TransactionContext struct {
	ID        meter.Bytes32
	Origin    meter.Address
	Value     *big.Int // wei attached to the call
	Timestamp uint64   // unix seconds at execution
	Nonce     uint64
	Seq       uint64 // position in the total order of executed operations
}

func (ctx *TransactionContext) String() string {
	return fmt.Sprintf("txCtx{ID:%s Origin:%s Value:%s Time:%s Nonce:%d Seq:%d}",
		ctx.ID.String(), ctx.Origin.String(), ctx.Value.String(),
		time.Unix(int64(ctx.Timestamp), 0).UTC().Format(time.RFC3339), ctx.Nonce, ctx.Seq)
}
