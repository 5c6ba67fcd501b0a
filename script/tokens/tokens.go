// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"errors"
	"log/slog"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

var log = slog.Default().With("pkg", "tokens")

var (
	ErrNotMinter       = errors.New("caller is not the token minter")
	ErrUnknownOpcode   = errors.New("unknown tokens opcode")
	ErrNotPayable      = errors.New("tokens operations are not payable")
	ErrMissingContract = errors.New("token contract is required")
)

// Tokens operates the NFT and ERC20 ledgers that auctions escrow and settle with.
type Tokens struct{}

func NewTokens() *Tokens {
	return &Tokens{}
}

func (t *Tokens) Start() error {
	log.Info("tokens module started")
	return nil
}

// Minter returns the account allowed to mint. A zero minter leaves minting open.
func (t *Tokens) Minter(st *state.State) meter.Address {
	return builtin.Params.Native(st).GetAddress(meter.KeyTokenMinter)
}

func (t *Tokens) checkMinter(st *state.State, caller meter.Address) error {
	minter := t.Minter(st)
	if !minter.IsZero() && minter != caller {
		return ErrNotMinter
	}
	return nil
}
