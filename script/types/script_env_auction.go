// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"errors"
	"math/big"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
)

var (
	errNotEnoughETH = errors.New("not enough ETH")
)

// ==================== escrow operations ===========================

// TransferToAuction moves a bid from addr into escrow. Zero token is ETH.
func (env *ScriptEnv) TransferToAuction(addr meter.Address, token meter.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	state := env.GetState()

	if token.IsZero() {
		if !state.Transfer(addr, meter.AuctionAccountAddr, amount) {
			return errNotEnoughETH
		}
	} else {
		// the registry spends the allowance granted by the bidder
		if err := builtin.ERC20(token, state).TransferFrom(meter.AuctionAccountAddr, addr, meter.AuctionAccountAddr, amount); err != nil {
			return err
		}
	}
	log.Debug("escrow bid", "bidder", addr, "token", token, "amount", amount)
	env.AddTransfer(addr, meter.AuctionAccountAddr, amount, token)
	return nil
}

// TransferFromAuction releases escrowed funds to addr. Used for refunds and payouts.
func (env *ScriptEnv) TransferFromAuction(addr meter.Address, token meter.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	state := env.GetState()

	if token.IsZero() {
		if !state.Transfer(meter.AuctionAccountAddr, addr, amount) {
			return errNotEnoughETH
		}
	} else {
		if err := builtin.ERC20(token, state).Transfer(meter.AuctionAccountAddr, addr, amount); err != nil {
			return err
		}
	}
	env.AddTransfer(meter.AuctionAccountAddr, addr, amount, token)
	return nil
}

// TransferNFTToAuction takes custody of token id, the registry must be approved.
func (env *ScriptEnv) TransferNFTToAuction(owner, nftContract meter.Address, id *big.Int) error {
	return builtin.NFT(nftContract, env.GetState()).TransferFrom(meter.AuctionAccountAddr, owner, meter.AuctionAccountAddr, id)
}

// TransferNFTFromAuction releases token id from custody to addr.
func (env *ScriptEnv) TransferNFTFromAuction(addr, nftContract meter.Address, id *big.Int) error {
	return builtin.NFT(nftContract, env.GetState()).TransferFrom(meter.AuctionAccountAddr, meter.AuctionAccountAddr, addr, id)
}
