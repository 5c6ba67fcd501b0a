// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/meterio/nft-auction/builtin/erc20"
	"github.com/meterio/nft-auction/builtin/erc721"
	"github.com/meterio/nft-auction/builtin/params"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

// Builtin contracts binding.
var (
	Params = &paramsContract{meter.ParamsAddr}
)

type paramsContract struct {
	Address meter.Address
}

func (p *paramsContract) Native(state *state.State) *params.Params {
	return params.New(p.Address, state)
}

// NFT binds the ERC-721 ledger at addr.
func NFT(addr meter.Address, state *state.State) *erc721.ERC721 {
	return erc721.New(addr, state)
}

// NFTRegistry binds the list of minted ERC-721 contracts.
func NFTRegistry(state *state.State) *erc721.Registry {
	return erc721.NewRegistry(meter.NFTRegistryAddr, state)
}

// ERC20 binds the ERC-20 ledger at addr.
func ERC20(addr meter.Address, state *state.State) *erc20.ERC20 {
	return erc20.New(addr, state)
}
