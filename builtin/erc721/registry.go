// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package erc721

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

var registryCountKey = meter.Blake2b([]byte("count"))

func registryEntryKey(index uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("contract"), new(big.Int).SetUint64(index).Bytes())
}

// Registry lists every ERC721 contract that has minted at least once, in order of first mint.
type Registry struct {
	addr  meter.Address
	state *state.State
}

func NewRegistry(addr meter.Address, state *state.State) *Registry {
	return &Registry{addr, state}
}

// Len returns the count of registered contracts.
func (r *Registry) Len() (n uint64) {
	r.state.DecodeStorage(r.addr, registryCountKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &n)
	})
	return
}

// At returns the index-th registered contract.
func (r *Registry) At(index uint64) (addr meter.Address) {
	r.state.DecodeStorage(r.addr, registryEntryKey(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

// Contracts lists all registered contracts.
func (r *Registry) Contracts() []meter.Address {
	n := r.Len()
	out := make([]meter.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		out = append(out, r.At(i))
	}
	return out
}

func (r *Registry) add(contract meter.Address) {
	n := r.Len()
	r.state.EncodeStorage(r.addr, registryEntryKey(n), func() ([]byte, error) {
		return rlp.EncodeToBytes(contract)
	})
	r.state.EncodeStorage(r.addr, registryCountKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(n + 1)
	})
}
