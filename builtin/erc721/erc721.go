// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package erc721

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

var (
	ErrTokenExists       = errors.New("erc721: token already minted")
	ErrNonexistentToken  = errors.New("erc721: invalid token ID")
	ErrNotAuthorized     = errors.New("erc721: caller is not token owner or approved")
	ErrIncorrectOwner    = errors.New("erc721: transfer from incorrect owner")
	ErrZeroRecipient     = errors.New("erc721: transfer to the zero address")
	ErrApprovalToCurrent = errors.New("erc721: approval to current owner")
)

// ERC721 is a native non-fungible token ledger kept in the storage of its contract address.
type ERC721 struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *ERC721 {
	return &ERC721{addr, state}
}

// Address returns the contract address.
func (n *ERC721) Address() meter.Address { return n.addr }

func ownerKey(id *big.Int) meter.Bytes32 {
	return meter.Blake2b([]byte("owner"), id.Bytes())
}

func approvedKey(id *big.Int) meter.Bytes32 {
	return meter.Blake2b([]byte("approved"), id.Bytes())
}

func operatorKey(owner, operator meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("operator"), owner[:], operator[:])
}

func balanceKey(owner meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("balance"), owner[:])
}

func ownedKey(owner meter.Address, index uint64) meter.Bytes32 {
	return meter.Blake2b([]byte("owned"), owner[:], new(big.Int).SetUint64(index).Bytes())
}

func ownedIndexKey(id *big.Int) meter.Bytes32 {
	return meter.Blake2b([]byte("slot"), id.Bytes())
}

func uriKey(id *big.Int) meter.Bytes32 {
	return meter.Blake2b([]byte("uri"), id.Bytes())
}

var supplyKey = meter.Blake2b([]byte("supply"))

func (n *ERC721) getAddress(key meter.Bytes32) (addr meter.Address) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (n *ERC721) setAddress(key meter.Bytes32, addr meter.Address) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		if addr.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

func (n *ERC721) getUint(key meter.Bytes32) (v uint64) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func (n *ERC721) setUint(key meter.Bytes32, v uint64) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		if v == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}

// getID returns nil for an empty slot. Token 0 is stored as a non-empty rlp value.
func (n *ERC721) getID(key meter.Bytes32) (id *big.Int) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &id)
	})
	return
}

func (n *ERC721) setID(key meter.Bytes32, id *big.Int) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		if id == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(id)
	})
}

// addOwned appends id to the token list of owner. Called before the balance is raised.
func (n *ERC721) addOwned(owner meter.Address, id *big.Int) {
	index := n.getUint(balanceKey(owner))
	n.setID(ownedKey(owner, index), id)
	n.setUint(ownedIndexKey(id), index)
	n.setUint(balanceKey(owner), index+1)
}

// removeOwned drops id from the token list of from, moving the last entry into its slot.
func (n *ERC721) removeOwned(from meter.Address, id *big.Int) {
	last := n.getUint(balanceKey(from)) - 1
	index := n.getUint(ownedIndexKey(id))
	if index != last {
		lastID := n.TokenOfOwnerByIndex(from, last)
		n.setID(ownedKey(from, index), lastID)
		n.setUint(ownedIndexKey(lastID), index)
	}
	n.setID(ownedKey(from, last), nil)
	n.setUint(ownedIndexKey(id), 0)
	n.setUint(balanceKey(from), last)
}

// Mint creates token id owned by to. The first mint of a contract adds it to the registry.
func (n *ERC721) Mint(to meter.Address, id *big.Int) error {
	if to.IsZero() {
		return ErrZeroRecipient
	}
	if !n.getAddress(ownerKey(id)).IsZero() {
		return ErrTokenExists
	}
	supply := n.TotalSupply()
	if supply == 0 {
		NewRegistry(meter.NFTRegistryAddr, n.state).add(n.addr)
	}
	n.setAddress(ownerKey(id), to)
	n.addOwned(to, id)
	n.setUint(supplyKey, supply+1)
	return nil
}

// TotalSupply returns the count of minted tokens.
func (n *ERC721) TotalSupply() uint64 {
	return n.getUint(supplyKey)
}

// TokenOfOwnerByIndex returns the index-th token held by owner, nil past its balance.
func (n *ERC721) TokenOfOwnerByIndex(owner meter.Address, index uint64) *big.Int {
	if index >= n.BalanceOf(owner) {
		return nil
	}
	return n.getID(ownedKey(owner, index))
}

// TokensOfOwner lists the tokens held by owner. The order changes as tokens move.
func (n *ERC721) TokensOfOwner(owner meter.Address) []*big.Int {
	balance := n.BalanceOf(owner)
	ids := make([]*big.Int, 0, balance)
	for i := uint64(0); i < balance; i++ {
		if id := n.TokenOfOwnerByIndex(owner, i); id != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetTokenURI points token id at its off-chain metadata document.
func (n *ERC721) SetTokenURI(id *big.Int, uri string) error {
	if _, err := n.OwnerOf(id); err != nil {
		return err
	}
	n.state.EncodeStorage(n.addr, uriKey(id), func() ([]byte, error) {
		if uri == "" {
			return nil, nil
		}
		return rlp.EncodeToBytes(uri)
	})
	return nil
}

// TokenURI returns the metadata URI of token id, empty if none was set.
func (n *ERC721) TokenURI(id *big.Int) (uri string) {
	n.state.DecodeStorage(n.addr, uriKey(id), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &uri)
	})
	return
}

// OwnerOf returns the owner of token id.
func (n *ERC721) OwnerOf(id *big.Int) (meter.Address, error) {
	owner := n.getAddress(ownerKey(id))
	if owner.IsZero() {
		return meter.Address{}, ErrNonexistentToken
	}
	return owner, nil
}

// BalanceOf returns the count of tokens held by owner.
func (n *ERC721) BalanceOf(owner meter.Address) uint64 {
	return n.getUint(balanceKey(owner))
}

// Approve lets to transfer token id. caller must be the owner or one of its operators.
func (n *ERC721) Approve(caller, to meter.Address, id *big.Int) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if to == owner {
		return ErrApprovalToCurrent
	}
	if caller != owner && !n.IsApprovedForAll(owner, caller) {
		return ErrNotAuthorized
	}
	n.setAddress(approvedKey(id), to)
	return nil
}

// GetApproved returns the single-token approval of id.
func (n *ERC721) GetApproved(id *big.Int) meter.Address {
	return n.getAddress(approvedKey(id))
}

// SetApprovalForAll grants or revokes operator over all tokens of owner.
func (n *ERC721) SetApprovalForAll(owner, operator meter.Address, approved bool) {
	var v uint64
	if approved {
		v = 1
	}
	n.setUint(operatorKey(owner, operator), v)
}

// IsApprovedForAll reports whether operator manages all tokens of owner.
func (n *ERC721) IsApprovedForAll(owner, operator meter.Address) bool {
	return n.getUint(operatorKey(owner, operator)) == 1
}

// IsApprovedOrOwner reports whether spender may move token id.
func (n *ERC721) IsApprovedOrOwner(spender meter.Address, id *big.Int) bool {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return false
	}
	return spender == owner || n.GetApproved(id) == spender || n.IsApprovedForAll(owner, spender)
}

// TransferFrom moves token id from from to to on behalf of operator.
func (n *ERC721) TransferFrom(operator, from, to meter.Address, id *big.Int) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrIncorrectOwner
	}
	if to.IsZero() {
		return ErrZeroRecipient
	}
	if !n.IsApprovedOrOwner(operator, id) {
		return ErrNotAuthorized
	}

	n.setAddress(approvedKey(id), meter.Address{})
	n.removeOwned(from, id)
	n.addOwned(to, id)
	n.setAddress(ownerKey(id), to)
	return nil
}
