// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package erc20

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
)

var (
	ErrInsufficientBalance   = errors.New("erc20: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("erc20: insufficient allowance")
	ErrZeroAddress           = errors.New("erc20: zero address")
	ErrNegativeAmount        = errors.New("erc20: negative amount")
)

const defaultDecimals = 18

var (
	totalSupplyKey = meter.BytesToBytes32([]byte("total-supply"))
	decimalsKey    = meter.BytesToBytes32([]byte("decimals"))
)

// ERC20 is a native fungible token ledger kept in the storage of its contract address.
type ERC20 struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *ERC20 {
	return &ERC20{addr, state}
}

// Address returns the contract address.
func (e *ERC20) Address() meter.Address { return e.addr }

func balanceKey(owner meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("balance"), owner[:])
}

func allowanceKey(owner, spender meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("allowance"), owner[:], spender[:])
}

func (e *ERC20) getBig(key meter.Bytes32) *big.Int {
	v := new(big.Int)
	e.state.DecodeStorage(e.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, v)
	})
	return v
}

func (e *ERC20) setBig(key meter.Bytes32, v *big.Int) {
	e.state.EncodeStorage(e.addr, key, func() ([]byte, error) {
		if v.Sign() == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}

// Decimals returns the token decimals, 18 unless set at genesis.
func (e *ERC20) Decimals() uint8 {
	var d uint8 = defaultDecimals
	e.state.DecodeStorage(e.addr, decimalsKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &d)
	})
	return d
}

// SetDecimals stores the token decimals.
func (e *ERC20) SetDecimals(d uint8) {
	e.state.EncodeStorage(e.addr, decimalsKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(d)
	})
}

// TotalSupply returns the minted amount.
func (e *ERC20) TotalSupply() *big.Int {
	return e.getBig(totalSupplyKey)
}

// BalanceOf returns the balance of owner.
func (e *ERC20) BalanceOf(owner meter.Address) *big.Int {
	return e.getBig(balanceKey(owner))
}

// Mint credits amount to to.
func (e *ERC20) Mint(to meter.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	e.setBig(totalSupplyKey, new(big.Int).Add(e.TotalSupply(), amount))
	e.setBig(balanceKey(to), new(big.Int).Add(e.BalanceOf(to), amount))
	return nil
}

// Transfer moves amount from from to to.
func (e *ERC20) Transfer(from, to meter.Address, amount *big.Int) error {
	if to.IsZero() || from.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	balance := e.BalanceOf(from)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	e.setBig(balanceKey(from), new(big.Int).Sub(balance, amount))
	e.setBig(balanceKey(to), new(big.Int).Add(e.BalanceOf(to), amount))
	return nil
}

// Approve sets the allowance of spender over owner's tokens.
func (e *ERC20) Approve(owner, spender meter.Address, amount *big.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	e.setBig(allowanceKey(owner, spender), amount)
	return nil
}

// Allowance returns the remaining amount spender may move from owner.
func (e *ERC20) Allowance(owner, spender meter.Address) *big.Int {
	return e.getBig(allowanceKey(owner, spender))
}

// TransferFrom moves amount from from to to, consuming spender's allowance.
func (e *ERC20) TransferFrom(spender, from, to meter.Address, amount *big.Int) error {
	allowance := e.Allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := e.Transfer(from, to, amount); err != nil {
		return err
	}
	e.setBig(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount))
	return nil
}
