// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/nft-auction/kv"
	"github.com/meterio/nft-auction/meter"
)

var (
	balancePrefix = []byte("b")
	storagePrefix = []byte("s")
)

// State keeps uncommitted changes over the kv store.
// Changes are journaled so they can be reverted to any checkpoint.
type State struct {
	kv      kv.Store
	cache   *lru.Cache
	dirty   map[string][]byte
	journal []journalEntry
	err     error
}

type journalEntry struct {
	key     string
	prev    []byte
	existed bool
}

// New create a state object. cache may be nil.
func New(kv kv.Store, cache *lru.Cache) *State {
	return &State{
		kv:    kv,
		cache: cache,
		dirty: make(map[string][]byte),
	}
}

func (s *State) setError(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns first occurred error.
func (s *State) Err() error {
	return s.err
}

func balanceKey(addr meter.Address) string {
	return string(append(append([]byte{}, balancePrefix...), addr[:]...))
}

func storageKey(addr meter.Address, key meter.Bytes32) string {
	h := meter.Blake2b(addr[:], key[:])
	return string(append(append([]byte{}, storagePrefix...), h[:]...))
}

func (s *State) get(key string) []byte {
	if v, ok := s.dirty[key]; ok {
		return v
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]byte)
		}
	}
	v, err := s.kv.Get([]byte(key))
	if err != nil {
		if !s.kv.IsNotFound(err) {
			s.setError(err)
			return nil
		}
		v = nil
	}
	if s.cache != nil {
		s.cache.Add(key, v)
	}
	return v
}

func (s *State) put(key string, value []byte) {
	prev, existed := s.dirty[key]
	s.journal = append(s.journal, journalEntry{key, prev, existed})
	s.dirty[key] = value
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr meter.Address) *big.Int {
	raw := s.get(balanceKey(addr))
	if len(raw) == 0 {
		return new(big.Int)
	}
	var balance big.Int
	if err := rlp.DecodeBytes(raw, &balance); err != nil {
		s.setError(err)
		return new(big.Int)
	}
	return &balance
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr meter.Address, balance *big.Int) {
	if balance.Sign() == 0 {
		s.put(balanceKey(addr), nil)
		return
	}
	raw, err := rlp.EncodeToBytes(balance)
	if err != nil {
		s.setError(err)
		return
	}
	s.put(balanceKey(addr), raw)
}

// SubBalance returns false if balance is insufficient.
func (s *State) SubBalance(addr meter.Address, amount *big.Int) bool {
	if amount.Sign() == 0 {
		return true
	}

	balance := s.GetBalance(addr)
	if balance.Cmp(amount) < 0 {
		return false
	}

	s.SetBalance(addr, new(big.Int).Sub(balance, amount))
	return true
}

// AddBalance adds amount to the balance of addr.
func (s *State) AddBalance(addr meter.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	balance := s.GetBalance(addr)
	s.SetBalance(addr, new(big.Int).Add(balance, amount))
}

// Transfer moves amount between two accounts, false if the sender can't cover it.
func (s *State) Transfer(from, to meter.Address, amount *big.Int) bool {
	if !s.SubBalance(from, amount) {
		return false
	}
	s.AddBalance(to, amount)
	return true
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr meter.Address, key meter.Bytes32) rlp.RawValue {
	return s.get(storageKey(addr, key))
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the slot.
func (s *State) SetRawStorage(addr meter.Address, key meter.Bytes32, raw rlp.RawValue) {
	s.put(storageKey(addr, key), raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr meter.Address, key meter.Bytes32, enc func() ([]byte, error)) {
	raw, err := enc()
	if err != nil {
		s.setError(err)
		return
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr meter.Address, key meter.Bytes32, dec func([]byte) error) {
	raw := s.GetRawStorage(addr, key)
	if err := dec(raw); err != nil {
		s.setError(err)
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return len(s.journal)
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 0 || revision > len(s.journal) {
		return
	}
	for i := len(s.journal) - 1; i >= revision; i-- {
		e := s.journal[i]
		if e.existed {
			s.dirty[e.key] = e.prev
		} else {
			delete(s.dirty, e.key)
		}
	}
	s.journal = s.journal[:revision]
}

// Stage makes a stage object to commit all changes.
func (s *State) Stage() *Stage {
	if s.err != nil {
		return &Stage{err: s.err}
	}
	changes := make(map[string][]byte, len(s.dirty))
	for k, v := range s.dirty {
		changes[k] = v
	}
	return &Stage{kv: s.kv, cache: s.cache, changes: changes}
}
