// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/state"
	"github.com/stretchr/testify/assert"
)

func newCreator(t *testing.T) *state.Creator {
	db, err := lvldb.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return state.NewCreator(db)
}

func TestBalance(t *testing.T) {
	st := newCreator(t).NewState()
	addr := meter.BytesToAddress([]byte("alice"))
	bob := meter.BytesToAddress([]byte("bob"))

	assert.Equal(t, big.NewInt(0), st.GetBalance(addr))
	st.AddBalance(addr, big.NewInt(100))
	assert.Equal(t, big.NewInt(100), st.GetBalance(addr))

	assert.False(t, st.SubBalance(addr, big.NewInt(101)))
	assert.True(t, st.SubBalance(addr, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), st.GetBalance(addr))

	assert.True(t, st.Transfer(addr, bob, big.NewInt(60)))
	assert.Equal(t, big.NewInt(0), st.GetBalance(addr))
	assert.Equal(t, big.NewInt(60), st.GetBalance(bob))
	assert.False(t, st.Transfer(addr, bob, big.NewInt(1)))
	assert.Nil(t, st.Err())
}

func TestRevert(t *testing.T) {
	st := newCreator(t).NewState()
	addr := meter.BytesToAddress([]byte("alice"))
	key := meter.BytesToBytes32([]byte("key"))

	st.SetBalance(addr, big.NewInt(10))
	rev := st.NewCheckpoint()
	st.SetBalance(addr, big.NewInt(20))
	st.SetRawStorage(addr, key, []byte{0x1})
	assert.Equal(t, big.NewInt(20), st.GetBalance(addr))

	st.RevertTo(rev)
	assert.Equal(t, big.NewInt(10), st.GetBalance(addr))
	assert.Empty(t, st.GetRawStorage(addr, key))
}

func TestStageCommit(t *testing.T) {
	creator := newCreator(t)
	addr := meter.BytesToAddress([]byte("alice"))
	key := meter.BytesToBytes32([]byte("key"))

	st := creator.NewState()
	st.SetBalance(addr, big.NewInt(7))
	st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	})

	// uncommitted changes are invisible to other states
	assert.Equal(t, big.NewInt(0), creator.NewState().GetBalance(addr))

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	assert.Nil(t, stage.Commit())

	fresh := creator.NewState()
	assert.Equal(t, big.NewInt(7), fresh.GetBalance(addr))
	var v uint64
	fresh.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &v)
	})
	assert.Nil(t, fresh.Err())
	assert.Equal(t, uint64(42), v)

	// deletions are committed too
	fresh.SetBalance(addr, big.NewInt(0))
	assert.Nil(t, fresh.Stage().Commit())
	assert.Equal(t, big.NewInt(0), creator.NewState().GetBalance(addr))
}

func TestDecodeError(t *testing.T) {
	st := newCreator(t).NewState()
	addr := meter.BytesToAddress([]byte("alice"))
	key := meter.BytesToBytes32([]byte("key"))

	st.SetRawStorage(addr, key, []byte{0xc1, 0xff})
	var v uint64
	st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &v)
	})
	assert.NotNil(t, st.Err())
	assert.NotNil(t, st.Stage().Commit())
}
