// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/fortytw2/leaktest"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
	"github.com/meterio/nft-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller = meter.BytesToAddress([]byte("seller"))
	buyer  = meter.BytesToAddress([]byte("buyer"))
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newRuntime(t *testing.T) (*runtime.Runtime, *state.Creator, *clock) {
	kv, err := lvldb.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { kv.Close() })

	creator := state.NewCreator(kv)
	st := creator.NewState()
	st.SetBalance(seller, meter.MustParseEther("1"))
	st.SetBalance(buyer, meter.MustParseEther("1"))
	require.Nil(t, st.Stage().Commit())

	c := &clock{t: time.Unix(1_700_000_000, 0)}
	rt, err := runtime.New(creator, script.NewScriptEngine(pricefeed.NewDirectory()), c.now)
	require.Nil(t, err)
	t.Cleanup(rt.Close)
	return rt, creator, c
}

func encode(t *testing.T, body interface{}) []byte {
	data, err := script.EncodeScriptData(body)
	require.Nil(t, err)
	return data
}

func TestExecuteCommits(t *testing.T) {
	rt, _, c := newRuntime(t)
	defer leaktest.Check(t)()
	ctx := context.Background()

	out, err := rt.Execute(ctx, &runtime.Clause{
		Origin: seller,
		Data:   encode(t, auction.NewCreateBody(100, meter.MustParseEther("0.0008"), meter.Address{}, big.NewInt(0))),
	})
	require.Nil(t, err)
	assert.Equal(t, uint64(1), out.Seq)
	assert.Equal(t, uint64(c.t.Unix()), out.Timestamp)
	var id uint64
	require.Nil(t, rlp.DecodeBytes(out.Data, &id))
	assert.Equal(t, uint64(0), id)

	out, err = rt.Execute(ctx, &runtime.Clause{
		Origin: buyer,
		Value:  meter.MustParseEther("0.001"),
		Data:   encode(t, auction.NewBidBody(0, meter.Address{}, meter.MustParseEther("0.001"))),
	})
	require.Nil(t, err)
	assert.Equal(t, uint64(2), out.Seq)
	assert.Len(t, out.Transfers, 1)

	err = rt.View(func(st *state.State) error {
		record, err := rt.Engine().Auction().GetAuction(st, 0)
		if err != nil {
			return err
		}
		assert.Equal(t, buyer, record.HighestBidder)
		assert.Equal(t, meter.MustParseEther("0.999"), st.GetBalance(buyer))
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), rt.Seq())
}

func TestExecuteRevert(t *testing.T) {
	rt, creator, _ := newRuntime(t)
	ctx := context.Background()

	out, err := rt.Execute(ctx, &runtime.Clause{
		Origin: buyer,
		Value:  meter.MustParseEther("0.5"),
		Data:   encode(t, auction.NewBidBody(9, meter.Address{}, meter.MustParseEther("0.5"))),
	})
	assert.ErrorIs(t, err, auction.ErrAuctionNotFound)
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Data)
	assert.Equal(t, uint64(0), rt.Seq())
	assert.Equal(t, meter.MustParseEther("1"), creator.NewState().GetBalance(buyer))

	_, err = rt.Execute(ctx, &runtime.Clause{Origin: buyer, Data: []byte{1, 2, 3}})
	assert.Equal(t, script.ErrNotScript, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = rt.Execute(cancelled, &runtime.Clause{Origin: buyer})
	assert.Equal(t, context.Canceled, err)
}

func TestSubscribeOutputs(t *testing.T) {
	rt, _, _ := newRuntime(t)
	defer leaktest.Check(t)()

	ch := make(chan *runtime.Output, 4)
	sub := rt.SubscribeOutputs(ch)
	defer sub.Unsubscribe()

	_, err := rt.Execute(context.Background(), &runtime.Clause{
		Origin: seller,
		Data:   encode(t, auction.NewCreateBody(100, big.NewInt(10), meter.Address{}, big.NewInt(0))),
	})
	require.Nil(t, err)

	select {
	case out := <-ch:
		assert.Equal(t, uint64(1), out.Seq)
		assert.Len(t, out.Events, 1)
	case <-time.After(time.Second):
		t.Fatal("no output delivered")
	}
}

func TestSeqSurvivesRestart(t *testing.T) {
	kv, err := lvldb.NewMem()
	require.Nil(t, err)
	defer kv.Close()
	creator := state.NewCreator(kv)

	rt, err := runtime.New(creator, script.NewScriptEngine(nil), nil)
	require.Nil(t, err)
	_, err = rt.Execute(context.Background(), &runtime.Clause{
		Origin: seller,
		Data:   encode(t, auction.NewCreateBody(100, big.NewInt(10), meter.Address{}, big.NewInt(0))),
	})
	require.Nil(t, err)
	rt.Close()

	rt, err = runtime.New(state.NewCreator(kv), script.NewScriptEngine(nil), nil)
	require.Nil(t, err)
	defer rt.Close()
	assert.Equal(t, uint64(1), rt.Seq())
}

func TestReservedOrigin(t *testing.T) {
	rt, creator, c := newRuntime(t)
	ctx := context.Background()
	nft := meter.BytesToAddress([]byte("nft"))

	st := creator.NewState()
	require.Nil(t, builtin.NFT(nft, st).Mint(seller, big.NewInt(1)))
	require.Nil(t, builtin.NFT(nft, st).Approve(seller, meter.AuctionAccountAddr, big.NewInt(1)))
	require.Nil(t, st.Stage().Commit())

	_, err := rt.Execute(ctx, &runtime.Clause{
		Origin: seller,
		Data:   encode(t, auction.NewCreateBody(100, big.NewInt(500), nft, big.NewInt(1))),
	})
	require.Nil(t, err)
	_, err = rt.Execute(ctx, &runtime.Clause{
		Origin: buyer,
		Value:  big.NewInt(1000),
		Data:   encode(t, auction.NewBidBody(0, meter.Address{}, big.NewInt(1000))),
	})
	require.Nil(t, err)

	thief := meter.BytesToAddress([]byte("thief"))
	for _, origin := range []meter.Address{meter.AuctionAccountAddr, meter.ParamsAddr} {
		_, err = rt.Execute(ctx, &runtime.Clause{
			Origin: origin,
			Data:   encode(t, tokens.NewNFTTransferBody(nft, meter.AuctionAccountAddr, thief, big.NewInt(1))),
		})
		assert.Equal(t, runtime.ErrReservedOrigin, err)
	}
	_, err = rt.Execute(ctx, &runtime.Clause{
		Origin: meter.AuctionAccountAddr,
		Value:  big.NewInt(10),
		Data:   encode(t, auction.NewBidBody(0, meter.Address{}, big.NewInt(10))),
	})
	assert.Equal(t, runtime.ErrReservedOrigin, err)
	assert.Equal(t, uint64(2), rt.Seq())

	c.t = c.t.Add(time.Hour)
	_, err = rt.Execute(ctx, &runtime.Clause{Origin: thief, Data: encode(t, auction.NewEndBody(0))})
	require.Nil(t, err)

	st = creator.NewState()
	owner, err := builtin.NFT(nft, st).OwnerOf(big.NewInt(1))
	require.Nil(t, err)
	assert.Equal(t, buyer, owner)
	assert.Equal(t, 0, st.GetBalance(meter.AuctionAccountAddr).Sign())
}

func TestOutputsInSeqOrder(t *testing.T) {
	rt, _, _ := newRuntime(t)
	defer leaktest.Check(t)()

	const workers, perWorker = 8, 50
	ch := make(chan *runtime.Output, workers*perWorker)
	sub := rt.SubscribeOutputs(ch)
	defer sub.Unsubscribe()

	data := encode(t, auction.NewCreateBody(100, big.NewInt(10), meter.Address{}, big.NewInt(0)))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := rt.Execute(context.Background(), &runtime.Clause{Origin: seller, Data: data}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, ch, workers*perWorker)
	for want := uint64(1); want <= workers*perWorker; want++ {
		out := <-ch
		require.Equal(t, want, out.Seq)
	}
}
