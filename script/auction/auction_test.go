// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"math/big"
	"testing"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/lvldb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/pricefeed"
	"github.com/meterio/nft-auction/script/auction"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/meterio/nft-auction/state"
	"github.com/meterio/nft-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller  = meter.BytesToAddress([]byte("seller"))
	buyer   = meter.BytesToAddress([]byte("buyer"))
	buyer2  = meter.BytesToAddress([]byte("buyer2"))
	admin   = meter.BytesToAddress([]byte("admin"))
	nftAddr = meter.BytesToAddress([]byte("nft"))
	usdc    = meter.BytesToAddress([]byte("usdc"))
	ethFeed = meter.BytesToAddress([]byte("eth-usd"))
	usdFeed = meter.BytesToAddress([]byte("usdc-usd"))
)

const t0 = uint64(1_700_000_000)

type fixture struct {
	st    *state.State
	a     *auction.Auction
	feeds *pricefeed.Directory
	nonce uint64
}

func newFixture(t *testing.T) *fixture {
	kv, err := lvldb.NewMem()
	require.Nil(t, err)
	t.Cleanup(func() { kv.Close() })

	st := state.New(kv, nil)
	feeds := pricefeed.NewDirectory()
	a := auction.NewAuction(feeds)
	_, _, err = a.Migrate(st, t0)
	require.Nil(t, err)

	for _, addr := range []meter.Address{seller, buyer, buyer2} {
		st.SetBalance(addr, meter.MustParseEther("10"))
	}
	builtin.Params.Native(st).SetAddress(meter.KeyAuctionAdmin, admin)
	return &fixture{st: st, a: a, feeds: feeds}
}

func (f *fixture) env(caller meter.Address, value *big.Int, ts uint64) *setypes.ScriptEnv {
	f.nonce++
	return setypes.NewScriptEnv(f.st, &xenv.TransactionContext{
		Origin:    caller,
		Value:     value,
		Timestamp: ts,
		Nonce:     f.nonce,
	}, &auction.AuctionAccountAddr)
}

// mintApproved mints tokenID to seller and approves the registry as operator.
func (f *fixture) mintApproved(t *testing.T, tokenID int64) {
	nft := builtin.NFT(nftAddr, f.st)
	require.Nil(t, nft.Mint(seller, big.NewInt(tokenID)))
	nft.SetApprovalForAll(seller, auction.AuctionAccountAddr, true)
}

func (f *fixture) ownerOf(t *testing.T, tokenID int64) meter.Address {
	owner, err := builtin.NFT(nftAddr, f.st).OwnerOf(big.NewInt(tokenID))
	require.Nil(t, err)
	return owner
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(t, 1)

	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 10, meter.MustParseEther("0.01"), nftAddr, big.NewInt(1))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, auction.AuctionAccountAddr, f.ownerOf(t, 1), "token held in escrow")

	err = f.a.PlaceBid(f.env(buyer, meter.MustParseEther("0.02"), t0+1), id, meter.Address{}, nil)
	assert.Nil(t, err)
	assert.Equal(t, meter.MustParseEther("0.02"), f.st.GetBalance(auction.AuctionAccountAddr))

	// window still open at start+duration
	err = f.a.EndAuction(f.env(buyer, nil, t0+10), id)
	assert.Equal(t, auction.ErrAuctionNotExpired, err)

	err = f.a.EndAuction(f.env(buyer, nil, t0+11), id)
	assert.Nil(t, err)

	record, err := f.a.GetAuction(f.st, 0)
	require.Nil(t, err)
	assert.Equal(t, buyer, record.HighestBidder)
	assert.Equal(t, meter.MustParseEther("0.02"), record.HighestPrice)
	assert.True(t, record.Ended)
	assert.Equal(t, buyer, f.ownerOf(t, 1))

	assert.Equal(t, meter.MustParseEther("10.02").String(), f.st.GetBalance(seller).String())
	assert.Equal(t, meter.MustParseEther("9.98").String(), f.st.GetBalance(buyer).String())
	assert.Equal(t, 0, f.st.GetBalance(auction.AuctionAccountAddr).Sign())

	// finalize at most once
	err = f.a.EndAuction(f.env(seller, nil, t0+20), id)
	assert.Equal(t, auction.ErrAuctionEnded, err)
}

func TestCreateWithoutItem(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, uint64(0), f.a.GetNextAuctionID(f.st))

	_, err := f.a.CreateAuction(f.env(seller, nil, t0), 100, meter.MustParseEther("0.0008"), meter.Address{}, big.NewInt(0))
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), f.a.GetNextAuctionID(f.st))
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	nft := builtin.NFT(nftAddr, f.st)
	require.Nil(t, nft.Mint(seller, big.NewInt(1)))

	env := f.env(seller, nil, t0)
	_, err := f.a.CreateAuction(env, 10, big.NewInt(0), nftAddr, big.NewInt(1))
	assert.Equal(t, auction.ErrInvalidStartingPrice, err)
	assert.Equal(t, []byte(auction.ErrInvalidStartingPrice.Error()), env.GetReturnData())

	_, err = f.a.CreateAuction(f.env(seller, nil, t0), 0, big.NewInt(1), nftAddr, big.NewInt(1))
	assert.Equal(t, auction.ErrInvalidDuration, err)

	_, err = f.a.CreateAuction(f.env(seller, nil, t0), 10, big.NewInt(1), nftAddr, big.NewInt(1))
	assert.Equal(t, auction.ErrNotApproved, err)

	_, err = f.a.CreateAuction(f.env(buyer, nil, t0), 10, big.NewInt(1), nftAddr, big.NewInt(1))
	assert.Equal(t, auction.ErrNotTokenOwner, err)

	_, err = f.a.CreateAuction(f.env(seller, big.NewInt(1), t0), 10, big.NewInt(1), nftAddr, big.NewInt(1))
	assert.Equal(t, auction.ErrNotPayable, err)

	// single token approval is enough
	require.Nil(t, nft.Approve(seller, auction.AuctionAccountAddr, big.NewInt(1)))
	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 10, big.NewInt(1), nftAddr, big.NewInt(1))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), id)
	assert.Equal(t, uint64(1), f.a.GetNextAuctionID(f.st), "rejections never consume ids")
}

func TestBidRules(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(t, 1)
	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 60, meter.MustParseEther("0.01"), nftAddr, big.NewInt(1))
	require.Nil(t, err)

	bid := func(who meter.Address, amount string, ts uint64) error {
		return f.a.PlaceBid(f.env(who, meter.MustParseEther(amount), ts), id, meter.Address{}, nil)
	}

	// starting price itself is not enough
	assert.Equal(t, auction.ErrBidTooLow, bid(buyer, "0.01", t0+1))
	assert.Equal(t, auction.ErrSellerBid, bid(seller, "0.5", t0+1))
	assert.Equal(t, auction.ErrInvalidAmount, f.a.PlaceBid(f.env(buyer, nil, t0+1), id, meter.Address{}, nil))
	assert.Equal(t, auction.ErrAuctionNotFound, f.a.PlaceBid(f.env(buyer, big.NewInt(1), t0+1), 9, meter.Address{}, nil))

	assert.Nil(t, bid(buyer, "0.02", t0+2))

	before, _ := f.a.GetAuction(f.st, id)
	balanceBefore := f.st.GetBalance(buyer2)
	env := f.env(buyer2, meter.MustParseEther("0.02"), t0+3)
	assert.Equal(t, auction.ErrBidTooLow, f.a.PlaceBid(env, id, meter.Address{}, nil))
	after, _ := f.a.GetAuction(f.st, id)
	assert.Equal(t, before, after, "rejected bid leaves state unchanged")
	assert.Equal(t, balanceBefore, f.st.GetBalance(buyer2))
	assert.Empty(t, env.GetTransfers())
	assert.Empty(t, env.GetEvents())

	// outbid refunds the previous bidder
	assert.Nil(t, bid(buyer2, "0.03", t0+4))
	assert.Equal(t, meter.MustParseEther("10").String(), f.st.GetBalance(buyer).String())
	assert.Equal(t, meter.MustParseEther("0.03").String(), f.st.GetBalance(auction.AuctionAccountAddr).String())

	record, _ := f.a.GetAuction(f.st, id)
	assert.Equal(t, buyer2, record.HighestBidder)
	assert.Equal(t, uint32(2), record.BidCount)

	bids := f.a.GetBids(f.st, id)
	require.Len(t, bids, 2)
	assert.Equal(t, buyer, bids[0].Address)
	assert.Equal(t, buyer2, bids[1].Address)

	// window closes after start+duration
	assert.Nil(t, bid(buyer, "0.04", t0+60))
	assert.Equal(t, auction.ErrAuctionExpired, bid(buyer2, "0.05", t0+61))
}

func TestBidInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 60, big.NewInt(1), meter.Address{}, nil)
	require.Nil(t, err)

	err = f.a.PlaceBid(f.env(buyer, meter.MustParseEther("11"), t0+1), id, meter.Address{}, nil)
	assert.NotNil(t, err)
	record, _ := f.a.GetAuction(f.st, id)
	assert.False(t, record.HasBids())
}

func TestEndWithoutBids(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(t, 5)
	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 10, big.NewInt(100), nftAddr, big.NewInt(5))
	require.Nil(t, err)

	env := f.env(buyer, nil, t0+11)
	assert.Nil(t, f.a.EndAuction(env, id))
	assert.Equal(t, seller, f.ownerOf(t, 5))
	assert.Empty(t, env.GetTransfers())
	require.Len(t, env.GetEvents(), 1)

	decoded, err := auction.DecodeEvent(env.GetEvents()[0])
	require.Nil(t, err)
	ended := decoded.(*auction.AuctionEnded)
	assert.True(t, ended.Winner.IsZero())
	assert.Equal(t, 0, ended.FinalPrice.Sign())

	assert.Equal(t, auction.ErrAuctionEnded, f.a.PlaceBid(f.env(buyer2, big.NewInt(200), t0+5), id, meter.Address{}, nil))
}

func TestTokenBids(t *testing.T) {
	f := newFixture(t)
	token := builtin.ERC20(usdc, f.st)
	token.SetDecimals(6)
	require.Nil(t, token.Mint(buyer2, big.NewInt(1_000_000_000)))
	require.Nil(t, token.Approve(buyer2, auction.AuctionAccountAddr, big.NewInt(1_000_000_000)))

	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 60, meter.MustParseEther("0.01"), meter.Address{}, nil)
	require.Nil(t, err)
	require.Nil(t, f.a.PlaceBid(f.env(buyer, meter.MustParseEther("0.02"), t0+1), id, meter.Address{}, nil))

	// no feeds yet
	err = f.a.PlaceBid(f.env(buyer2, nil, t0+2), id, usdc, big.NewInt(300_000_000))
	assert.Equal(t, auction.ErrNoPriceFeed, err)

	assert.Equal(t, auction.ErrNotAdmin, f.a.SetPriceFeed(f.env(buyer, nil, t0+2), meter.Address{}, ethFeed))

	f.feeds.Register(ethFeed, pricefeed.NewStatic(meter.MustParseEther("10000"), 18))
	f.feeds.Register(usdFeed, pricefeed.NewStatic(meter.MustParseEther("1"), 18))
	require.Nil(t, f.a.SetPriceFeed(f.env(admin, nil, t0+2), meter.Address{}, ethFeed))
	require.Nil(t, f.a.SetPriceFeed(f.env(admin, nil, t0+2), usdc, usdFeed))
	assert.Len(t, f.a.GetPriceFeeds(f.st), 2)

	// 0.02 ETH is 200 USD
	err = f.a.PlaceBid(f.env(buyer2, nil, t0+3), id, usdc, big.NewInt(200_000_000))
	assert.Equal(t, auction.ErrBidTooLow, err)
	err = f.a.PlaceBid(f.env(buyer2, big.NewInt(1), t0+3), id, usdc, big.NewInt(300_000_000))
	assert.Equal(t, auction.ErrMixedPayment, err)

	require.Nil(t, f.a.PlaceBid(f.env(buyer2, nil, t0+3), id, usdc, big.NewInt(300_000_000)))
	assert.Equal(t, meter.MustParseEther("10").String(), f.st.GetBalance(buyer).String(), "ETH bidder refunded")
	assert.Equal(t, "300000000", token.BalanceOf(auction.AuctionAccountAddr).String())

	require.Nil(t, f.a.EndAuction(f.env(seller, nil, t0+61), id))
	assert.Equal(t, "300000000", token.BalanceOf(seller).String())
	record, _ := f.a.GetAuction(f.st, id)
	assert.Equal(t, usdc, record.HighestToken)
}

func TestHandleBody(t *testing.T) {
	f := newFixture(t)
	f.mintApproved(t, 3)

	body := auction.NewCreateBody(10, big.NewInt(1000), nftAddr, big.NewInt(3))
	env := f.env(seller, nil, t0)
	require.Nil(t, f.a.Handle(env, auction.AuctionEncodeBytes(body)))
	assert.NotEmpty(t, env.GetReturnData())

	err := f.a.Handle(f.env(buyer, big.NewInt(2000), t0+1), auction.AuctionEncodeBytes(auction.NewBidBody(0, meter.Address{}, nil)))
	assert.Nil(t, err)

	err = f.a.Handle(f.env(buyer, nil, t0+11), auction.AuctionEncodeBytes(&auction.AuctionBody{Opcode: 99}))
	assert.Equal(t, auction.ErrUnknownOpcode, err)

	err = f.a.Handle(f.env(buyer, nil, t0+11), []byte{0x01, 0x02})
	assert.NotNil(t, err)

	require.Nil(t, f.a.Handle(f.env(buyer, nil, t0+11), auction.AuctionEncodeBytes(auction.NewEndBody(0))))
	assert.Equal(t, buyer, f.ownerOf(t, 3))
}

func TestSetAdmin(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, auction.ErrNotAdmin, f.a.SetAdmin(f.env(buyer, nil, t0), buyer))
	assert.Nil(t, f.a.SetAdmin(f.env(admin, nil, t0), buyer))
	assert.Equal(t, buyer, f.a.GetAdmin(f.st))
}

func TestBidHistoryCap(t *testing.T) {
	f := newFixture(t)
	id, err := f.a.CreateAuction(f.env(seller, nil, t0), 1000, big.NewInt(1), meter.Address{}, big.NewInt(0))
	require.Nil(t, err)

	total := meter.AUCTION_MAX_BIDS + 6
	for i := 0; i < total; i++ {
		bidder := buyer
		if i%2 == 1 {
			bidder = buyer2
		}
		amount := big.NewInt(int64(i + 2))
		require.Nil(t, f.a.PlaceBid(f.env(bidder, amount, t0+uint64(i)+1), id, meter.Address{}, nil))
	}

	bids := f.a.GetBids(f.st, id)
	require.Len(t, bids, meter.AUCTION_MAX_BIDS)
	assert.Equal(t, int64(total-meter.AUCTION_MAX_BIDS+2), bids[0].Amount.Int64(), "oldest bids dropped")
	assert.Equal(t, int64(total+1), bids[len(bids)-1].Amount.Int64())

	record, err := f.a.GetAuction(f.st, id)
	require.Nil(t, err)
	assert.Equal(t, uint32(total), record.BidCount)
	assert.Equal(t, int64(total+1), record.HighestPrice.Int64())
}

func TestRenouncedAdmin(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, f.a.SetAdmin(f.env(admin, nil, t0), meter.Address{}))
	assert.True(t, f.a.GetAdmin(f.st).IsZero())

	tests := []struct {
		name   string
		caller meter.Address
		op     func(env *setypes.ScriptEnv) error
	}{
		{"set feed as former admin", admin, func(env *setypes.ScriptEnv) error {
			return f.a.SetPriceFeed(env, meter.Address{}, ethFeed)
		}},
		{"set feed as zero address", meter.Address{}, func(env *setypes.ScriptEnv) error {
			return f.a.SetPriceFeed(env, meter.Address{}, ethFeed)
		}},
		{"set admin as former admin", admin, func(env *setypes.ScriptEnv) error {
			return f.a.SetAdmin(env, admin)
		}},
		{"set admin as zero address", meter.Address{}, func(env *setypes.ScriptEnv) error {
			return f.a.SetAdmin(env, buyer)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := f.env(tt.caller, nil, t0+1)
			assert.Equal(t, auction.ErrNotAdmin, tt.op(env))
			assert.Empty(t, env.GetEvents())
		})
	}
	assert.True(t, f.a.GetAdmin(f.st).IsZero())
	assert.True(t, f.a.GetPriceFeed(f.st, meter.Address{}).IsZero())
}

func TestCategory(t *testing.T) {
	f := newFixture(t)

	env := f.env(seller, nil, t0)
	id, err := f.a.CreateAuctionInCategory(env, 10, big.NewInt(1), meter.Address{}, nil, "collectibles")
	require.Nil(t, err)
	record, err := f.a.GetAuction(f.st, id)
	require.Nil(t, err)
	assert.Equal(t, "collectibles", record.Category)

	decoded, err := auction.DecodeEvent(env.GetEvents()[0])
	require.Nil(t, err)
	assert.Equal(t, "collectibles", decoded.(*auction.AuctionCreated).Category)

	body := auction.NewCreateBody(10, big.NewInt(1), meter.Address{}, nil)
	body.Category = string(make([]byte, meter.AUCTION_MAX_CATEGORY_LEN+1))
	env = f.env(seller, nil, t0)
	assert.Equal(t, auction.ErrInvalidCategory, f.a.Handle(env, auction.AuctionEncodeBytes(body)))
	assert.Empty(t, env.GetEvents())
	assert.Equal(t, id+1, f.a.GetNextAuctionID(f.st))

	// bodies without a category still decode
	legacy := auction.NewCreateBody(10, big.NewInt(1), meter.Address{}, big.NewInt(0))
	decodedBody, err := auction.AuctionDecodeFromBytes(auction.AuctionEncodeBytes(legacy))
	require.Nil(t, err)
	assert.Equal(t, "", decodedBody.Category)
}
