// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pricefeed

import (
	"errors"
	"math/big"
	"sync"

	"github.com/meterio/nft-auction/meter"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownFeed   = errors.New("unknown price feed")
	ErrInvalidAnswer = errors.New("price feed answer must be positive")
)

// RoundData mirrors the AggregatorV3 latestRoundData tuple.
type RoundData struct {
	RoundID   uint64
	Answer    *big.Int
	StartedAt uint64
	UpdatedAt uint64
}

// Aggregator is a read-only exchange rate source, answer is USD per whole token.
type Aggregator interface {
	Decimals() uint8
	LatestRoundData() (RoundData, error)
}

// Static is an aggregator whose answer is pushed by the operator.
type Static struct {
	mu       sync.RWMutex
	decimals uint8
	round    RoundData
}

// NewStatic creates a static aggregator with an initial answer.
func NewStatic(answer *big.Int, decimals uint8) *Static {
	return &Static{
		decimals: decimals,
		round:    RoundData{RoundID: 1, Answer: new(big.Int).Set(answer)},
	}
}

func (s *Static) Decimals() uint8 { return s.decimals }

func (s *Static) LatestRoundData() (RoundData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.round
	r.Answer = new(big.Int).Set(s.round.Answer)
	return r, nil
}

// SetAnswer starts a new round.
func (s *Static) SetAnswer(answer *big.Int, updatedAt uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = RoundData{
		RoundID:   s.round.RoundID + 1,
		Answer:    new(big.Int).Set(answer),
		StartedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

// Directory resolves feed addresses to aggregators.
type Directory struct {
	mu    sync.RWMutex
	feeds map[meter.Address]Aggregator
}

func NewDirectory() *Directory {
	return &Directory{feeds: make(map[meter.Address]Aggregator)}
}

// Register binds an aggregator to a feed address, replacing any previous one.
func (d *Directory) Register(feed meter.Address, agg Aggregator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feeds[feed] = agg
}

// Get returns the aggregator at feed.
func (d *Directory) Get(feed meter.Address) (Aggregator, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	agg, ok := d.feeds[feed]
	return agg, ok
}

// Addresses lists all registered feeds.
func (d *Directory) Addresses() []meter.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()
	addrs := make([]meter.Address, 0, len(d.feeds))
	for addr := range d.feeds {
		addrs = append(addrs, addr)
	}
	return addrs
}

// LatestPrice returns the latest answer of feed with its decimals.
func (d *Directory) LatestPrice(feed meter.Address) (*big.Int, uint8, error) {
	agg, ok := d.Get(feed)
	if !ok {
		return nil, 0, ErrUnknownFeed
	}
	round, err := agg.LatestRoundData()
	if err != nil {
		return nil, 0, err
	}
	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return nil, 0, ErrInvalidAnswer
	}
	return round.Answer, agg.Decimals(), nil
}

// ToUSD values amount (in smallest units of a token with tokenDecimals) at answer.
func ToUSD(amount *big.Int, tokenDecimals uint8, answer *big.Int, feedDecimals uint8) decimal.Decimal {
	a := decimal.NewFromBigInt(amount, -int32(tokenDecimals))
	p := decimal.NewFromBigInt(answer, -int32(feedDecimals))
	return a.Mul(p)
}
