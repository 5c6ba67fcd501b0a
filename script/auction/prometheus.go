// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/prometheus/client_golang/prometheus"

var (
	auctionsCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auctions_created_total",
		Help: "Counter of created auctions",
	})
	auctionsEndedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auctions_ended_total",
		Help: "Counter of settled auctions",
	})
	bidsPlacedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bids_placed_total",
		Help: "Counter of accepted bids",
	})
	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_ops_rejected_total",
		Help: "Counter of rejected auction operations by opcode",
	}, []string{"op"})
	nextAuctionIDGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "next_auction_id",
		Help: "Id assigned to the next created auction",
	})
)

func init() {
	prometheus.MustRegister(auctionsCreatedCounter)
	prometheus.MustRegister(auctionsEndedCounter)
	prometheus.MustRegister(bidsPlacedCounter)
	prometheus.MustRegister(rejectedCounter)
	prometheus.MustRegister(nextAuctionIDGauge)
}
