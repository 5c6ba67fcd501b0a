// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stats

import (
	"math/big"

	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
)

type Stats struct {
	TotalAuctions  uint64 `json:"totalAuctions"`
	ActiveAuctions uint64 `json:"activeAuctions"`
	EndedAuctions  uint64 `json:"endedAuctions"`
	TotalBids      uint64 `json:"totalBids"`
}

type EnhancedStats struct {
	Stats
	TVL           string                   `json:"tvl"`
	TVLByToken    map[meter.Address]string `json:"tvlByToken"`
	TotalVolume   string                   `json:"totalVolume"`
	MeanBid       float64                  `json:"meanBid"`
	StdDevBid     float64                  `json:"stdDevBid"`
	UniqueBidders uint64                   `json:"uniqueBidders"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func convertStats(s *logdb.Stats) Stats {
	return Stats{
		TotalAuctions:  s.TotalAuctions,
		ActiveAuctions: s.ActiveAuctions,
		EndedAuctions:  s.EndedAuctions,
		TotalBids:      s.TotalBids,
	}
}

func convertEnhanced(s *logdb.EnhancedStats) *EnhancedStats {
	out := &EnhancedStats{
		Stats:         convertStats(&s.Stats),
		TVL:           bigString(s.TVL),
		TVLByToken:    make(map[meter.Address]string, len(s.TVLByToken)),
		TotalVolume:   bigString(s.TotalVolume),
		MeanBid:       s.MeanBid,
		StdDevBid:     s.StdDevBid,
		UniqueBidders: s.UniqueBidder,
	}
	for token, v := range s.TVLByToken {
		out.TVLByToken[token] = bigString(v)
	}
	return out
}
