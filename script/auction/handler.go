// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"time"

	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/pkg/errors"
)

// Handle decodes an AuctionBody and dispatches it.
func (a *Auction) Handle(env *setypes.ScriptEnv, data []byte) (err error) {
	start := time.Now()
	ab, err := AuctionDecodeFromBytes(data)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return errors.WithMessage(err, "decode auction body")
	}
	if ab.Version > Version() {
		return ErrUnsupportedVersion
	}

	log.Debug("received auction", "body", ab.ToString())
	switch ab.Opcode {
	case meter.OP_CREATE:
		_, err = a.CreateAuctionInCategory(env, ab.Duration, ab.StartingPrice, ab.NFTContract, ab.TokenID, ab.Category)
	case meter.OP_BID:
		err = a.PlaceBid(env, ab.AuctionID, ab.Token, ab.Amount)
	case meter.OP_END:
		err = a.EndAuction(env, ab.AuctionID)
	case meter.OP_SETFEED:
		err = a.SetPriceFeed(env, ab.Token, ab.Target)
	case meter.OP_SETADMIN:
		err = a.SetAdmin(env, ab.Target)
	default:
		log.Error("unknown opcode", "opcode", ab.Opcode)
		err = ErrUnknownOpcode
	}
	log.Debug("auction handled", "op", meter.GetOpName(ab.Opcode), "err", err, "elapsed", meter.PrettyDuration(time.Since(start)))
	return
}
