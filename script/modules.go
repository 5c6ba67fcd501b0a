// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
)

const (
	AUCTION_MODULE_NAME = string("auction")
	AUCTION_MODULE_ID   = uint32(1001)

	TOKENS_MODULE_NAME = string("tokens")
	TOKENS_MODULE_ID   = uint32(1002)
)

func ModuleAuctionInit(se *ScriptEngine, oracle auction.PriceOracle) *auction.Auction {
	a := auction.NewAuction(oracle)
	mod := &Module{
		modName:    AUCTION_MODULE_NAME,
		modID:      AUCTION_MODULE_ID,
		modHandler: a.Handle,
	}
	if err := se.modReg.Register(AUCTION_MODULE_ID, mod); err != nil {
		panic("register auction module failed")
	}

	a.Start()
	se.logger.Info("ScriptEngine", "started module", mod.modName)
	return a
}

func ModuleTokensInit(se *ScriptEngine) *tokens.Tokens {
	t := tokens.NewTokens()
	mod := &Module{
		modName:    TOKENS_MODULE_NAME,
		modID:      TOKENS_MODULE_ID,
		modHandler: t.Handle,
	}
	if err := se.modReg.Register(TOKENS_MODULE_ID, mod); err != nil {
		panic("register tokens module failed")
	}

	t.Start()
	se.logger.Info("ScriptEngine", "started module", mod.modName)
	return t
}
