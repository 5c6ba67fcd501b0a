// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
	setypes "github.com/meterio/nft-auction/script/types"
)

var (
	ErrNotScript       = errors.New("data is not a script call")
	ErrPatternMismatch = errors.New("script pattern mismatch")
	ErrUnknownModule   = errors.New("unknown script module")
	ErrUnknownBody     = errors.New("unrecognized body")
)

type ScriptEngine struct {
	logger  *slog.Logger
	modReg  Registry
	auction *auction.Auction
	tokens  *tokens.Tokens
}

// NewScriptEngine creates an engine with the auction and tokens modules started.
func NewScriptEngine(oracle auction.PriceOracle) *ScriptEngine {
	se := &ScriptEngine{
		logger: slog.Default().With("pkg", "se"),
	}
	se.auction = ModuleAuctionInit(se, oracle)
	se.tokens = ModuleTokensInit(se)
	return se
}

func (se *ScriptEngine) Auction() *auction.Auction { return se.auction }
func (se *ScriptEngine) Tokens() *tokens.Tokens    { return se.tokens }
func (se *ScriptEngine) Modules() []Module         { return se.modReg.All() }

// IsScriptData reports whether data carries the script prefix.
func IsScriptData(data []byte) bool {
	return len(data) >= len(ScriptPrefix)+len(ScriptPattern) && bytes.Equal(data[:len(ScriptPrefix)], ScriptPrefix[:])
}

// HandleScriptData runs data against its module. The output is returned even on
// failure so callers can read the revert reason.
func (se *ScriptEngine) HandleScriptData(senv *setypes.ScriptEnv, data []byte) (*setypes.ScriptEngineOutput, error) {
	if !IsScriptData(data) {
		return nil, ErrNotScript
	}
	data = data[len(ScriptPrefix):]
	if !bytes.Equal(data[:len(ScriptPattern)], ScriptPattern[:]) {
		se.logger.Warn("pattern mismatch", "pattern", hex.EncodeToString(data[:len(ScriptPattern)]))
		return nil, ErrPatternMismatch
	}
	script, err := DecodeScriptData(data[len(ScriptPattern):])
	if err != nil {
		se.logger.Error("Decode script message failed", "error", err)
		return nil, err
	}

	header := script.Header
	mod, find := se.modReg.Find(header.GetModID())
	if !find {
		se.logger.Warn("could not address module", "modId", header.GetModID())
		return nil, fmt.Errorf("%w: %v", ErrUnknownModule, header.GetModID())
	}
	se.logger.Debug("script header", "header", header.ToString(), "module", mod.ToString())

	err = mod.modHandler(senv, script.Payload)
	return senv.GetOutput(), err
}

func EncodeScriptData(body interface{}) ([]byte, error) {
	var modID uint32
	switch body.(type) {
	case *auction.AuctionBody:
		modID = AUCTION_MODULE_ID
	case auction.AuctionBody:
		modID = AUCTION_MODULE_ID
	case *tokens.TokensBody:
		modID = TOKENS_MODULE_ID
	case tokens.TokensBody:
		modID = TOKENS_MODULE_ID
	default:
		return nil, ErrUnknownBody
	}
	payload, err := rlp.EncodeToBytes(body)
	if err != nil {
		return nil, err
	}
	s := &ScriptData{Header: ScriptHeader{Version: uint32(0), ModID: modID}, Payload: payload}
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(ScriptPrefix)+len(ScriptPattern)+len(data))
	out = append(out, ScriptPrefix[:]...)
	out = append(out, ScriptPattern[:]...)
	return append(out, data...), nil
}

// SplitScriptData strips the framing and returns the header and payload of data.
func SplitScriptData(data []byte) (*ScriptData, error) {
	if !IsScriptData(data) {
		return nil, ErrNotScript
	}
	data = data[len(ScriptPrefix):]
	if !bytes.Equal(data[:len(ScriptPattern)], ScriptPattern[:]) {
		return nil, ErrPatternMismatch
	}
	return DecodeScriptData(data[len(ScriptPattern):])
}
