// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"time"

	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/pkg/errors"
)

// Handle decodes a TokensBody and applies it to the addressed ledger.
// A failed call leaves no trace in state, transfers or events.
func (t *Tokens) Handle(env *setypes.ScriptEnv, data []byte) (err error) {
	start := time.Now()
	tb, err := TokensDecodeFromBytes(data)
	if err != nil {
		log.Error("Decode script message failed", "error", err)
		return errors.WithMessage(err, "decode tokens body")
	}
	log.Debug("received tokens", "body", tb.ToString())

	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			env.SetReturnData([]byte(err.Error()))
		}
		log.Debug("tokens handled", "op", meter.GetOpName(tb.Opcode), "err", err, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if env.GetValue().Sign() != 0 {
		return ErrNotPayable
	}
	if tb.Contract.IsZero() {
		return ErrMissingContract
	}

	st := env.GetState()
	caller := env.GetCaller()
	tokenID := zeroIfNil(tb.TokenID)
	amount := zeroIfNil(tb.Amount)

	switch tb.Opcode {
	case meter.OP_NFT_MINT:
		if err = t.checkMinter(st, caller); err != nil {
			return
		}
		nft := builtin.NFT(tb.Contract, st)
		if err = nft.Mint(tb.To, tokenID); err != nil {
			return
		}
		if tb.URI != "" {
			if err = nft.SetTokenURI(tokenID, tb.URI); err != nil {
				return
			}
		}
		emitERC721(env, tb.Contract, TransferEvent, meter.Address{}, tb.To, tokenID)

	case meter.OP_NFT_APPROVE:
		if err = builtin.NFT(tb.Contract, st).Approve(caller, tb.To, tokenID); err != nil {
			return
		}
		emitERC721(env, tb.Contract, ApprovalEvent, caller, tb.To, tokenID)

	case meter.OP_NFT_APPROVE_ALL:
		builtin.NFT(tb.Contract, st).SetApprovalForAll(caller, tb.To, tb.Approved)
		err = emitApprovalForAll(env, tb.Contract, caller, tb.To, tb.Approved)

	case meter.OP_NFT_TRANSFER:
		from := tb.From
		if from.IsZero() {
			from = caller
		}
		if err = builtin.NFT(tb.Contract, st).TransferFrom(caller, from, tb.To, tokenID); err != nil {
			return
		}
		emitERC721(env, tb.Contract, TransferEvent, from, tb.To, tokenID)

	case meter.OP_ERC20_MINT:
		if err = t.checkMinter(st, caller); err != nil {
			return
		}
		token := builtin.ERC20(tb.Contract, st)
		if tb.Decimals != 0 {
			token.SetDecimals(tb.Decimals)
		}
		if err = token.Mint(tb.To, amount); err != nil {
			return
		}
		env.AddTransfer(meter.Address{}, tb.To, amount, tb.Contract)
		err = emitERC20(env, tb.Contract, TransferEvent, meter.Address{}, tb.To, amount)

	case meter.OP_ERC20_APPROVE:
		if err = builtin.ERC20(tb.Contract, st).Approve(caller, tb.To, amount); err != nil {
			return
		}
		err = emitERC20(env, tb.Contract, ApprovalEvent, caller, tb.To, amount)

	case meter.OP_ERC20_TRANSFER:
		if err = builtin.ERC20(tb.Contract, st).Transfer(caller, tb.To, amount); err != nil {
			return
		}
		env.AddTransfer(caller, tb.To, amount, tb.Contract)
		err = emitERC20(env, tb.Contract, TransferEvent, caller, tb.To, amount)

	case meter.OP_ERC20_TRANSFER_FROM:
		if err = builtin.ERC20(tb.Contract, st).TransferFrom(caller, tb.From, tb.To, amount); err != nil {
			return
		}
		env.AddTransfer(tb.From, tb.To, amount, tb.Contract)
		err = emitERC20(env, tb.Contract, TransferEvent, tb.From, tb.To, amount)

	default:
		log.Error("unknown opcode", "opcode", tb.Opcode)
		return ErrUnknownOpcode
	}
	if err != nil {
		return
	}
	return st.Err()
}
