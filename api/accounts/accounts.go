// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{
		rt,
	}
}

func (a *Accounts) getAccount(addr meter.Address, token, nft *meter.Address) (*Account, error) {
	acc := &Account{}
	err := a.rt.View(func(st *state.State) error {
		acc.Balance = hexOrDecimal(st.GetBalance(addr))
		if token != nil {
			b := hexOrDecimal(builtin.ERC20(*token, st).BalanceOf(addr))
			acc.Token = token
			acc.TokenBalance = &b
		}
		if nft != nil {
			n := builtin.NFT(*nft, st).BalanceOf(addr)
			acc.NFTCount = &n
		}
		return st.Err()
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (a *Accounts) getStorage(addr meter.Address, key meter.Bytes32) (raw []byte, err error) {
	err = a.rt.View(func(st *state.State) error {
		raw = st.GetRawStorage(addr, key)
		return st.Err()
	})
	return
}

func parseOptionalAddress(req *http.Request, name string) (*meter.Address, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return &addr, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	token, err := parseOptionalAddress(req, "token")
	if err != nil {
		return err
	}
	nft, err := parseOptionalAddress(req, "nft")
	if err != nil {
		return err
	}
	acc, err := a.getAccount(addr, token, nft)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) handleGetStorage(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	key, err := meter.ParseBytes32(mux.Vars(req)["key"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "key"))
	}
	raw, err := a.getStorage(addr, key)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]string{"value": hexutil.Encode(raw)})
}

// handleCall executes raw script data. Rejected calls are reported in the
// result instead of as an http error.
func (a *Accounts) handleCall(w http.ResponseWriter, req *http.Request) error {
	var callData CallData
	if err := utils.ParseJSON(req.Body, &callData); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(callData.Data)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "data"))
	}
	var value *big.Int
	if callData.Value != nil {
		value = (*big.Int)(callData.Value)
	}
	out, err := a.rt.Execute(req.Context(), &runtime.Clause{Origin: callData.From, Value: value, Data: data})
	if err != nil && (errors.Cause(err) == runtime.ErrCommitFailed || req.Context().Err() != nil) {
		return err
	}
	return utils.WriteJSON(w, convertCallResult(out, err))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(a.handleCall))
	sub.Path("/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/storage/{key}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleGetStorage))
}
