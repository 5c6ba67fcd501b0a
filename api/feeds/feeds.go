// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"math/big"
	"net/http"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
)

// Feeds serves the price feed bindings and the registry admin.
type Feeds struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Feeds {
	return &Feeds{rt}
}

func (f *Feeds) handleList(w http.ResponseWriter, req *http.Request) error {
	var bindings map[meter.Address]meter.Address
	if err := f.rt.View(func(st *state.State) error {
		bindings = f.rt.Engine().Auction().GetPriceFeeds(st)
		return st.Err()
	}); err != nil {
		return err
	}
	list := make([]*Feed, 0, len(bindings))
	for token, feed := range bindings {
		list = append(list, &Feed{Token: token, Feed: feed})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Token.String() < list[j].Token.String() })
	return utils.WriteJSON(w, list)
}

func (f *Feeds) handleQuote(w http.ResponseWriter, req *http.Request) error {
	token, err := meter.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}
	amount := new(math.HexOrDecimal256)
	if s := req.URL.Query().Get("amount"); s != "" {
		if err := amount.UnmarshalText([]byte(s)); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "amount"))
		}
	}

	quote := &Quote{Token: token, Amount: *amount}
	err = f.rt.View(func(st *state.State) (err error) {
		a := f.rt.Engine().Auction()
		quote.Feed = a.GetPriceFeed(st, token)
		quote.USD, err = a.ValueInUSD(st, token, (*big.Int)(amount))
		return
	})
	if err != nil {
		if errors.Cause(err) == auction.ErrNoPriceFeed {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, quote)
}

func (f *Feeds) handleSetFeed(w http.ResponseWriter, req *http.Request) error {
	var body SetFeedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.Execute(req.Context(), f.rt, body.From, nil, auction.NewSetPriceFeedBody(body.Token, body.Feed))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq})
}

func (f *Feeds) handleGetAdmin(w http.ResponseWriter, req *http.Request) error {
	var admin meter.Address
	f.rt.View(func(st *state.State) error {
		admin = f.rt.Engine().Auction().GetAdmin(st)
		return nil
	})
	return utils.WriteJSON(w, utils.M{"admin": admin})
}

func (f *Feeds) handleSetAdmin(w http.ResponseWriter, req *http.Request) error {
	var body SetAdminRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.Execute(req.Context(), f.rt, body.From, nil, auction.NewSetAdminBody(body.Admin))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq})
}

func (f *Feeds) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(f.handleList))
	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(f.handleSetFeed))
	sub.Path("/{token}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(f.handleQuote))
}

func (f *Feeds) MountAdmin(root *mux.Router, pathPrefix string) {
	root.Path(pathPrefix).Methods("GET").HandlerFunc(utils.WrapHandlerFunc(f.handleGetAdmin))
	root.Path(pathPrefix).Methods("POST").HandlerFunc(utils.WrapHandlerFunc(f.handleSetAdmin))
}
