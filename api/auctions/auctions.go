// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/state"
	"github.com/pkg/errors"
)

type Auctions struct {
	rt *runtime.Runtime
	db *logdb.LogDB
}

func New(rt *runtime.Runtime, db *logdb.LogDB) *Auctions {
	return &Auctions{
		rt,
		db,
	}
}

func parseID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func parsePage(req *http.Request) (logdb.Page, error) {
	page, err := utils.QueryInt(req, "page", 1)
	if err != nil {
		return logdb.Page{}, err
	}
	size, err := utils.QueryInt(req, "page_size", logdb.DefaultPageSize)
	if err != nil {
		return logdb.Page{}, err
	}
	p := logdb.Page{Page: page, PageSize: size}
	p.Normalize()
	return p, nil
}

func parseAddressQuery(req *http.Request, name string) (*meter.Address, error) {
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

func (a *Auctions) handleList(w http.ResponseWriter, req *http.Request) error {
	page, err := parsePage(req)
	if err != nil {
		return err
	}
	filter := &logdb.AuctionFilter{
		SortBy: logdb.SortBy(req.URL.Query().Get("sort_by")),
		Order:  logdb.Order(req.URL.Query().Get("order")),
		Page:   page,
	}
	switch status := logdb.Status(req.URL.Query().Get("status")); status {
	case logdb.StatusActive, logdb.StatusEnded:
		filter.Status = status
	case logdb.StatusAll, "all":
	default:
		return utils.BadRequest(errors.New("status: want active, ended or all"))
	}
	if filter.Seller, err = parseAddressQuery(req, "seller"); err != nil {
		return err
	}
	if filter.NFTContract, err = parseAddressQuery(req, "nft_contract"); err != nil {
		return err
	}
	filter.Category = req.URL.Query().Get("category")

	list, total, err := a.db.FilterAuctions(req.Context(), filter)
	if err != nil {
		return err
	}
	out := &AuctionList{
		Auctions: make([]*IndexedAuction, len(list)),
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for i, item := range list {
		out.Auctions[i] = convertIndexed(item)
	}
	return utils.WriteJSON(w, out)
}

func (a *Auctions) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body CreateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	create := auction.NewCreateBody(body.Duration, toBig(body.StartingPrice), body.NFTContract, toBig(body.TokenID))
	create.Category = body.Category
	out, err := utils.Execute(req.Context(), a.rt, body.From, nil, create)
	if err != nil {
		return err
	}
	var id uint64
	if err := rlp.DecodeBytes(out.Data, &id); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq, Timestamp: out.Timestamp, AuctionID: &id})
}

func (a *Auctions) handleNextID(w http.ResponseWriter, req *http.Request) error {
	var next uint64
	a.rt.View(func(st *state.State) error {
		next = a.rt.Engine().Auction().GetNextAuctionID(st)
		return nil
	})
	return utils.WriteJSON(w, utils.M{"nextAuctionId": next})
}

func (a *Auctions) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var record *auction.AuctionRecord
	err = a.rt.View(func(st *state.State) (err error) {
		record, err = a.rt.Engine().Auction().GetAuction(st, id)
		return
	})
	if err != nil {
		if errors.Cause(err) == auction.ErrAuctionNotFound {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertRecord(record, a.rt.Now()))
}

func (a *Auctions) handleBids(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	page, err := parsePage(req)
	if err != nil {
		return err
	}
	bids, total, err := a.db.AuctionBids(req.Context(), id, page)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &BidList{Bids: convertBids(bids), Total: total, Page: page.Page, PageSize: page.PageSize})
}

func (a *Auctions) handleBid(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body BidRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount := toBig(body.Amount)
	var value *big.Int
	if body.Token.IsZero() {
		value = amount
	}
	out, err := utils.Execute(req.Context(), a.rt, body.From, value, auction.NewBidBody(id, body.Token, amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq, Timestamp: out.Timestamp, AuctionID: &id})
}

func (a *Auctions) handleEnd(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body EndRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	out, err := utils.Execute(req.Context(), a.rt, body.From, nil, auction.NewEndBody(id))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Receipt{TxID: out.TxID, Seq: out.Seq, Timestamp: out.Timestamp, AuctionID: &id})
}

func (a *Auctions) handleBidsByBidder(w http.ResponseWriter, req *http.Request) error {
	bidder, err := parseAddressQuery(req, "bidder")
	if err != nil {
		return err
	}
	if bidder == nil {
		return utils.BadRequest(errors.New("bidder: required"))
	}
	page, err := parsePage(req)
	if err != nil {
		return err
	}
	bids, total, err := a.db.BidsByBidder(req.Context(), *bidder, page)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &BidList{Bids: convertBids(bids), Total: total, Page: page.Page, PageSize: page.PageSize})
}

func (a *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleList))
	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(a.handleCreate))
	sub.Path("/next-id").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleNextID))
	sub.Path("/{id:[0-9]+}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleGet))
	sub.Path("/{id:[0-9]+}/bids").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleBids))
	sub.Path("/{id:[0-9]+}/bids").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(a.handleBid))
	sub.Path("/{id:[0-9]+}/end").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(a.handleEnd))
}

// MountBids mounts the bidder query.
func (a *Auctions) MountBids(root *mux.Router, pathPrefix string) {
	root.Path(pathPrefix).Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleBidsByBidder))
}
