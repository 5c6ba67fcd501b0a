// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stats

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/logdb"
)

type StatsAPI struct {
	db *logdb.LogDB
}

func New(db *logdb.LogDB) *StatsAPI {
	return &StatsAPI{db}
}

func (s *StatsAPI) handleStats(w http.ResponseWriter, req *http.Request) error {
	st, err := s.db.Stats(req.Context())
	if err != nil {
		return err
	}
	out := convertStats(st)
	return utils.WriteJSON(w, &out)
}

func (s *StatsAPI) handleEnhanced(w http.ResponseWriter, req *http.Request) error {
	st, err := s.db.EnhancedStats(req.Context())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertEnhanced(st))
}

func (s *StatsAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleStats))
	sub.Path("/enhanced").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleEnhanced))
}
