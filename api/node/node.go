// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/state"
)

type Node struct {
	rt      *runtime.Runtime
	db      *logdb.LogDB
	version string
}

func New(rt *runtime.Runtime, db *logdb.LogDB, version string) *Node {
	return &Node{
		rt,
		db,
		version,
	}
}

// handleHealth reports "syncing" while the log db lags behind the runtime.
func (n *Node) handleHealth(w http.ResponseWriter, req *http.Request) error {
	indexed, err := n.db.LastSeq(req.Context())
	if err != nil {
		return err
	}
	h := &Health{
		Status:     "ok",
		Version:    n.version,
		Seq:        n.rt.Seq(),
		IndexedSeq: indexed,
		Timestamp:  n.rt.Now(),
		LogDB:      n.db.DriverVersion(),
	}
	n.rt.View(func(st *state.State) error {
		h.StorageVersion = auction.GetStorageVersion(st)
		return nil
	})
	if h.IndexedSeq < h.Seq {
		h.Status = "syncing"
	}
	return utils.WriteJSON(w, h)
}

func (n *Node) handleModules(w http.ResponseWriter, req *http.Request) error {
	list := convertModules(n.rt.Engine().Modules())
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return utils.WriteJSON(w, list)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/health").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(n.handleHealth))
	sub.Path("/modules").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(n.handleModules))
}
