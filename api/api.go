// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/accounts"
	"github.com/meterio/nft-auction/api/auctions"
	"github.com/meterio/nft-auction/api/events"
	"github.com/meterio/nft-auction/api/feeds"
	"github.com/meterio/nft-auction/api/node"
	"github.com/meterio/nft-auction/api/stats"
	"github.com/meterio/nft-auction/api/subscriptions"
	"github.com/meterio/nft-auction/api/tokens"
	"github.com/meterio/nft-auction/api/transfers"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/runtime"
)

// New return api router
func New(rt *runtime.Runtime, logDB *logdb.LogDB, allowedOrigins string, version string) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	a := auctions.New(rt, logDB)
	a.Mount(router, "/auctions")
	a.MountBids(router, "/bids")
	stats.New(logDB).
		Mount(router, "/stats")
	f := feeds.New(rt)
	f.Mount(router, "/feeds")
	f.MountAdmin(router, "/admin")
	tk := tokens.New(rt, logDB)
	tk.MountNFTs(router, "/nfts")
	tk.MountWallet(router, "/wallet")
	tk.MountERC20s(router, "/erc20")
	accounts.New(rt).
		Mount(router, "/accounts")
	events.New(logDB).
		Mount(router, "/logs/event")
	transfers.New(logDB).
		Mount(router, "/logs/transfer")
	node.New(rt, logDB, version).
		Mount(router, "/node")
	subs := subscriptions.New(rt, origins)
	subs.Mount(router, "/subscriptions")

	return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"content-type"}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
