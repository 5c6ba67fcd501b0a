// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/nft-auction/api/utils"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	log = slog.Default().With("api", "subscriptions")

	activeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "api_subscriptions_active",
		Help: "Open websocket subscriptions by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(activeGauge)
}

const (
	queueSize  = 256
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type msgReader interface {
	Read(out *runtime.Output) []interface{}
}

// Subscriptions pushes committed calls to websocket clients.
type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func parseAddress(req *http.Request, name string) (*meter.Address, error) {
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

func parseTopic(req *http.Request, name string) (*meter.Bytes32, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	topic, err := meter.ParseBytes32(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return &topic, nil
}

func (s *Subscriptions) handleAuctions(w http.ResponseWriter, req *http.Request) error {
	var auctionID *uint64
	if str := req.URL.Query().Get("id"); str != "" {
		id, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "id"))
		}
		auctionID = &id
	}
	s.pipe(w, req, "auction", newAuctionReader(auctionID))
	return nil
}

func (s *Subscriptions) handleEvents(w http.ResponseWriter, req *http.Request) error {
	var (
		filter EventFilter
		err    error
	)
	if filter.Address, err = parseAddress(req, "addr"); err != nil {
		return err
	}
	topics := []**meter.Bytes32{&filter.Topic0, &filter.Topic1, &filter.Topic2, &filter.Topic3, &filter.Topic4}
	for i, topic := range topics {
		if *topic, err = parseTopic(req, "t"+strconv.Itoa(i)); err != nil {
			return err
		}
	}
	s.pipe(w, req, "event", newEventReader(&filter))
	return nil
}

func (s *Subscriptions) handleTransfers(w http.ResponseWriter, req *http.Request) error {
	var (
		filter TransferFilter
		err    error
	)
	if filter.TxOrigin, err = parseAddress(req, "txOrigin"); err != nil {
		return err
	}
	if filter.Sender, err = parseAddress(req, "sender"); err != nil {
		return err
	}
	if filter.Recipient, err = parseAddress(req, "recipient"); err != nil {
		return err
	}
	s.pipe(w, req, "transfer", newTransferReader(&filter))
	return nil
}

func (s *Subscriptions) handleBeats(w http.ResponseWriter, req *http.Request) error {
	s.pipe(w, req, "beat", newBeatReader())
	return nil
}

// pipe upgrades the request and forwards every output rd turns into messages
// until the client goes away or the server closes. A client that cannot keep
// up hits the write deadline and is dropped.
func (s *Subscriptions) pipe(w http.ResponseWriter, req *http.Request, kind string, rd msgReader) {
	// subscribe before the handshake completes so nothing committed after it is missed
	outputs := make(chan *runtime.Output, queueSize)
	sub := s.rt.SubscribeOutputs(outputs)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// upgrader already responded
		log.Debug("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s.wg.Add(1)
	defer s.wg.Done()
	activeGauge.WithLabelValues(kind).Inc()
	defer activeGauge.WithLabelValues(kind).Dec()

	id := uuid.NewString()
	log.Debug("subscription opened", "id", id, "kind", kind, "remote", req.RemoteAddr)
	defer log.Debug("subscription closed", "id", id)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case out := <-outputs:
			for _, msg := range rd.Read(out) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("write failed, dropping subscriber", "id", id, "err", err)
					return
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-sub.Err():
			return
		case <-closed:
			return
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Close disconnects every subscriber and waits for them to finish.
func (s *Subscriptions) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/auction").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleAuctions))
	sub.Path("/event").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleEvents))
	sub.Path("/transfer").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleTransfers))
	sub.Path("/beat").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleBeats))
}
