// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/meterio/nft-auction/api/events"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contractAddr = meter.BytesToAddress([]byte("contract"))
var ts *httptest.Server

func TestEvents(t *testing.T) {
	initEventServer(t)
	defer ts.Close()
	getEvents(t)
	getEventsDesc(t)
}

func getEvents(t *testing.T) {
	t0 := meter.BytesToBytes32([]byte("topic0"))
	t1 := meter.BytesToBytes32([]byte("topic1"))
	limit := 5
	filter := &events.EventFilter{
		Range: &logdb.Range{
			Unit: logdb.Seq,
			From: 0,
			To:   10,
		},
		Options: &logdb.Options{
			Offset: 0,
			Limit:  uint64(limit),
		},
		Order: "",
		CriteriaSet: []*events.EventCriteria{
			{
				Address: &contractAddr,
				TopicSet: events.TopicSet{
					Topic0: &t0,
				},
			},
			{
				Address: &contractAddr,
				TopicSet: events.TopicSet{
					Topic1: &t1,
				},
			},
		},
	}
	res := httpPost(t, ts.URL+"/logs/event", filter)
	var logs []*events.FilteredEvent
	require.Nil(t, json.Unmarshal(res, &logs), string(res))
	assert.Equal(t, limit, len(logs), "should be `limit` logs")
	assert.Equal(t, uint64(1), logs[0].Meta.Seq)
	assert.Len(t, logs[0].Topics, 2)
}

func getEventsDesc(t *testing.T) {
	filter := &events.EventFilter{
		Range:   &logdb.Range{Unit: logdb.Time, From: 1050, To: 2000},
		Options: &logdb.Options{Limit: 3},
		Order:   logdb.DESC,
	}
	res := httpPost(t, ts.URL+"/logs/event", filter)
	var logs []*events.FilteredEvent
	require.Nil(t, json.Unmarshal(res, &logs), string(res))
	require.Len(t, logs, 3)
	assert.Equal(t, uint64(100), logs[0].Meta.Seq)
	assert.Equal(t, uint64(1100), logs[0].Meta.Timestamp)
}

func initEventServer(t *testing.T) {
	db, err := logdb.NewMem()
	require.Nil(t, err)
	t.Cleanup(db.Close)
	txEv := &tx.Event{
		Address: contractAddr,
		Topics:  []meter.Bytes32{meter.BytesToBytes32([]byte("topic0")), meter.BytesToBytes32([]byte("topic1"))},
		Data:    []byte("data"),
	}

	for i := uint64(1); i <= 100; i++ {
		err := db.Prepare(i, 1000+i).ForTransaction(meter.BytesToBytes32([]byte("txID")), meter.BytesToAddress([]byte("txOrigin"))).
			Insert(tx.Events{txEv}, nil).Commit()
		require.Nil(t, err)
	}

	router := mux.NewRouter()
	events.New(db).Mount(router, "/logs/event")
	ts = httptest.NewServer(router)
}

func httpPost(t *testing.T, url string, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.Nil(t, err)
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data))
	require.Nil(t, err)
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.Nil(t, err)
	return r
}
