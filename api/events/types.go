// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/meterio/nft-auction/logdb"
	"github.com/meterio/nft-auction/meter"
)

var log = slog.Default().With("api", "events")

// LogMeta locates a log in the execution sequence.
type LogMeta struct {
	Seq       uint64        `json:"seq"`
	Timestamp uint64        `json:"timestamp"`
	TxID      meter.Bytes32 `json:"txID"`
	TxOrigin  meter.Address `json:"txOrigin"`
}

type TopicSet struct {
	Topic0 *meter.Bytes32 `json:"topic0"`
	Topic1 *meter.Bytes32 `json:"topic1"`
	Topic2 *meter.Bytes32 `json:"topic2"`
	Topic3 *meter.Bytes32 `json:"topic3"`
	Topic4 *meter.Bytes32 `json:"topic4"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address meter.Address    `json:"address"`
	Topics  []*meter.Bytes32 `json:"topics"`
	Data    string           `json:"data"`
	Meta    LogMeta          `json:"meta"`
}

// convert a logdb.Event into a json format Event
func convertEvent(event *logdb.Event) *FilteredEvent {
	fe := FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			Seq:       event.Seq,
			Timestamp: event.Timestamp,
			TxID:      event.TxID,
			TxOrigin:  event.TxOrigin,
		},
	}
	fe.Topics = make([]*meter.Bytes32, 0)
	for i := 0; i < 5; i++ {
		if event.Topics[i] != nil {
			fe.Topics = append(fe.Topics, event.Topics[i])
		}
	}
	return &fe
}

func (e *FilteredEvent) String() string {
	return fmt.Sprintf("Event(address: %v, topics: %v, data: %v, seq: %v, timestamp: %v, txID: %v, txOrigin: %v)",
		e.Address,
		e.Topics,
		e.Data,
		e.Meta.Seq,
		e.Meta.Timestamp,
		e.Meta.TxID,
		e.Meta.TxOrigin,
	)
}

type EventCriteria struct {
	Address *meter.Address `json:"address"`
	TopicSet
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *logdb.Range     `json:"range"`
	Options     *logdb.Options   `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Range:   filter.Range,
		Options: filter.Options,
		Order:   filter.Order,
	}
	if len(filter.CriteriaSet) > 0 {
		criterias := make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criteria := range filter.CriteriaSet {
			criterias[i] = &logdb.EventCriteria{
				Address: criteria.Address,
				Topics:  [5]*meter.Bytes32{criteria.Topic0, criteria.Topic1, criteria.Topic2, criteria.Topic3, criteria.Topic4},
			}
		}
		f.CriteriaSet = criterias
	}
	return f
}
