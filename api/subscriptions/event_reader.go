// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/meterio/nft-auction/runtime"
)

type eventReader struct {
	filter *EventFilter
}

func newEventReader(filter *EventFilter) *eventReader {
	return &eventReader{filter}
}

func (er *eventReader) Read(out *runtime.Output) []interface{} {
	var msgs []interface{}
	for _, event := range out.Events {
		if er.filter.Match(event) {
			msgs = append(msgs, convertEvent(out, event))
		}
	}
	return msgs
}

type transferReader struct {
	filter *TransferFilter
}

func newTransferReader(filter *TransferFilter) *transferReader {
	return &transferReader{filter}
}

func (tr *transferReader) Read(out *runtime.Output) []interface{} {
	var msgs []interface{}
	for _, transfer := range out.Transfers {
		if tr.filter.Match(out.Origin, transfer) {
			msgs = append(msgs, convertTransfer(out, transfer))
		}
	}
	return msgs
}
