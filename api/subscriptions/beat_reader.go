// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"hash"
	"hash/fnv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	bloomfilter "github.com/holiman/bloomfilter/v2"
	"github.com/meterio/nft-auction/runtime"
)

// false positive rate of beat blooms
const beatBloomP = 0.01

type bloomContent struct {
	items [][]byte
}

func (bc *bloomContent) add(item []byte) {
	bc.items = append(bc.items, item)
}

func (bc *bloomContent) len() int {
	return len(bc.items)
}

type beatReader struct{}

func newBeatReader() *beatReader {
	return &beatReader{}
}

// BloomKey hashes item the way beat blooms are keyed.
func BloomKey(item []byte) hash.Hash64 {
	h := fnv.New64a()
	h.Write(item)
	return h
}

func (br *beatReader) Read(out *runtime.Output) []interface{} {
	bc := &bloomContent{}
	bc.add(out.Origin.Bytes())
	for _, event := range out.Events {
		bc.add(event.Address.Bytes())
		for _, topic := range event.Topics {
			bc.add(topic.Bytes())
		}
	}
	for _, transfer := range out.Transfers {
		bc.add(transfer.Sender.Bytes())
		bc.add(transfer.Recipient.Bytes())
		bc.add(transfer.Token.Bytes())
	}

	msg := &BeatMessage{
		Seq:       out.Seq,
		Timestamp: out.Timestamp,
		TxID:      out.TxID,
		TxOrigin:  out.Origin,
		Events:    len(out.Events),
		Transfers: len(out.Transfers),
	}
	filter, err := bloomfilter.NewOptimal(uint64(bc.len()), beatBloomP)
	if err != nil {
		log.Warn("could not build beat bloom", "seq", out.Seq, "err", err)
		return []interface{}{msg}
	}
	for _, item := range bc.items {
		filter.Add(BloomKey(item))
	}
	if data, err := filter.MarshalBinary(); err == nil {
		msg.Bloom = hexutil.Encode(data)
		msg.K = filter.K()
	}
	return []interface{}{msg}
}
