// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/meterio/nft-auction/script"
)

type Health struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Seq            uint64 `json:"seq"`
	IndexedSeq     uint64 `json:"indexedSeq"`
	Timestamp      uint64 `json:"timestamp"`
	StorageVersion uint32 `json:"storageVersion"`
	LogDB          string `json:"logdb"`
}

type Module struct {
	Name string `json:"name"`
	ID   uint32 `json:"id"`
}

func convertModules(mods []script.Module) []*Module {
	list := make([]*Module, 0, len(mods))
	for _, m := range mods {
		list = append(list, &Module{Name: m.Name(), ID: m.ID()})
	}
	return list
}
