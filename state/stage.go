// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/nft-auction/kv"
	"github.com/meterio/nft-auction/meter"
)

var log = slog.Default().With("pkg", "state")

// Stage abstracts changes ready to be written in one batch.
type Stage struct {
	err error

	kv      kv.Store
	cache   *lru.Cache
	changes map[string][]byte
}

// Len returns count of changed keys.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes in a single batch.
func (s *Stage) Commit() error {
	if s.err != nil {
		return s.err
	}
	start := time.Now()
	batch := s.kv.NewBatch()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	if s.cache != nil {
		for k, v := range s.changes {
			s.cache.Add(k, v)
		}
	}
	log.Debug("commited stage", "keys", len(s.changes), "elapsed", meter.PrettyDuration(time.Since(start)))
	return nil
}
