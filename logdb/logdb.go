// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/tx"
)

var log = slog.Default().With("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			if err := db.Close(); err != nil {
				log.Warn("could not close logdb", "err", err)
			}
		}
	}()
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema + transferTableSchema + auctionTableSchema + bidTableSchema + metaTableSchema); err != nil {
		return nil, err
	}
	if err := addCategoryColumn(db); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// addCategoryColumn upgrades auction tables created before categories were indexed.
func addCategoryColumn(db *sql.DB) error {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('auction') WHERE name = 'category'").Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := db.Exec("ALTER TABLE auction ADD COLUMN category TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
		log.Info("auction table upgraded", "column", "category")
	}
	_, err := db.Exec("CREATE INDEX IF NOT EXISTS auction_category ON auction(category)")
	return err
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	if err := db.db.Close(); err != nil {
		log.Warn("could not close logdb", "err", err)
	}
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch for the operation with sequence number seq.
func (db *LogDB) Prepare(seq, timestamp uint64) *Batch {
	return &Batch{
		db:        db.db,
		seq:       seq,
		timestamp: timestamp,
	}
}

// LastSeq returns the highest committed batch sequence number, whether or not it carried logs.
func (db *LogDB) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	err := db.db.QueryRowContext(ctx, "SELECT MAX(value) FROM meta WHERE name = 'seq'").Scan(&seq)
	if err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

func rangeClause(r *Range, args []interface{}) (string, []interface{}) {
	if r == nil {
		return "", args
	}
	condition := "seq"
	if r.Unit == Time {
		condition = "timestamp"
	}
	stmt := " AND " + condition + " >= ? "
	args = append(args, r.From)
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND " + condition + " <= ? "
	}
	return stmt, args
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC,eventIndex ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	var cond string
	cond, args = rangeClause(filter.Range, args)
	stmt += cond

	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC,eventIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC,eventIndex ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT * FROM transfer ORDER BY seq ASC,transferIndex ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM transfer WHERE 1"
	var cond string
	cond, args = rangeClause(filter.Range, args)
	stmt += cond
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ? "
	}
	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1 "
		} else {
			stmt += " OR ( 1 "
		}
		if criteria.TxOrigin != nil {
			args = append(args, criteria.TxOrigin.Bytes())
			stmt += " AND txOrigin = ? "
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			stmt += " AND sender = ? "
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			stmt += " AND recipient = ? "
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC,transferIndex DESC "
	} else {
		stmt += " ORDER BY seq ASC,transferIndex ASC "
	}
	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			index     uint32
			timestamp uint64
			txID      []byte
			txOrigin  []byte
			address   []byte
			topics    [5][]byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&index,
			&timestamp,
			&txID,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:       seq,
			Index:     index,
			Timestamp: timestamp,
			TxID:      meter.BytesToBytes32(txID),
			TxOrigin:  meter.BytesToAddress(txOrigin),
			Address:   meter.BytesToAddress(address),
			Data:      data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := meter.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...interface{}) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			index     uint32
			timestamp uint64
			txID      []byte
			txOrigin  []byte
			sender    []byte
			recipient []byte
			amount    []byte
			token     []byte
		)
		if err := rows.Scan(
			&seq,
			&index,
			&timestamp,
			&txID,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
			&token,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			Seq:       seq,
			Index:     index,
			Timestamp: timestamp,
			TxID:      meter.BytesToBytes32(txID),
			TxOrigin:  meter.BytesToAddress(txOrigin),
			Sender:    meter.BytesToAddress(sender),
			Recipient: meter.BytesToAddress(recipient),
			Amount:    new(big.Int).SetBytes(amount),
			Token:     meter.BytesToAddress(token),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func topicValue(topic *meter.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// amountValue encodes v as a 32-byte big-endian blob.
func amountValue(v *big.Int) []byte {
	b := make([]byte, 32)
	if v != nil && v.Sign() > 0 {
		v.FillBytes(b)
	}
	return b
}

// Batch collects the rows produced by one operation and writes them in one sql transaction.
type Batch struct {
	db        *sql.DB
	seq       uint64
	timestamp uint64
	events    []*Event
	transfers []*Transfer
	auctions  []*Auction
	bids      []*Bid
	ends      []*Auction
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		if e := tx.Rollback(); e != nil {
			log.Warn("could not rollback", "err", e)
		}
		return err
	}
	return tx.Commit()
}

func (b *Batch) ForTransaction(txID meter.Bytes32, txOrigin meter.Address) struct {
	Insert func(tx.Events, tx.Transfers) *Batch
} {
	return struct {
		Insert func(events tx.Events, transfers tx.Transfers) *Batch
	}{
		func(events tx.Events, transfers tx.Transfers) *Batch {
			for _, event := range events {
				b.events = append(b.events, newEvent(b.seq, b.timestamp, uint32(len(b.events)), txID, txOrigin, event))
			}
			for _, transfer := range transfers {
				b.transfers = append(b.transfers, newTransfer(b.seq, b.timestamp, uint32(len(b.transfers)), txID, txOrigin, transfer))
			}
			return b
		},
	}
}

// AddAuction records a newly created auction.
func (b *Batch) AddAuction(a *Auction) *Batch {
	b.auctions = append(b.auctions, a)
	return b
}

// AddBid records an accepted bid, which becomes the highest of its auction.
func (b *Batch) AddBid(bid *Bid) *Batch {
	b.bids = append(b.bids, bid)
	return b
}

// EndAuction marks auction id ended with its final winner and price.
func (b *Batch) EndAuction(id uint64, winner meter.Address, price *big.Int, token meter.Address, endTime uint64) *Batch {
	b.ends = append(b.ends, &Auction{
		AuctionID:     id,
		Ended:         true,
		EndTime:       &endTime,
		HighestBidder: &winner,
		HighestBid:    price,
		Token:         &token,
	})
	return b
}

func (b *Batch) Commit() error {
	return b.execInTx(func(tx *sql.Tx) error {
		for _, event := range b.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(seq, eventIndex, timestamp, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES ( ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				event.Seq,
				event.Index,
				event.Timestamp,
				event.TxID.Bytes(),
				event.TxOrigin.Bytes(),
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				topicValue(event.Topics[4]),
				event.Data,
			); err != nil {
				return err
			}
		}

		for _, transfer := range b.transfers {
			if _, err := tx.Exec("INSERT OR REPLACE INTO transfer(seq, transferIndex, timestamp, txID, txOrigin, sender, recipient, amount, token) VALUES ( ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				transfer.Seq,
				transfer.Index,
				transfer.Timestamp,
				transfer.TxID.Bytes(),
				transfer.TxOrigin.Bytes(),
				transfer.Sender.Bytes(),
				transfer.Recipient.Bytes(),
				amountValue(transfer.Amount),
				transfer.Token.Bytes(),
			); err != nil {
				return err
			}
		}

		for _, a := range b.auctions {
			if _, err := tx.Exec("INSERT OR REPLACE INTO auction(auctionID, seller, nftContract, tokenID, startPrice, duration, startTime, ended, bidCount, category) VALUES ( ?, ?, ?, ?, ?, ?, ?, 0, 0, ?);",
				a.AuctionID,
				a.Seller.Bytes(),
				a.NFTContract.Bytes(),
				amountValue(a.TokenID),
				amountValue(a.StartPrice),
				a.Duration,
				a.StartTime,
				a.Category,
			); err != nil {
				return err
			}
		}

		for _, bid := range b.bids {
			if _, err := tx.Exec("INSERT OR REPLACE INTO bid(txID, seq, auctionID, bidder, amount, token, timestamp) VALUES ( ?, ?, ?, ?, ?, ?, ?);",
				bid.TxID.Bytes(),
				bid.Seq,
				bid.AuctionID,
				bid.Bidder.Bytes(),
				amountValue(bid.Amount),
				bid.Token.Bytes(),
				bid.Timestamp,
			); err != nil {
				return err
			}
			if _, err := tx.Exec("UPDATE auction SET highestBidder = ?, highestBid = ?, token = ?, bidCount = (SELECT COUNT(*) FROM bid WHERE auctionID = ?) WHERE auctionID = ?;",
				bid.Bidder.Bytes(),
				amountValue(bid.Amount),
				bid.Token.Bytes(),
				bid.AuctionID,
				bid.AuctionID,
			); err != nil {
				return err
			}
		}

		for _, a := range b.ends {
			var bidder []byte
			if a.HighestBidder != nil && !a.HighestBidder.IsZero() {
				bidder = a.HighestBidder.Bytes()
			}
			if _, err := tx.Exec("UPDATE auction SET ended = 1, endTime = ?, highestBidder = COALESCE(?, highestBidder) WHERE auctionID = ?;",
				*a.EndTime,
				bidder,
				a.AuctionID,
			); err != nil {
				return err
			}
		}

		if _, err := tx.Exec("INSERT OR REPLACE INTO meta(name, value) VALUES ('seq', MAX(?, COALESCE((SELECT value FROM meta WHERE name = 'seq'), 0)));",
			b.seq,
		); err != nil {
			return err
		}
		return nil
	})
}
