// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// Amounts are stored as 32-byte big-endian blobs so that blob order is numeric order.
const (
	eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	topic4 BLOB(32),
	data BLOB,
	PRIMARY KEY (seq, eventIndex)
);
CREATE INDEX IF NOT EXISTS event_address ON event(address);
CREATE INDEX IF NOT EXISTS event_topic0 ON event(topic0);
`

	transferTableSchema = `CREATE TABLE IF NOT EXISTS transfer (
	seq INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32) NOT NULL,
	token BLOB(20) NOT NULL,
	PRIMARY KEY (seq, transferIndex)
);
CREATE INDEX IF NOT EXISTS transfer_sender ON transfer(sender);
CREATE INDEX IF NOT EXISTS transfer_recipient ON transfer(recipient);
`

	auctionTableSchema = `CREATE TABLE IF NOT EXISTS auction (
	auctionID INTEGER PRIMARY KEY,
	seller BLOB(20) NOT NULL,
	nftContract BLOB(20) NOT NULL,
	tokenID BLOB(32) NOT NULL,
	startPrice BLOB(32) NOT NULL,
	duration INTEGER NOT NULL,
	startTime INTEGER NOT NULL,
	ended INTEGER NOT NULL DEFAULT 0,
	endTime INTEGER,
	highestBidder BLOB(20),
	highestBid BLOB(32),
	token BLOB(20),
	bidCount INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS auction_seller ON auction(seller);
CREATE INDEX IF NOT EXISTS auction_nft ON auction(nftContract);
CREATE INDEX IF NOT EXISTS auction_ended ON auction(ended);
`

	bidTableSchema = `CREATE TABLE IF NOT EXISTS bid (
	txID BLOB(32) PRIMARY KEY,
	seq INTEGER NOT NULL,
	auctionID INTEGER NOT NULL,
	bidder BLOB(20) NOT NULL,
	amount BLOB(32) NOT NULL,
	token BLOB(20) NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bid_auction ON bid(auctionID);
CREATE INDEX IF NOT EXISTS bid_bidder ON bid(bidder);
`

	metaTableSchema = `CREATE TABLE IF NOT EXISTS meta (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`
)
