// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

// Keys of governance params.
var (
	KeyAuctionAdmin   = BytesToBytes32([]byte("auction-admin"))
	KeyTokenMinter    = BytesToBytes32([]byte("token-minter"))
	KeyGenesisApplied = BytesToBytes32([]byte("genesis-applied"))
)

// Fixed addresses of native accounts.
var (
	ParamsAddr         = NameToAddress("Params")
	AuctionAccountAddr = NameToAddress("auction-account-address")
	NFTRegistryAddr    = NameToAddress("nft-registry")
)

// KeyExecSeq holds the sequence number of the last executed operation.
var KeyExecSeq = BytesToBytes32([]byte("exec-seq"))
