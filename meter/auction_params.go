// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

// auction module opcodes
const (
	OP_CREATE   = uint32(1)
	OP_BID      = uint32(2)
	OP_END      = uint32(3)
	OP_SETFEED  = uint32(4)
	OP_SETADMIN = uint32(5)
)

// tokens module opcodes
const (
	OP_NFT_MINT            = uint32(101)
	OP_NFT_APPROVE         = uint32(102)
	OP_NFT_APPROVE_ALL     = uint32(103)
	OP_NFT_TRANSFER        = uint32(104)
	OP_ERC20_MINT          = uint32(111)
	OP_ERC20_APPROVE       = uint32(112)
	OP_ERC20_TRANSFER      = uint32(113)
	OP_ERC20_TRANSFER_FROM = uint32(114)
)

const (
	// AUCTION_MAX_BIDS caps the bid history kept in state per auction.
	AUCTION_MAX_BIDS = 64
	// AUCTION_MAX_CATEGORY_LEN bounds the category label of a listing, in bytes.
	AUCTION_MAX_CATEGORY_LEN = 64
)

func GetOpName(op uint32) string {
	switch op {
	case OP_CREATE:
		return "Create"
	case OP_BID:
		return "Bid"
	case OP_END:
		return "End"
	case OP_SETFEED:
		return "SetPriceFeed"
	case OP_SETADMIN:
		return "SetAdmin"
	case OP_NFT_MINT:
		return "NFTMint"
	case OP_NFT_APPROVE:
		return "NFTApprove"
	case OP_NFT_APPROVE_ALL:
		return "NFTSetApprovalForAll"
	case OP_NFT_TRANSFER:
		return "NFTTransfer"
	case OP_ERC20_MINT:
		return "ERC20Mint"
	case OP_ERC20_APPROVE:
		return "ERC20Approve"
	case OP_ERC20_TRANSFER:
		return "ERC20Transfer"
	case OP_ERC20_TRANSFER_FROM:
		return "ERC20TransferFrom"
	default:
		return "Unknown"
	}
}
