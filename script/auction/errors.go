// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "errors"

var (
	ErrAuctionNotFound      = errors.New("auction does not exist")
	ErrAuctionEnded         = errors.New("auction already ended")
	ErrAuctionExpired       = errors.New("auction expired")
	ErrAuctionNotExpired    = errors.New("auction not yet expired")
	ErrBidTooLow            = errors.New("bid must be higher than the current highest price")
	ErrSellerBid            = errors.New("seller cannot bid on own auction")
	ErrInvalidStartingPrice = errors.New("starting price must be positive")
	ErrInvalidDuration      = errors.New("duration must be positive")
	ErrInvalidAmount        = errors.New("bid amount must be positive")
	ErrNotTokenOwner        = errors.New("caller does not own the token")
	ErrNotApproved          = errors.New("registry is not approved to transfer the token")
	ErrNoPriceFeed          = errors.New("no price feed for token")
	ErrNotAdmin             = errors.New("caller is not the registry admin")
	ErrNotPayable           = errors.New("operation does not accept value")
	ErrMixedPayment         = errors.New("ETH value attached to a token bid")
	ErrUnknownOpcode        = errors.New("unknown auction opcode")
	ErrUnsupportedVersion   = errors.New("unsupported storage version")
	ErrInvalidCategory      = errors.New("category is too long")
)
