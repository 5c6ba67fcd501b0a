// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/runtime"
	"github.com/meterio/nft-auction/script"
	"github.com/meterio/nft-auction/script/auction"
	"github.com/meterio/nft-auction/script/tokens"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "api")

// Execute encodes body as a script call from origin and runs it. Rejections
// become 400 responses, an unknown auction 404 and missing privileges 403.
func Execute(ctx context.Context, rt *runtime.Runtime, origin meter.Address, value *big.Int, body interface{}) (*runtime.Output, error) {
	data, err := script.EncodeScriptData(body)
	if err != nil {
		return nil, err
	}
	out, err := rt.Execute(ctx, &runtime.Clause{Origin: origin, Value: value, Data: data})
	if err != nil {
		switch cause := errors.Cause(err); {
		case cause == runtime.ErrCommitFailed, cause == context.Canceled, cause == context.DeadlineExceeded:
			return nil, err
		case cause == auction.ErrAuctionNotFound:
			return nil, NotFound(err)
		case cause == auction.ErrNotAdmin, cause == tokens.ErrNotMinter, cause == runtime.ErrReservedOrigin:
			return nil, Forbidden(err)
		default:
			return nil, BadRequest(err)
		}
	}
	return out, nil
}
