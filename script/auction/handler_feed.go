// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
)

func (a *Auction) checkAdmin(env *setypes.ScriptEnv) error {
	admin := a.GetAdmin(env.GetState())
	if admin.IsZero() || admin != env.GetCaller() {
		return ErrNotAdmin
	}
	if env.GetValue().Sign() != 0 {
		return ErrNotPayable
	}
	return nil
}

// SetPriceFeed binds token (zero for ETH) to a USD price feed. A zero feed removes the binding.
func (a *Auction) SetPriceFeed(env *setypes.ScriptEnv, token, feed meter.Address) (err error) {
	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			env.SetReturnData([]byte(err.Error()))
			rejectedCounter.WithLabelValues(meter.GetOpName(meter.OP_SETFEED)).Inc()
		}
	}()

	if err = a.checkAdmin(env); err != nil {
		return
	}
	a.setPriceFeed(env.GetState(), token, feed)
	if err = emitPriceFeedSet(env, token, feed); err != nil {
		return
	}
	log.Info("price feed set", "token", token, "feed", feed)
	return env.GetState().Err()
}

// SetAdmin hands registry administration over to admin.
func (a *Auction) SetAdmin(env *setypes.ScriptEnv, admin meter.Address) (err error) {
	cp := env.NewCheckpoint()
	defer func() {
		if err != nil {
			env.RevertTo(cp)
			env.SetReturnData([]byte(err.Error()))
			rejectedCounter.WithLabelValues(meter.GetOpName(meter.OP_SETADMIN)).Inc()
		}
	}()

	if err = a.checkAdmin(env); err != nil {
		return
	}
	a.setAdmin(env.GetState(), admin)
	if err = emitAdminChanged(env, env.GetCaller(), admin); err != nil {
		return
	}
	log.Info("admin changed", "from", env.GetCaller(), "to", admin)
	return env.GetState().Err()
}
