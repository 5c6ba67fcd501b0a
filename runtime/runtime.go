// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/nft-auction/builtin"
	"github.com/meterio/nft-auction/meter"
	"github.com/meterio/nft-auction/script"
	setypes "github.com/meterio/nft-auction/script/types"
	"github.com/meterio/nft-auction/state"
	"github.com/meterio/nft-auction/tx"
	"github.com/meterio/nft-auction/xenv"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "rt")

// ErrCommitFailed is the cause of errors from writing a clause's changes.
// Every other Execute error is a rejection of the clause itself.
var ErrCommitFailed = errors.New("commit failed")

// ErrReservedOrigin rejects clauses sent on behalf of a native account.
var ErrReservedOrigin = errors.New("origin is a reserved account")

// reserved reports whether addr is a native account that only the registry moves.
func reserved(addr meter.Address) bool {
	return addr == meter.AuctionAccountAddr || addr == meter.ParamsAddr
}

// Clause is one call into the registry.
type Clause struct {
	Origin meter.Address
	Value  *big.Int
	Data   []byte
}

// Output output of clause execution.
type Output struct {
	TxID      meter.Bytes32
	Seq       uint64
	Origin    meter.Address
	Timestamp uint64
	Data      []byte
	Events    tx.Events
	Transfers tx.Transfers
}

// Runtime executes clauses one at a time against the committed state.
// A clause either commits all its changes or none.
type Runtime struct {
	mu      sync.RWMutex
	sendMu  sync.Mutex
	creator *state.Creator
	engine  *script.ScriptEngine
	now     func() time.Time
	seq     uint64

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a runtime and brings the registry storage up to date.
// now may be nil, time.Now is used then.
func New(creator *state.Creator, engine *script.ScriptEngine, now func() time.Time) (*Runtime, error) {
	if now == nil {
		now = time.Now
	}
	rt := &Runtime{
		creator: creator,
		engine:  engine,
		now:     now,
	}

	st := creator.NewState()
	from, to, err := engine.Auction().Migrate(st, uint64(now().Unix()))
	if err != nil {
		return nil, errors.Wrap(err, "migrate auction storage")
	}
	if err := st.Stage().Commit(); err != nil {
		return nil, errors.Wrap(err, "commit migration")
	}
	if from != to {
		log.Info("auction storage upgraded", "from", from, "to", to)
	}
	rt.seq = builtin.Params.Native(creator.NewState()).Get(meter.KeyExecSeq).Uint64()
	seqGauge.Set(float64(rt.seq))
	return rt, nil
}

func (rt *Runtime) Engine() *script.ScriptEngine { return rt.engine }

// Now returns the runtime clock in unix seconds.
func (rt *Runtime) Now() uint64 { return uint64(rt.now().Unix()) }

// Seq returns the sequence number of the last committed clause.
func (rt *Runtime) Seq() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.seq
}

// View runs fn over a consistent snapshot of the committed state.
// Changes made by fn are discarded.
func (rt *Runtime) View(fn func(st *state.State) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(rt.creator.NewState())
}

// SubscribeOutputs delivers the output of every committed clause to ch.
func (rt *Runtime) SubscribeOutputs(ch chan<- *Output) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (rt *Runtime) Close() {
	rt.scope.Close()
}

func txID(origin meter.Address, seq, ts uint64, data []byte) (id meter.Bytes32) {
	hw := meter.NewBlake2b()
	if err := rlp.Encode(hw, []interface{}{origin, seq, ts, data}); err != nil {
		return
	}
	hw.Sum(id[:0])
	return
}

func moduleName(data []byte) string {
	sd, err := script.SplitScriptData(data)
	if err != nil {
		return "unknown"
	}
	switch sd.Header.ModID {
	case script.AUCTION_MODULE_ID:
		return script.AUCTION_MODULE_NAME
	case script.TOKENS_MODULE_ID:
		return script.TOKENS_MODULE_NAME
	}
	return "unknown"
}

// Execute runs clause and commits its changes. On failure nothing is committed
// and the returned output carries the revert reason as data.
func (rt *Runtime) Execute(ctx context.Context, clause *Clause) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	module := moduleName(clause.Data)

	rt.mu.Lock()
	output, err := rt.execute(clause)
	if err == nil {
		// taken before mu is released so outputs are sent in seq order
		rt.sendMu.Lock()
		defer rt.sendMu.Unlock()
	}
	rt.mu.Unlock()

	executionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		executionsCounter.WithLabelValues(module, "reverted").Inc()
		log.Debug("clause reverted", "module", module, "origin", clause.Origin, "err", err)
		return output, err
	}
	executionsCounter.WithLabelValues(module, "ok").Inc()
	seqGauge.Set(float64(output.Seq))
	rt.feed.Send(output)
	return output, nil
}

func (rt *Runtime) execute(clause *Clause) (*Output, error) {
	value := clause.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, errors.New("negative value")
	}
	if reserved(clause.Origin) {
		return nil, ErrReservedOrigin
	}

	seq := rt.seq + 1
	ts := uint64(rt.now().Unix())
	txCtx := &xenv.TransactionContext{
		ID:        txID(clause.Origin, seq, ts, clause.Data),
		Origin:    clause.Origin,
		Value:     value,
		Timestamp: ts,
		Nonce:     seq,
		Seq:       seq,
	}

	st := rt.creator.NewState()
	to := meter.AuctionAccountAddr
	env := setypes.NewScriptEnv(st, txCtx, &to)
	seOutput, err := rt.engine.HandleScriptData(env, clause.Data)
	if err != nil {
		output := &Output{TxID: txCtx.ID, Seq: seq, Origin: clause.Origin, Timestamp: ts}
		if seOutput != nil {
			output.Data = seOutput.GetData()
		}
		return output, err
	}

	builtin.Params.Native(st).Set(meter.KeyExecSeq, new(big.Int).SetUint64(seq))
	if err := st.Stage().Commit(); err != nil {
		log.Error("commit failed", "seq", seq, "err", err)
		return nil, errors.WithMessage(ErrCommitFailed, err.Error())
	}
	rt.seq = seq
	log.Debug("clause committed", "txCtx", txCtx.String())

	return &Output{
		TxID:      txCtx.ID,
		Seq:       seq,
		Origin:    clause.Origin,
		Timestamp: ts,
		Data:      seOutput.GetData(),
		Events:    seOutput.GetEvents(),
		Transfers: seOutput.GetTransfers(),
	}, nil
}
