// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/meterio/nft-auction/meter"
	setypes "github.com/meterio/nft-auction/script/types"
)

// ERC20 logs carry the value as data, ERC721 logs index the token id.
const eventsABI = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"spender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"ApprovalForAll","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"operator","type":"address","indexed":true},
		{"name":"approved","type":"bool","indexed":false}]}
]`

var (
	Events = func() abi.ABI {
		parsed, err := abi.JSON(strings.NewReader(eventsABI))
		if err != nil {
			panic(err)
		}
		return parsed
	}()

	TransferEvent       = Events.Events["Transfer"]
	ApprovalEvent       = Events.Events["Approval"]
	ApprovalForAllEvent = Events.Events["ApprovalForAll"]
)

func addressTopic(addr meter.Address) meter.Bytes32 {
	return meter.BytesToBytes32(addr[:])
}

func emitERC20(env *setypes.ScriptEnv, contract meter.Address, ev abi.Event, a, b meter.Address, value *big.Int) error {
	data, err := ev.Inputs.NonIndexed().Pack(value)
	if err != nil {
		return err
	}
	env.AddEvent(contract, []meter.Bytes32{meter.Bytes32(ev.ID), addressTopic(a), addressTopic(b)}, data)
	return nil
}

func emitERC721(env *setypes.ScriptEnv, contract meter.Address, ev abi.Event, a, b meter.Address, tokenID *big.Int) {
	env.AddEvent(contract, []meter.Bytes32{
		meter.Bytes32(ev.ID), addressTopic(a), addressTopic(b), meter.BytesToBytes32(tokenID.Bytes()),
	}, nil)
}

func emitApprovalForAll(env *setypes.ScriptEnv, contract, owner, operator meter.Address, approved bool) error {
	data, err := ApprovalForAllEvent.Inputs.NonIndexed().Pack(approved)
	if err != nil {
		return err
	}
	env.AddEvent(contract, []meter.Bytes32{meter.Bytes32(ApprovalForAllEvent.ID), addressTopic(owner), addressTopic(operator)}, data)
	return nil
}
