// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/nft-auction/meter"
)

var log = slog.Default().With("pkg", "genesis")

// DevAccount account for development.
type DevAccount struct {
	Address    meter.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for dev mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{meter.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// Fixed ledger addresses of the devnet.
var (
	DevNFTAddr  = meter.NameToAddress("devnet-nft")
	DevUSDCAddr = meter.NameToAddress("devnet-usdc")
	DevETHFeed  = meter.NameToAddress("devnet-eth-usd")
	DevUSDCFeed = meter.NameToAddress("devnet-usdc-usd")
)

// NewDevnet create genesis for dev mode. The first dev account administers the
// registry and mints tokens, the others hold ETH, USDC and a few NFTs.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	admin := accs[0].Address

	gen := &Genesis{
		Name:     "devnet",
		LaunchAt: 1526400000,
		Admin:    admin,
		Minter:   admin,
		ERC20s:   []ERC20{{Contract: DevUSDCAddr, Decimals: 6}},
		Feeds: []Feed{
			{Token: meter.Address{}, Feed: DevETHFeed, Answer: "2000", Decimals: 8},
			{Token: DevUSDCAddr, Feed: DevUSDCFeed, Answer: "1", Decimals: 8},
		},
	}
	for i, a := range accs {
		gen.Accounts = append(gen.Accounts, Account{Address: a.Address, Balance: "1000"})
		gen.ERC20s[0].Balances = append(gen.ERC20s[0].Balances, TokenBalance{Address: a.Address, Amount: "100000"})
		if i > 0 {
			gen.NFTs = append(gen.NFTs, NFT{
				Contract: DevNFTAddr,
				TokenID:  uint64(i),
				Owner:    a.Address,
				URI:      fmt.Sprintf("ipfs://devnet/%d.json", i),
			})
		}
	}
	return gen
}
