// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals between ether and wei.
const EtherDecimals = 18

// ParseEther converts a human readable ether amount ("0.01") into wei.
func ParseEther(s string) (*big.Int, error) {
	return ParseUnits(s, EtherDecimals)
}

// MustParseEther is ParseEther that panics on malformed input.
func MustParseEther(s string) *big.Int {
	v, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseUnits converts a decimal string into an integer amount of the smallest unit.
func ParseUnits(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	d = d.Shift(decimals)
	if !d.IsInteger() {
		return nil, fmt.Errorf("%v has more than %d decimals", s, decimals)
	}
	return d.BigInt(), nil
}

// FormatEther renders a wei amount in ether.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// FormatUnits renders an integer amount with the given number of decimals.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}
