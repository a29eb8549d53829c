package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// EtherDecimals is the number of decimals between wei and the display unit
// of every supported network (ETH, POL).
const EtherDecimals = 18

// ResolveGasPrice returns the best available price per gas unit actually
// paid for tx. Priority: the receipt's effective gas price, then the legacy
// gas price, then the fee-market max fee per gas, then zero.
func ResolveGasPrice(receipt *types.Receipt, tx *types.Transaction) *big.Int {
	if receipt != nil && positive(receipt.EffectiveGasPrice) {
		return new(big.Int).Set(receipt.EffectiveGasPrice)
	}

	if tx == nil {
		return new(big.Int)
	}

	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		if price := tx.GasPrice(); positive(price) {
			return new(big.Int).Set(price)
		}
	default:
		// Fee-market transactions only expose an upper bound.
		if feeCap := tx.GasFeeCap(); positive(feeCap) {
			return new(big.Int).Set(feeCap)
		}
	}

	return new(big.Int)
}

// Cost returns gasUsed * price in wei. It fails if price does not fit in
// 256 bits or the product overflows.
func Cost(gasUsed uint64, price *big.Int) (*uint256.Int, error) {
	if price == nil {
		return new(uint256.Int), nil
	}

	if price.Sign() < 0 {
		return nil, fmt.Errorf("negative gas price %s", price)
	}

	p, overflow := uint256.FromBig(price)
	if overflow {
		return nil, fmt.Errorf("gas price %s overflows 256 bits", price)
	}

	cost, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(gasUsed), p)
	if overflow {
		return nil, fmt.Errorf("cost %d * %s overflows 256 bits", gasUsed, price)
	}

	return cost, nil
}

// FormatUnits renders amount scaled down by decimals as an exact decimal
// string. Trailing fractional zeros are dropped but at least one fractional
// digit is kept: 1050000 wei with 18 decimals is "0.00000000000105", and one
// ether is "1.0".
func FormatUnits(amount *uint256.Int, decimals int) string {
	if amount == nil {
		amount = new(uint256.Int)
	}

	if decimals <= 0 {
		return amount.Dec()
	}

	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))

	quo, rem := new(uint256.Int).DivMod(amount, scale, new(uint256.Int))

	frac := rem.Dec()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}

	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}

	return quo.Dec() + "." + frac
}

// FormatEther renders a wei amount in ether-style units.
func FormatEther(wei *uint256.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
