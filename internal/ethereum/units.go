package ethereum

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	weiPerGwei  = new(big.Float).SetFloat64(1e9)
	weiPerEther = new(big.Float).SetFloat64(1e18)
)

// HexToInt64 parses a "0x"-prefixed hex quantity into an int64.
func HexToInt64(s string) (int64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty hex quantity %q", s)
	}
	n, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex quantity %q", s)
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("hex quantity %q overflows int64", s)
	}
	return n.Int64(), nil
}

// HexToGwei converts a hex wei quantity to gwei. Wei values exceed uint64
// for realistic gas prices, so parsing goes through math/big.
func HexToGwei(s string) (float64, error) {
	return hexToUnit(s, weiPerGwei)
}

// HexToEther converts a hex wei quantity to ether.
func HexToEther(s string) (float64, error) {
	return hexToUnit(s, weiPerEther)
}

func hexToUnit(s string, unit *big.Float) (float64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return 0, fmt.Errorf("empty hex quantity %q", s)
	}
	wei, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex quantity %q", s)
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), unit).Float64()
	return out, nil
}

// lowerHex lowercases an address or hex blob for canonical comparison.
func lowerHex(s string) string {
	return strings.ToLower(s)
}
