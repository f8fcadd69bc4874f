package domain

import "strings"

// TradeIntent describes the trade a caller is about to submit.
type TradeIntent struct {
	TokenIn  string   // input token symbol, e.g. "WETH"
	TokenOut string   // output token symbol, e.g. "USDC"
	AmountIn float64  // input amount in token units
	GasPrice *float64 // gwei; nil means "use snapshot p50"
}

// Pair returns the normalized "IN/OUT" pair string.
func (t TradeIntent) Pair() string {
	return NormalizePair(t.TokenIn, t.TokenOut)
}

// NormalizePair builds the canonical pair key used for caching and matching.
// Token symbols are upper-cased; ordering is preserved because direction matters.
func NormalizePair(tokenIn, tokenOut string) string {
	return strings.ToUpper(strings.TrimSpace(tokenIn)) + "/" + strings.ToUpper(strings.TrimSpace(tokenOut))
}
