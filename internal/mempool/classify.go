package mempool

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/ethereum"
)

// Known DEX router addresses (mainnet, lowercase).
var knownRouters = map[string]bool{
	"0x7a250d5630b4cf539739df2c5dacb4c659f2488d": true, // Uniswap V2 Router02
	"0xe592427a0aece92de3edee1f18e0157c05861564": true, // Uniswap V3 SwapRouter
	"0x68b3465833fb72a70ecdf485e0e4c7bd8665fc45": true, // Uniswap V3 SwapRouter02
	"0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad": true, // Uniswap Universal Router
	"0xd9e1ce17f2641f24ae83637ab66a2cca9c378b9f": true, // SushiSwap Router
	"0x1111111254eeb25477b68fb85ed929f73a960582": true, // 1inch v5
}

// Canonical signatures behind the swap and add-liquidity selector sets.
var (
	swapSignatures = []string{
		"swapExactTokensForTokens(uint256,uint256,address[],address,uint256)",
		"swapTokensForExactTokens(uint256,uint256,address[],address,uint256)",
		"swapExactETHForTokens(uint256,address[],address,uint256)",
		"swapExactTokensForETH(uint256,uint256,address[],address,uint256)",
		"swapETHForExactTokens(uint256,address[],address,uint256)",
		"exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160))",
		"exactInput((bytes,address,uint256,uint256,uint256))",
		"exactOutputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160))",
		"execute(bytes,bytes[],uint256)",
	}

	addLiquiditySignatures = []string{
		"addLiquidity(address,address,uint256,uint256,uint256,uint256,address,uint256)",
		"addLiquidityETH(address,uint256,uint256,uint256,address,uint256)",
		"mint((address,address,uint24,int24,int24,uint256,uint256,uint256,uint256,address,uint256))",
		"increaseLiquidity((uint256,uint256,uint256,uint256,uint256,uint256))",
	}
)

// selector computes the 4-byte keccak selector for a canonical signature.
func selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var out [32]byte
	h.Sum(out[:0])
	return "0x" + hex.EncodeToString(out[:4])
}

func selectorSet(signatures []string) map[string]bool {
	set := make(map[string]bool, len(signatures))
	for _, sig := range signatures {
		set[selector(sig)] = true
	}
	return set
}

// Classifier decides whether a raw transaction is a DEX swap and normalizes
// it into a PendingTransaction record.
type Classifier struct {
	routers       map[string]bool
	swapSels      map[string]bool
	liquiditySels map[string]bool
	tokens        map[string]string // lowercase address -> symbol
}

// NewClassifier creates a classifier with the built-in router, selector and
// token tables.
func NewClassifier() *Classifier {
	return &Classifier{
		routers:       knownRouters,
		swapSels:      selectorSet(swapSignatures),
		liquiditySels: selectorSet(addLiquiditySignatures),
		tokens:        knownTokens,
	}
}

// IsSwap reports whether a transaction targets a known router or carries a
// known swap or add-liquidity selector.
func (c *Classifier) IsSwap(recipient, methodSelector string) bool {
	if c.routers[strings.ToLower(recipient)] {
		return true
	}
	sel := strings.ToLower(methodSelector)
	return c.swapSels[sel] || c.liquiditySels[sel]
}

// IsAddLiquidity reports whether the selector belongs to the add-liquidity set.
func (c *Classifier) IsAddLiquidity(methodSelector string) bool {
	return c.liquiditySels[strings.ToLower(methodSelector)]
}

// Normalize converts a raw swap transaction into a PendingTransaction
// record. suspiciousAbove marks records offering a gas price at or above
// the given gwei threshold; pass 0 to disable.
func (c *Classifier) Normalize(tx *ethereum.Transaction, observedAt int64, suspiciousAbove float64) (domain.PendingTransaction, bool) {
	gasPrice, ok := tx.GasPriceGwei()
	if !ok {
		return domain.PendingTransaction{}, false
	}

	tokenIn, tokenOut := c.inferPair(tx)

	return domain.PendingTransaction{
		Hash:           strings.ToLower(tx.Hash),
		From:           strings.ToLower(tx.From),
		To:             tx.Recipient(),
		GasPrice:       gasPrice,
		Value:          tx.ValueEther(),
		MethodSelector: tx.MethodSelector(),
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		ObservedAt:     observedAt,
		Suspicious:     suspiciousAbove > 0 && gasPrice >= suspiciousAbove,
	}, true
}

// inferPair extracts the traded pair from V2-style calldata where the token
// path sits at a fixed tail position. Anything else stays unknown: pattern
// matching tolerates unknown pairs, a wrong pair would mislead it.
func (c *Classifier) inferPair(tx *ethereum.Transaction) (string, string) {
	data := strings.TrimPrefix(strings.ToLower(tx.Input), "0x")
	if len(data) < 8 {
		return domain.UnknownToken, domain.UnknownToken
	}
	if !v2PathSelectors[("0x" + data[:8])] {
		return domain.UnknownToken, domain.UnknownToken
	}

	words := splitWords(data[8:])
	// Layout: fixed args, then the dynamic path array (offset word, length
	// word, addresses). Find the length word via the path offset argument.
	for i, w := range words {
		offset, ok := wordToInt(w)
		if !ok || offset == 0 || offset%32 != 0 {
			continue
		}
		idx := int(offset / 32)
		if idx <= i || idx >= len(words) {
			continue // offset must point forward into the dynamic section
		}
		length, ok := wordToInt(words[idx])
		if !ok || length < 2 || length > 8 || idx+int(length) > len(words)-1 {
			continue
		}
		first := wordToAddress(words[idx+1])
		last := wordToAddress(words[idx+int(length)])
		return c.symbol(first), c.symbol(last)
	}

	return domain.UnknownToken, domain.UnknownToken
}

// symbol maps a token address to its symbol, or a short address form.
func (c *Classifier) symbol(addr string) string {
	if addr == "" {
		return domain.UnknownToken
	}
	if sym, ok := c.tokens[addr]; ok {
		return sym
	}
	return strings.ToUpper(addr[2:10])
}

// V2-style selectors whose calldata carries an address[] path.
var v2PathSelectors = selectorSet([]string{
	"swapExactTokensForTokens(uint256,uint256,address[],address,uint256)",
	"swapTokensForExactTokens(uint256,uint256,address[],address,uint256)",
	"swapExactETHForTokens(uint256,address[],address,uint256)",
	"swapExactTokensForETH(uint256,uint256,address[],address,uint256)",
	"swapETHForExactTokens(uint256,address[],address,uint256)",
})

// Well-known mainnet token addresses.
var knownTokens = map[string]string{
	"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2": "WETH",
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": "USDC",
	"0xdac17f958d2ee523a2206206994597c13d831ec7": "USDT",
	"0x6b175474e89094c44da98b954eedeac495271d0f": "DAI",
	"0x2260fac5e5542a773aa44fbcfedf7c193bc2c599": "WBTC",
	"0x514910771af9ca656af840dff83e8264ecf986ca": "LINK",
	"0x1f9840a85d5af5bf1d1762f925bdaddc4201f984": "UNI",
}

// splitWords chops ABI-encoded calldata into 32-byte hex words.
func splitWords(data string) []string {
	var words []string
	for i := 0; i+64 <= len(data); i += 64 {
		words = append(words, data[i:i+64])
	}
	return words
}

// wordToInt decodes a 32-byte word holding a small unsigned integer.
func wordToInt(word string) (int64, bool) {
	trimmed := strings.TrimLeft(word, "0")
	if trimmed == "" {
		return 0, true
	}
	if len(trimmed) > 12 {
		return 0, false
	}
	var n int64
	for _, ch := range trimmed {
		var d int64
		switch {
		case ch >= '0' && ch <= '9':
			d = int64(ch - '0')
		case ch >= 'a' && ch <= 'f':
			d = int64(ch-'a') + 10
		default:
			return 0, false
		}
		n = n*16 + d
	}
	return n, true
}

// wordToAddress extracts the trailing 20 bytes of a 32-byte word.
func wordToAddress(word string) string {
	if len(word) != 64 {
		return ""
	}
	return "0x" + word[24:]
}
