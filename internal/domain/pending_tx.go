package domain

// UnknownToken is used when a transaction's traded pair cannot be decoded.
const UnknownToken = "UNKNOWN"

// PendingTransaction is one observed not-yet-confirmed DEX transaction.
// Created and owned by the mempool subscriber; immutable once created.
type PendingTransaction struct {
	Hash           string
	From           string
	To             string
	GasPrice       float64 // gwei
	Value          float64 // ether
	MethodSelector string  // 4-byte selector, "0x"-prefixed lowercase
	TokenIn        string  // inferred, UnknownToken if not decodable
	TokenOut       string  // inferred, UnknownToken if not decodable
	ObservedAt     int64   // Unix timestamp in milliseconds
	Suspicious     bool    // gas price well above the triggering request's
}

// Pair returns the transaction's normalized "IN/OUT" pair string.
func (p PendingTransaction) Pair() string {
	return NormalizePair(p.TokenIn, p.TokenOut)
}

// PairKnown reports whether the traded pair could be decoded.
func (p PendingTransaction) PairKnown() bool {
	return p.TokenIn != UnknownToken || p.TokenOut != UnknownToken
}
