package ethereum

// Transaction is the subset of an Ethereum transaction the engine consumes.
// Quantity fields keep the node's hex encoding; use the unit helpers to
// normalize them.
type Transaction struct {
	Hash                 string  `json:"hash"`
	From                 string  `json:"from"`
	To                   *string `json:"to"` // nil for contract creation
	Value                string  `json:"value"`
	GasPrice             *string `json:"gasPrice"` // legacy transactions
	MaxFeePerGas         *string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *string `json:"maxPriorityFeePerGas"`
	Nonce                string  `json:"nonce"`
	Input                string  `json:"input"`
}

// Recipient returns the lowercase "to" address, or "" for contract creation.
func (t *Transaction) Recipient() string {
	if t.To == nil {
		return ""
	}
	return lowerHex(*t.To)
}

// MethodSelector returns the 4-byte calldata selector ("0x"-prefixed
// lowercase), or "" when the input carries no selector.
func (t *Transaction) MethodSelector() string {
	if len(t.Input) < 10 {
		return ""
	}
	return lowerHex(t.Input[:10])
}

// GasPriceGwei returns the effective gas price in gwei. EIP-1559
// transactions fall back to maxFeePerGas. The second return is false when
// neither field is present or decodable.
func (t *Transaction) GasPriceGwei() (float64, bool) {
	if t.GasPrice != nil {
		if g, err := HexToGwei(*t.GasPrice); err == nil {
			return g, true
		}
	}
	if t.MaxFeePerGas != nil {
		if g, err := HexToGwei(*t.MaxFeePerGas); err == nil {
			return g, true
		}
	}
	return 0, false
}

// ValueEther returns the transferred value in ether, 0 if not decodable.
func (t *Transaction) ValueEther() float64 {
	v, err := HexToEther(t.Value)
	if err != nil {
		return 0
	}
	return v
}

// Block is the subset of an Ethereum block the engine consumes.
// Transactions is populated only when the block was requested with full
// transaction objects.
type Block struct {
	Number        string        `json:"number"`
	Hash          string        `json:"hash"`
	Timestamp     string        `json:"timestamp"`
	BaseFeePerGas string        `json:"baseFeePerGas"`
	Transactions  []Transaction `json:"transactions"`
}

// NumberInt returns the block height, 0 for the pending pseudo-block.
func (b *Block) NumberInt() int64 {
	n, err := HexToInt64(b.Number)
	if err != nil {
		return 0
	}
	return n
}

// TimestampUnix returns the block timestamp in seconds, 0 if not decodable.
func (b *Block) TimestampUnix() int64 {
	ts, err := HexToInt64(b.Timestamp)
	if err != nil {
		return 0
	}
	return ts
}

// BaseFeeGwei returns the block base fee in gwei, 0 if absent.
func (b *Block) BaseFeeGwei() float64 {
	fee, err := HexToGwei(b.BaseFeePerGas)
	if err != nil {
		return 0
	}
	return fee
}
