package ethereum

import "context"

// RPCClient defines the Ethereum JSON-RPC surface the engine consumes.
type RPCClient interface {
	// GetTransactionByHash returns the transaction, or nil if not found.
	GetTransactionByHash(ctx context.Context, hash string) (*Transaction, error)

	// GetPendingBlock returns the node's pending pseudo-block with full
	// transaction objects.
	GetPendingBlock(ctx context.Context) (*Block, error)

	// GetBlockByNumber returns a confirmed block. Transactions are included
	// only when fullTx is true.
	GetBlockByNumber(ctx context.Context, number int64, fullTx bool) (*Block, error)

	// BlockNumber returns the current chain head height.
	BlockNumber(ctx context.Context) (int64, error)
}
