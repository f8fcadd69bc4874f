package snapshot

import (
	"mev-sentinel/internal/ethereum"
	"mev-sentinel/internal/gasoracle"
	"mev-sentinel/internal/mempool"
)

// DefaultChain builds the five acquisition strategies in priority order:
// live stream, premium provider, pending block, recent blocks, baseline.
func DefaultChain(sub *mempool.Subscriber, oracle *gasoracle.Client, rpc ethereum.RPCClient, classifier *mempool.Classifier) []Source {
	return []Source{
		NewStreamSource(sub, DefaultStalenessWindow),
		NewOracleSource(oracle),
		NewPendingSource(rpc, classifier),
		NewRecentSource(rpc, DefaultRecentBlockCount),
		NewBaselineSource(),
	}
}
