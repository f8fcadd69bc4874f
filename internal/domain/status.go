package domain

import "time"

// SubscriberStatus is the read-only health view of the stream subscriber.
type SubscriberStatus struct {
	Connected     bool
	Source        string // active source name, e.g. "ws:newPendingTransactions"
	BufferedCount int
	LastUpdateAge time.Duration // age of the most recent buffer update
}
