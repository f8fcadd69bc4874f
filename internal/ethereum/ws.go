package ethereum

import "context"

// StreamConn is one live pending-transaction subscription. The connection
// does not reconnect itself: when the socket fails, Notifications is closed
// and Err reports the cause, leaving the retry policy to the owner.
type StreamConn interface {
	// Notifications delivers pending transaction hashes. Closed when the
	// connection dies or Close is called.
	Notifications() <-chan string

	// Done is closed when the connection has fully shut down.
	Done() <-chan struct{}

	// Err returns the terminal error, nil after a clean Close.
	Err() error

	// Close unsubscribes and closes the socket.
	Close() error
}

// StreamDialer establishes pending-transaction subscriptions.
type StreamDialer interface {
	Dial(ctx context.Context) (StreamConn, error)
}
