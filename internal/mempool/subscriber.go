package mempool

import (
	"context"
	"log"
	"sync"
	"time"

	"mev-sentinel/internal/domain"
	"mev-sentinel/internal/ethereum"
	"mev-sentinel/internal/observability"
)

// State is the subscriber connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateReconnecting
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// TxLookup resolves a notified hash into a full transaction.
type TxLookup interface {
	GetTransactionByHash(ctx context.Context, hash string) (*ethereum.Transaction, error)
}

// SubscriberConfig configures the stream subscriber.
type SubscriberConfig struct {
	// RetryCap bounds consecutive failed connection attempts. Once reached
	// the subscriber stays disconnected until Reset.
	RetryCap int
	// ReconnectDelay is the fixed wait between attempts.
	ReconnectDelay time.Duration
	// LookupTimeout bounds each per-hash transaction lookup.
	LookupTimeout time.Duration
	// SourceName is reported in the status query.
	SourceName string
}

// DefaultSubscriberConfig returns the default subscriber configuration.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		RetryCap:       5,
		ReconnectDelay: 5 * time.Second,
		LookupTimeout:  3 * time.Second,
		SourceName:     "ws:newPendingTransactions",
	}
}

// Subscriber owns the pending-transaction subscription and the shared
// record buffer. Socket failures are absorbed by a bounded reconnect loop
// and never surface to request handling.
type Subscriber struct {
	dialer     ethereum.StreamDialer
	lookup     TxLookup
	classifier *Classifier
	buffer     *Buffer
	config     SubscriberConfig
	logger     *log.Logger

	mu           sync.Mutex
	state        State
	retries      int
	lastActivity time.Time
	resetCh      chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// onStateChange, when set, observes every transition (used by metrics).
	onStateChange func(State)
}

// NewSubscriber creates a subscriber writing into the given buffer.
func NewSubscriber(dialer ethereum.StreamDialer, lookup TxLookup, buffer *Buffer, config SubscriberConfig, logger *log.Logger) *Subscriber {
	if config.RetryCap <= 0 {
		config.RetryCap = DefaultSubscriberConfig().RetryCap
	}
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = DefaultSubscriberConfig().ReconnectDelay
	}
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = DefaultSubscriberConfig().LookupTimeout
	}
	if config.SourceName == "" {
		config.SourceName = DefaultSubscriberConfig().SourceName
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Subscriber{
		dialer:     dialer,
		lookup:     lookup,
		classifier: NewClassifier(),
		buffer:     buffer,
		config:     config,
		logger:     logger,
		resetCh:    make(chan struct{}, 1),
	}
}

// SetStateObserver registers a callback invoked on every state transition.
// Must be called before Start.
func (s *Subscriber) SetStateObserver(fn func(State)) {
	s.onStateChange = fn
}

// Start launches the background subscription loop.
func (s *Subscriber) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Close tears down the socket and stops the background loop.
func (s *Subscriber) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.setState(StateDisconnected)
}

// Reset zeroes the retry counter and re-arms a subscriber that exhausted
// its retry cap.
func (s *Subscriber) Reset() {
	s.mu.Lock()
	s.retries = 0
	s.mu.Unlock()

	select {
	case s.resetCh <- struct{}{}:
	default:
	}
}

// State returns the current connection state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the read-only health view.
func (s *Subscriber) Status() domain.SubscriberStatus {
	s.mu.Lock()
	state := s.state
	lastActivity := s.lastActivity
	s.mu.Unlock()

	var age time.Duration
	if !lastActivity.IsZero() {
		age = time.Since(lastActivity)
	}

	return domain.SubscriberStatus{
		Connected:     state == StateSubscribed,
		Source:        s.config.SourceName,
		BufferedCount: s.buffer.Len(),
		LastUpdateAge: age,
	}
}

// Records returns an immutable copy of the buffered records, newest first.
func (s *Subscriber) Records() []domain.PendingTransaction {
	return s.buffer.Snapshot()
}

func (s *Subscriber) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed && s.onStateChange != nil {
		s.onStateChange(state)
	}
}

func (s *Subscriber) touchActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// run is the subscription state machine: Connecting -> Subscribed ->
// (on error) Reconnecting, back to Connecting after a fixed delay, until
// the retry cap is hit; then Disconnected until Reset.
func (s *Subscriber) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		s.setState(StateConnecting)
		conn, err := s.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Printf("[subscriber] connect failed: %v", err)
			if !s.backoff(ctx) {
				return
			}
			continue
		}

		s.setState(StateSubscribed)
		s.touchActivity()
		s.mu.Lock()
		s.retries = 0
		s.mu.Unlock()
		s.logger.Printf("[subscriber] subscribed to pending transactions")

		s.consume(ctx, conn)

		if ctx.Err() != nil {
			conn.Close()
			return
		}

		if err := conn.Err(); err != nil {
			s.logger.Printf("[subscriber] stream lost: %v", err)
		}
		if !s.backoff(ctx) {
			return
		}
	}
}

// backoff counts a failed attempt and waits the reconnect delay. When the
// retry cap is reached it parks in Disconnected until Reset fires.
// Returns false only when the context is cancelled.
func (s *Subscriber) backoff(ctx context.Context) bool {
	s.mu.Lock()
	s.retries++
	retries := s.retries
	s.mu.Unlock()
	observability.RecordReconnect()

	if retries >= s.config.RetryCap {
		s.logger.Printf("[subscriber] retry cap %d reached, degrading until reset", s.config.RetryCap)
		s.setState(StateDisconnected)
		select {
		case <-ctx.Done():
			return false
		case <-s.resetCh:
			return true
		}
	}

	s.setState(StateReconnecting)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.config.ReconnectDelay):
		return true
	}
}

// consume drains hash notifications until the connection dies.
func (s *Subscriber) consume(ctx context.Context, conn ethereum.StreamConn) {
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case hash, ok := <-conn.Notifications():
			if !ok {
				return
			}
			s.touchActivity()
			s.handleHash(ctx, hash)
		}
	}
}

// handleHash resolves, classifies and buffers one notified transaction.
// Transient lookup failures drop the hash silently; they must not kill
// the stream.
func (s *Subscriber) handleHash(ctx context.Context, hash string) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	tx, err := s.lookup.GetTransactionByHash(lookupCtx, hash)
	if err != nil || tx == nil {
		return
	}

	if !s.classifier.IsSwap(tx.Recipient(), tx.MethodSelector()) {
		return
	}

	record, ok := s.classifier.Normalize(tx, time.Now().UnixMilli(), 0)
	if !ok {
		return
	}

	s.buffer.Insert(record)
	observability.UpdateBufferedRecords(s.buffer.Len())
}
