package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/graphsock/graphsock/internal/id"
	"github.com/graphsock/graphsock/pkg/logging"
	"github.com/graphsock/graphsock/pkg/protocol"
	"github.com/graphsock/graphsock/pkg/transport"
)

// Callback receives pushed frames for one subscription. It is invoked
// from that subscription's delivery goroutine, one frame at a time, in
// the order the frames arrived on the transport. Keepalives and terminal
// frames are filtered out before it is called.
type Callback func(id string, msg *protocol.Message)

// stopDrainTimeout bounds the wait for the server's reply to a stop frame
// during Unsubscribe when no receive timeout is configured. The server may
// have nothing left to say for an identifier it already completed.
const stopDrainTimeout = 5 * time.Second

// record tracks one active subscription. Owned by the session; the
// frames queue is written by the reader and drained by the delivery loop.
type record struct {
	id       string
	callback Callback
	frames   chan *protocol.Message
	cancel   context.CancelFunc
	done     chan struct{}
}

// Session manages the subscription side of one GraphQL connection. It is
// constructed already connected; use Dial, or NewSession to wrap an
// existing transport. All methods are safe for concurrent use.
type Session struct {
	tr       transport.Transport
	log      *slog.Logger
	sid      string
	dialOpts []transport.DialOption

	recvTimeout      time.Duration
	deliveryInterval time.Duration
	queueSize        int

	mu          sync.Mutex
	subs        map[string]*record
	waiters     map[string]chan *protocol.Message
	initialized bool
	closed      bool

	// initMu serializes the handshake round trip so concurrent callers
	// cannot each send a connection_init and fight over the single ack.
	initMu sync.Mutex

	control    chan *protocol.Message
	readerDone chan struct{}
	readerErr  error
	stopReader context.CancelFunc
}

// Dial connects to a graphql-ws endpoint and returns a ready session.
// Connect failure is fatal and surfaces here, not deferred.
func Dial(ctx context.Context, url string, opts ...Option) (*Session, error) {
	s := newSession(opts...)

	tr, err := transport.Dial(ctx, url, s.dialOpts...)
	if err != nil {
		return nil, err
	}
	s.tr = tr
	s.startReader()
	return s, nil
}

// NewSession wraps an already-established transport.
func NewSession(tr transport.Transport, opts ...Option) *Session {
	s := newSession(opts...)
	s.tr = tr
	s.startReader()
	return s
}

func newSession(opts ...Option) *Session {
	s := &Session{
		log:        logging.Nop(),
		sid:        uuid.NewString(),
		queueSize:  16,
		subs:       make(map[string]*record),
		waiters:    make(map[string]chan *protocol.Message),
		control:    make(chan *protocol.Message, 8),
		readerDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.sid)
	return s
}

func (s *Session) startReader() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopReader = cancel
	go s.readLoop(ctx)
}

// readLoop is the single consumer of the transport. It decodes every
// incoming frame and routes it by identifier, so delivery loops never
// race on the shared receive call.
func (s *Session) readLoop(ctx context.Context) {
	defer close(s.readerDone)

	for {
		data, err := s.tr.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				return
			}
			s.readerErr = err
			s.log.Warn("transport receive failed", "error", err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// A malformed frame cannot be attributed to a subscription
			// once frames are demultiplexed; drop it and keep reading.
			s.log.Warn("dropping malformed frame", "error", err)
			continue
		}

		s.route(ctx, msg)
	}
}

func (s *Session) route(ctx context.Context, msg *protocol.Message) {
	if msg.IsKeepAlive() {
		return
	}

	if msg.ID == "" {
		// Connection-level frame: ack or connection_error. Hand it to
		// whichever control waiter is blocked, or drop it.
		select {
		case s.control <- msg:
		default:
			s.log.Debug("dropping unclaimed control frame", "type", msg.Type)
		}
		return
	}

	s.mu.Lock()
	if rec, ok := s.subs[msg.ID]; ok {
		s.mu.Unlock()
		select {
		case rec.frames <- msg:
		case <-rec.done:
		case <-ctx.Done():
		}
		return
	}
	if w, ok := s.waiters[msg.ID]; ok {
		delete(s.waiters, msg.ID)
		s.mu.Unlock()
		w <- msg
		return
	}
	s.mu.Unlock()

	s.log.Debug("dropping frame for unknown id", "id", msg.ID, "type", msg.Type)
}

// ConnectionInit performs the handshake: it sends connection_init with
// the optional headers and consumes one reply frame, which is treated as
// the acknowledgment without inspecting its content. The first successful
// call marks the session initialized; later calls return immediately, so
// invoking it before every operation stays harmless.
func (s *Session) ConnectionInit(ctx context.Context, headers map[string]string) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.send(ctx, protocol.NewConnectionInit(headers)); err != nil {
		return fmt.Errorf("connection_init: %w", err)
	}

	ack, err := s.awaitControl(ctx)
	if err != nil {
		return fmt.Errorf("connection_init: %w", err)
	}
	s.log.Debug("handshake acknowledged", "type", ack.Type)

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// Start generates a fresh identifier, sends a start frame carrying the
// payload, and returns the identifier without waiting for a reply.
func (s *Session) Start(ctx context.Context, payload *protocol.OperationPayload) (string, error) {
	sid := id.New()
	if err := s.sendStart(ctx, sid, payload); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *Session) sendStart(ctx context.Context, sid string, payload *protocol.OperationPayload) error {
	msg, err := protocol.NewStart(sid, payload)
	if err != nil {
		return err
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("start %s: %w", sid, err)
	}
	return nil
}

// Stop sends a stop frame for the identifier and returns the server's
// reply for it (a complete frame, by convention). Meaningful once the
// identifier's delivery loop has exited.
func (s *Session) Stop(ctx context.Context, sid string) (*protocol.Message, error) {
	w := s.addWaiter(sid)
	defer s.removeWaiter(sid)

	if err := s.send(ctx, protocol.NewStop(sid)); err != nil {
		return nil, fmt.Errorf("stop %s: %w", sid, err)
	}
	return s.awaitReply(ctx, sid, w)
}

// Query models an operation that expects exactly one reply: handshake,
// start, one correlated frame, stop. It blocks the caller until the reply
// arrives and returns the received frame.
func (s *Session) Query(ctx context.Context, query string, variables map[string]interface{}, headers map[string]string) (*protocol.Message, error) {
	if err := s.ConnectionInit(ctx, headers); err != nil {
		return nil, err
	}

	qid := id.New()
	w := s.addWaiter(qid)
	defer s.removeWaiter(qid)

	payload := &protocol.OperationPayload{Query: query, Variables: variables, Headers: headers}
	if err := s.sendStart(ctx, qid, payload); err != nil {
		return nil, err
	}

	reply, err := s.awaitReply(ctx, qid, w)
	if err != nil {
		return nil, err
	}

	if _, err := s.Stop(ctx, qid); err != nil {
		s.log.Debug("stop after query failed", "id", qid, "error", err)
	}
	return reply, nil
}

// Subscribe starts a subscription and spawns its delivery loop. The
// callback receives every non-keepalive frame for the returned identifier
// until Unsubscribe, Close, or a terminal frame from the server. A nil
// callback logs the frames instead.
func (s *Session) Subscribe(ctx context.Context, query string, variables map[string]interface{}, headers map[string]string, callback Callback) (string, error) {
	if err := s.ConnectionInit(ctx, headers); err != nil {
		return "", err
	}

	if callback == nil {
		callback = s.logFrame
	}

	sid := id.New()
	loopCtx, cancel := context.WithCancel(context.Background())
	rec := &record{
		id:       sid,
		callback: callback,
		frames:   make(chan *protocol.Message, s.queueSize),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return "", ErrSessionClosed
	}
	// Register before sending so the first pushed frame cannot slip past
	// the demultiplexer.
	s.subs[sid] = rec
	s.mu.Unlock()

	payload := &protocol.OperationPayload{Query: query, Variables: variables, Headers: headers}
	if err := s.sendStart(ctx, sid, payload); err != nil {
		s.removeRecord(sid)
		cancel()
		// No delivery loop will run for this record; release anyone
		// joining on it (Close may have snapshotted the registry in the
		// window between registration and this cleanup).
		close(rec.done)
		return "", err
	}

	go s.deliverLoop(loopCtx, rec)

	s.log.Debug("subscription started", "id", sid)
	return sid, nil
}

// deliverLoop dispatches routed frames to the callback until cancelled or
// the server ends the subscription. Terminal frames end the loop exactly
// once; keepalives never reach the callback.
func (s *Session) deliverLoop(ctx context.Context, rec *record) {
	defer close(rec.done)
	defer s.removeRecord(rec.id)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.readerDone:
			s.drainQueued(ctx, rec)
			return
		case msg := <-rec.frames:
			if msg.IsKeepAlive() {
				continue
			}
			if msg.IsTerminal() {
				s.log.Info("subscription ended by server", "id", rec.id, "type", msg.Type)
				return
			}

			rec.callback(rec.id, msg)

			if s.deliveryInterval > 0 {
				t := time.NewTimer(s.deliveryInterval)
				select {
				case <-t.C:
				case <-ctx.Done():
					t.Stop()
					return
				}
			}
		}
	}
}

// drainQueued flushes frames the reader routed before it exited, so data
// that already reached this subscription's queue is dispatched instead of
// dropped nondeterministically. Explicit cancellation still wins.
func (s *Session) drainQueued(ctx context.Context, rec *record) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case msg := <-rec.frames:
			if msg.IsKeepAlive() {
				continue
			}
			if msg.IsTerminal() {
				s.log.Info("subscription ended by server", "id", rec.id, "type", msg.Type)
				return
			}
			rec.callback(rec.id, msg)
		default:
			return
		}
	}
}

// Unsubscribe cancels the delivery loop for the identifier, waits for it
// to fully exit, then informs the server with a stop frame and drains the
// reply. After it returns no further callback runs for the identifier.
// Unknown identifiers are a no-op, so stopping twice is harmless.
func (s *Session) Unsubscribe(ctx context.Context, sid string) error {
	s.mu.Lock()
	rec, ok := s.subs[sid]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	rec.cancel()
	<-rec.done

	// The server may have completed the subscription on its own already,
	// in which case it has no reply left for this id; bound the drain.
	drainCtx := ctx
	if s.recvTimeout == 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(ctx, stopDrainTimeout)
		defer cancel()
	}
	if _, err := s.Stop(drainCtx, sid); err != nil {
		s.log.Debug("stop after unsubscribe failed", "id", sid, "error", err)
	}

	s.log.Debug("subscription stopped", "id", sid)
	return nil
}

// Close cancels and joins every active delivery loop, then closes the
// transport. The session cannot be reused afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	recs := make([]*record, 0, len(s.subs))
	for _, rec := range s.subs {
		recs = append(recs, rec)
	}
	s.mu.Unlock()

	for _, rec := range recs {
		rec.cancel()
	}
	for _, rec := range recs {
		<-rec.done
	}

	s.stopReader()
	err := s.tr.Close()
	<-s.readerDone

	s.log.Debug("session closed")
	return err
}

// Running reports whether the identifier has an active delivery loop.
func (s *Session) Running(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[sid]
	return ok
}

// ID returns the session's correlation identifier used in log records.
func (s *Session) ID() string {
	return s.sid
}

func (s *Session) send(ctx context.Context, msg *protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return s.tr.Send(ctx, data)
}

// awaitControl blocks for one connection-level frame.
func (s *Session) awaitControl(ctx context.Context) (*protocol.Message, error) {
	ctx, cancel := s.withRecvTimeout(ctx)
	defer cancel()

	select {
	case msg := <-s.control:
		return msg, nil
	case <-s.readerDone:
		return nil, s.readerFailure()
	case <-ctx.Done():
		return nil, s.waitErr(ctx)
	}
}

// awaitReply blocks for the frame correlated to the identifier.
func (s *Session) awaitReply(ctx context.Context, sid string, w chan *protocol.Message) (*protocol.Message, error) {
	ctx, cancel := s.withRecvTimeout(ctx)
	defer cancel()

	select {
	case msg := <-w:
		return msg, nil
	case <-s.readerDone:
		return nil, s.readerFailure()
	case <-ctx.Done():
		return nil, s.waitErr(ctx)
	}
}

func (s *Session) addWaiter(sid string) chan *protocol.Message {
	w := make(chan *protocol.Message, 1)
	s.mu.Lock()
	s.waiters[sid] = w
	s.mu.Unlock()
	return w
}

func (s *Session) removeWaiter(sid string) {
	s.mu.Lock()
	delete(s.waiters, sid)
	s.mu.Unlock()
}

func (s *Session) removeRecord(sid string) {
	s.mu.Lock()
	delete(s.subs, sid)
	s.mu.Unlock()
}

func (s *Session) withRecvTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.recvTimeout > 0 {
		return context.WithTimeout(ctx, s.recvTimeout)
	}
	return ctx, func() {}
}

func (s *Session) waitErr(ctx context.Context) error {
	if s.recvTimeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v", ErrReceiveTimeout, s.recvTimeout)
	}
	return ctx.Err()
}

func (s *Session) readerFailure() error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}
	if s.readerErr != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, s.readerErr)
	}
	return ErrConnectionLost
}

// logFrame is the default callback: it logs non-keepalive frames.
func (s *Session) logFrame(sid string, msg *protocol.Message) {
	s.log.Info("subscription frame", "id", sid, "type", msg.Type, "payload", string(msg.Payload))
}
