// Package session implements the exchange session state machine:
// Connecting → Subscribing → Validating → Running, with exponential
// backoff reconnection on terminal errors, per spec.md §4.6. Grounded
// on the teacher's WSClient.Connect/readMessages/handleReconnect loop
// (market/websocket_client.go), generalized from one hardcoded venue to
// any adapter satisfying the Transformer/Validator contracts.
package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketfeed/exchange"
	"marketfeed/metrics"
	"marketfeed/model"
	"marketfeed/validator"
	"marketfeed/wire"
)

// Transformer converts one decoded wire frame into a normalized event.
// Both transform.StatelessTransformer and transform.BookTransformer
// satisfy this shape already; Session depends on the shape, not the
// concrete type, so either slots in without an adapter layer.
type Transformer[F any, E any] interface {
	Transform(exchangeTime time.Time, frame F) (model.MarketEvent[E], bool, *wire.Error)
}

// Config wires one adapter's capability set into the generic session
// loop. Ack is the adapter's subscription-response type (implements
// validator.Validator); Frame is its stream-frame type; Event is the
// normalized payload the Transformer produces.
type Config[Ack validator.Validator, Frame any, Event any] struct {
	Exchange model.ExchangeId
	Stream   model.StreamKind

	URL                   string
	SubscriptionRequests  []interface{} // one or more messages written in order after connect
	ExpectedResponses     int
	ValidationTimeout     time.Duration
	InflateGzip           bool
	Ping                  exchange.PingPayload // Interval <= 0 disables the ping task

	// InboundControl inspects each raw, post-gzip JSON payload before it is
	// decoded into Frame. A venue that pings the client rather than the
	// reverse (HTX) uses this to recognize its heartbeat and hand back the
	// matching reply; handled reports whether the payload was a control
	// message (in which case it is never decoded into Frame or passed to
	// Transformer). reply is written verbatim via conn.WriteJSON when
	// non-nil. nil disables the hook.
	InboundControl func(payload []byte) (reply interface{}, handled bool)

	Transformer    Transformer[Frame, Event]
	ExchangeTimeOf func(frame Frame) time.Time // nil defaults to time.Now() at receipt

	BufferSize  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// Session runs one adapter's Connecting→Subscribing→Validating→Running
// loop and reconnects with backoff on terminal errors.
type Session[Ack validator.Validator, Frame any, Event any] struct {
	cfg      Config[Ack, Frame, Event]
	dial     Dialer
	log      zerolog.Logger
	recorder *metrics.SessionRecorder
}

// New builds a Session. dial is typically DefaultDialer in production and
// a fake in tests.
func New[Ack validator.Validator, Frame any, Event any](cfg Config[Ack, Frame, Event], dial Dialer, log zerolog.Logger) *Session[Ack, Frame, Event] {
	return &Session[Ack, Frame, Event]{
		cfg:  cfg,
		dial: dial,
		log: log.With().
			Str("exchange", cfg.Exchange.String()).
			Str("stream", cfg.Stream.String()).
			Logger(),
		recorder: metrics.NewSessionRecorder(cfg.Exchange.String(), cfg.Stream.String()),
	}
}

// Run performs the first Connecting→Subscribing→Validating cycle
// synchronously — per spec.md §4.6, a transport or subscribe failure on
// this very first attempt is fatal and reported to the caller — then
// spawns the Running/Backoff loop as a background goroutine and returns
// the outbound channel.
func (s *Session[Ack, Frame, Event]) Run(ctx context.Context) (<-chan Output[Event], *wire.Error) {
	conn, err := s.connectSubscribeValidate(ctx)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordConnection(true)

	out := make(chan Output[Event], s.bufferSize())
	go s.loop(ctx, conn, out)
	return out, nil
}

func (s *Session[Ack, Frame, Event]) bufferSize() int {
	if s.cfg.BufferSize <= 0 {
		return 256
	}
	return s.cfg.BufferSize
}

// loop owns Running and Backoff. Every terminal error from pump re-enters
// Backoff; a nil return means the context was cancelled or the consumer
// stopped reading, and the loop exits for good.
func (s *Session[Ack, Frame, Event]) loop(ctx context.Context, conn wire.Conn, out chan Output[Event]) {
	defer close(out)

	attempts := 0
	for {
		s.recorder.RecordRunning()
		pingStop := s.startPing(conn)
		resetAttempts := false
		terminal := s.pump(ctx, conn, out, &resetAttempts)
		pingStop()
		conn.Close()
		s.recorder.RecordStopped()

		if resetAttempts {
			attempts = 0
		}
		if terminal == nil {
			return
		}

		s.log.Error().Err(terminal).Msg("session terminated, entering backoff")
		s.recorder.RecordReconnect()
		if !s.send(ctx, out, Output[Event]{Status: statusEvent(s.cfg.Exchange, s.cfg.Stream, model.Disconnected)}) {
			return
		}

		newConn, ok := s.reconnectUntilSuccess(ctx, &attempts)
		if !ok {
			return
		}
		conn = newConn
		s.recorder.RecordConnection(true)
		if !s.send(ctx, out, Output[Event]{Status: statusEvent(s.cfg.Exchange, s.cfg.Stream, model.Connected)}) {
			return
		}
	}
}

// reconnectUntilSuccess sleeps the backoff curve between attempts, treating
// every failure (transport or Subscribe ack rejection) as a retry rather
// than fatal, per spec.md §7's "on later reconnects: treat as
// reconnect-retry" note for Subscribe errors.
func (s *Session[Ack, Frame, Event]) reconnectUntilSuccess(ctx context.Context, attempts *int) (wire.Conn, bool) {
	for {
		wait := backoff(*attempts, s.backoffBase(), s.backoffCap())
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(wait):
		}
		*attempts++

		conn, err := s.connectSubscribeValidate(ctx)
		if err == nil {
			return conn, true
		}
		s.log.Warn().Err(err).Msg("reconnect attempt failed")
		s.recorder.RecordConnection(false)
	}
}

func (s *Session[Ack, Frame, Event]) backoffBase() time.Duration {
	if s.cfg.BackoffBase <= 0 {
		return 125 * time.Millisecond
	}
	return s.cfg.BackoffBase
}

func (s *Session[Ack, Frame, Event]) backoffCap() time.Duration {
	if s.cfg.BackoffCap <= 0 {
		return 60 * time.Second
	}
	return s.cfg.BackoffCap
}

// pump reads and transforms frames until a terminal error, context
// cancellation, or consumer disconnection. *resetAttempts is set true on
// the first successfully emitted event, per spec.md §4.6's "attempts
// counter resets on a successful connect + first event".
func (s *Session[Ack, Frame, Event]) pump(ctx context.Context, conn wire.Conn, out chan<- Output[Event], resetAttempts *bool) *wire.Error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, skip, rerr := wire.ReadRaw(conn, s.cfg.InflateGzip)
		if skip {
			continue
		}
		if rerr != nil {
			if rerr.Kind == wire.KindDeserialise {
				s.recorder.RecordRecoverableError("deserialise")
				s.log.Warn().Err(rerr).Msg("deserialise error, continuing")
				continue
			}
			return rerr
		}

		if s.cfg.InboundControl != nil {
			if reply, handled := s.cfg.InboundControl(payload); handled {
				if reply != nil {
					if err := conn.WriteJSON(reply); err != nil {
						return wire.NewWebSocketDisconnected(err)
					}
				}
				continue
			}
		}

		frame := wire.DecodeFrame[Frame](payload)
		if frame.Err != nil {
			if frame.Err.Kind == wire.KindDeserialise {
				s.recorder.RecordRecoverableError("deserialise")
				s.log.Warn().Err(frame.Err).Msg("deserialise error, continuing")
				continue
			}
			return frame.Err
		}

		exchangeTime := time.Now()
		if s.cfg.ExchangeTimeOf != nil {
			exchangeTime = s.cfg.ExchangeTimeOf(*frame.Value)
		}

		event, ok, terr := s.cfg.Transformer.Transform(exchangeTime, *frame.Value)
		if terr != nil {
			switch terr.Kind {
			case wire.KindInvalidSequence:
				return terr
			case wire.KindOrderBookFindError:
				s.recorder.RecordRecoverableError("orderbook_find")
				s.log.Warn().Err(terr).Msg("order book find error, skipping frame")
				continue
			default:
				s.recorder.RecordRecoverableError("transform")
				s.log.Warn().Err(terr).Msg("recoverable transform error, skipping frame")
				continue
			}
		}
		if !ok {
			continue
		}

		*resetAttempts = true
		s.recorder.RecordEventEmitted()
		s.recorder.RecordEventLag(event.Instrument.String(), event.ExchangeTime, event.ReceivedTime)
		if !s.send(ctx, out, Output[Event]{Event: &event}) {
			return nil
		}
	}
}

// send delivers val, dropping the oldest queued value when out is at
// capacity (SPEC_FULL.md §10's bounded-channel Open Question decision).
// It reports false only when ctx is cancelled, signaling the consumer
// has stopped reading.
func (s *Session[Ack, Frame, Event]) send(ctx context.Context, out chan<- Output[Event], val Output[Event]) bool {
	select {
	case out <- val:
		return true
	case <-ctx.Done():
		return false
	default:
	}

	select {
	case <-out:
		s.recorder.RecordEventDropped()
		s.log.Warn().Msg("outbound channel full, dropped oldest queued value")
	default:
	}

	select {
	case out <- val:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Session[Ack, Frame, Event]) startPing(conn wire.Conn) func() {
	if s.cfg.Ping.Interval <= 0 || s.cfg.Ping.Message == nil {
		return func() {}
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.cfg.Ping.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := conn.WriteJSON(s.cfg.Ping.Message); err != nil {
					return
				}
			}
		}
	}()
	return func() { close(stop) }
}

func (s *Session[Ack, Frame, Event]) connectSubscribeValidate(ctx context.Context) (wire.Conn, *wire.Error) {
	conn, err := s.dial(ctx, s.cfg.URL)
	if err != nil {
		return nil, wire.NewWebSocketDisconnected(err)
	}

	for _, req := range s.cfg.SubscriptionRequests {
		if err := conn.WriteJSON(req); err != nil {
			conn.Close()
			return nil, wire.NewWebSocketDisconnected(err)
		}
	}

	validated, verr := validator.Validate[Ack](conn, s.cfg.ExpectedResponses, s.cfg.ValidationTimeout, s.cfg.InflateGzip)
	if verr != nil {
		conn.Close()
		return nil, verr
	}
	return validated, nil
}

func statusEvent(exchangeID model.ExchangeId, stream model.StreamKind, state model.ConnectionState) *model.MarketEvent[model.ConnectionStatus] {
	evt := model.NewMarketEvent(time.Now(), exchangeID, model.Instrument{}, model.ConnectionStatus{State: state, Stream: stream})
	return &evt
}
