package stream

import (
	"context"
	"encoding/json"
	"time"

	"highbuy-monitor/internal/infra/backoff"
	logging "highbuy-monitor/internal/infra/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is one phase of the connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	AwaitingConfirmation
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventHandler receives the attribute map of each data-bearing frame.
type EventHandler func(events map[string][]string)

// Subscriber owns the single reconnecting websocket connection to the node,
// issues the subscribe request and routes data frames to its handler. It
// retries forever; there is no terminal failure state.
type Subscriber struct {
	url     string
	query   string
	handler EventHandler
	backoff *backoff.Backoff
	dialer  *websocket.Dialer

	state State
}

func NewSubscriber(url string, reconnectBase, reconnectMax time.Duration, handler EventHandler) *Subscriber {
	return &Subscriber{
		url:     url,
		query:   SubscribeQuery,
		handler: handler,
		backoff: backoff.New(reconnectBase, reconnectMax),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

// Run drives the connection state machine until ctx is cancelled. Exactly
// one connection is active at a time; the previous connection is fully
// closed before the next dial.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		s.state = Connecting
		logging.LogInfo("Connecting to event stream", zap.String("url", s.url))

		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.state = Closed
			logging.LogWarn("Event stream dial failed", zap.Error(err))
		} else {
			s.runConnection(ctx, conn)
			s.state = Closed
		}

		if ctx.Err() != nil {
			return
		}

		delay := s.backoff.Next()
		logging.LogInfo("Reconnecting after delay", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runConnection handles one connection from subscribe to close. The caller
// owns the reconnect decision; this always returns with conn closed.
func (s *Subscriber) runConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Unblock the read loop when the context is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := conn.WriteJSON(newSubscribeRequest(s.query)); err != nil {
		logging.LogWarn("Failed to send subscribe request", zap.Error(err))
		return
	}
	s.state = AwaitingConfirmation
	logging.LogInfo("Subscribe request sent", zap.String("query", s.query))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logging.LogWarn("Event stream closed", zap.Error(err))
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			logging.LogDebug("Skipping unparseable frame", zap.Error(err))
			continue
		}

		s.handleFrame(&f)
	}
}

func (s *Subscriber) handleFrame(f *frame) {
	if f.Error != nil {
		logging.LogWarn("Event stream error frame",
			zap.Int("code", f.Error.Code),
			zap.String("message", f.Error.Message),
			zap.String("data", f.Error.Data))
		return
	}

	if f.isData() {
		// Some transports never send an explicit ack; the first data
		// frame confirms the subscription just as well.
		if s.state != Streaming {
			s.confirm("first event received")
		}
		if len(f.Result.Events) == 0 {
			return
		}
		if s.handler != nil {
			s.handler(f.Result.Events)
		}
		return
	}

	if s.state == AwaitingConfirmation && f.isAck() {
		s.confirm("ack received")
	}
}

func (s *Subscriber) confirm(reason string) {
	s.state = Streaming
	s.backoff.Reset()
	logging.LogSuccess("Subscription confirmed", zap.String("reason", reason))
}
