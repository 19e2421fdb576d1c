// Package client is the transport edge of the controller: one websocket
// session to the simulation, strictly request/await-response. It implements
// pilot.Link; a single goroutine drives it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"voxelpilot.ai/internal/protocol"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

// Recorder receives a copy of every frame and action for offline replay.
type Recorder interface {
	Recv(tick uint64, raw []byte) error
	Send(tick uint64, v any) error
}

type Session struct {
	conn  *websocket.Conn
	hello protocol.HelloMsg
	state *protocol.StateMsg
	rec   Recorder
}

// Dial connects, consumes the handshake and blocks until the first state
// frame so State is never nil afterwards.
func Dial(ctx context.Context, url string) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	s := &Session{conn: conn}

	if err := s.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := s.Step(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("first state frame: %w", err)
	}
	return s, nil
}

func (s *Session) handshake() error {
	_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return fmt.Errorf("handshake: expected %q message", protocol.TypeHello)
	}
	if err := json.Unmarshal(msg, &s.hello); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	return nil
}

// SetRecorder attaches a session recorder. Pass nil to detach.
func (s *Session) SetRecorder(r Recorder) { s.rec = r }

func (s *Session) Hello() protocol.HelloMsg { return s.hello }

// State returns the latest observed frame. Frames are retained one at a
// time; older ones are discarded.
func (s *Session) State() *protocol.StateMsg { return s.state }

// Step blocks until the next state frame, skipping any other message types
// on the channel.
func (s *Session) Step(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		deadline := time.Now().Add(readTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = s.conn.SetReadDeadline(deadline)

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeState {
			continue
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(msg, &st); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		s.state = &st
		if s.rec != nil {
			_ = s.rec.Recv(st.Tick, msg)
		}
		return nil
	}
}

// Send marshals and writes one action.
func (s *Session) Send(ctx context.Context, action any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(action)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("send action: %w", err)
	}
	if s.rec != nil {
		var tick uint64
		if s.state != nil {
			tick = s.state.Tick
		}
		_ = s.rec.Send(tick, action)
	}
	return nil
}

func (s *Session) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return s.conn.Close()
}
