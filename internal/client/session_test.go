package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelpilot.ai/internal/client"
	"voxelpilot.ai/internal/protocol"
)

var upgrader = websocket.Upgrader{}

// fakeServer speaks the agent channel: hello on connect, then a state frame
// per Step, echoing a tick for every action received.
type fakeServer struct {
	ts      *httptest.Server
	actions chan []byte
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{actions: make(chan []byte, 64)}

	mux := http.NewServeMux()
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello := protocol.HelloMsg{
			Type:    protocol.TypeHello,
			Version: "1.0",
			Capabilities: protocol.Capabilities{
				Actions: []string{protocol.TypeActionLook, protocol.TypeActionMove},
				TickMs:  50,
			},
		}
		if err := conn.WriteJSON(hello); err != nil {
			return
		}

		tick := uint64(0)
		writeState := func() error {
			tick++
			return conn.WriteJSON(protocol.StateMsg{
				Type:    protocol.TypeState,
				Tick:    tick,
				Pose:    protocol.Pose{X: 0.5, Y: 66.62, Z: 0.5},
				Raycast: protocol.RaycastObs{HitType: protocol.HitNone},
				UIState: protocol.UIState{OnGround: true},
			})
		}
		// First frame right after the handshake.
		if err := writeState(); err != nil {
			return
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fs.actions <- msg
			if err := writeState(); err != nil {
				return
			}
		}
	})

	fs.ts = httptest.NewServer(mux)
	t.Cleanup(fs.ts.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.ts.URL, "http") + "/agent"
}

func TestDial_HandshakeAndFirstFrame(t *testing.T) {
	fs := newFakeServer(t)

	sess, err := client.Dial(context.Background(), fs.url())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sess.Close()

	if sess.Hello().Version != "1.0" {
		t.Fatalf("hello = %+v", sess.Hello())
	}
	st := sess.State()
	if st == nil || st.Tick != 1 {
		t.Fatalf("first state = %+v", st)
	}
}

func TestSession_SendAndStep(t *testing.T) {
	fs := newFakeServer(t)

	ctx := context.Background()
	sess, err := client.Dial(ctx, fs.url())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sess.Close()

	if err := sess.Send(ctx, protocol.Look(-45, 10)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := sess.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}
	if sess.State().Tick != 2 {
		t.Fatalf("tick = %d, want 2", sess.State().Tick)
	}

	select {
	case raw := <-fs.actions:
		var look protocol.LookAction
		if err := json.Unmarshal(raw, &look); err != nil {
			t.Fatalf("decode action: %v", err)
		}
		if look.Type != protocol.TypeActionLook || look.Yaw != -45 {
			t.Fatalf("action = %+v", look)
		}
	case <-time.After(time.Second):
		t.Fatalf("server never saw the action")
	}
}

func TestStep_ContextDeadline(t *testing.T) {
	fs := newFakeServer(t)

	sess, err := client.Dial(context.Background(), fs.url())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sess.Close()

	// No action sent, so no further frame comes. The read must give up at
	// the context deadline instead of hanging.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := sess.Step(ctx); err == nil {
		t.Fatalf("expected deadline error")
	}
}

func TestDial_RejectsNonHelloGreeting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{"type": "state", "tick": 1})
		time.Sleep(100 * time.Millisecond)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/agent"
	if _, err := client.Dial(context.Background(), url); err == nil {
		t.Fatalf("expected handshake failure")
	}
}

type memRecorder struct {
	recv int
	sent int
}

func (m *memRecorder) Recv(tick uint64, raw []byte) error { m.recv++; return nil }
func (m *memRecorder) Send(tick uint64, v any) error      { m.sent++; return nil }

func TestSession_RecorderSeesTraffic(t *testing.T) {
	fs := newFakeServer(t)

	ctx := context.Background()
	sess, err := client.Dial(ctx, fs.url())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer sess.Close()

	rec := &memRecorder{}
	sess.SetRecorder(rec)

	if err := sess.Send(ctx, protocol.Jump()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := sess.Step(ctx); err != nil {
		t.Fatalf("step: %v", err)
	}
	if rec.sent != 1 || rec.recv != 1 {
		t.Fatalf("recorder saw sent=%d recv=%d", rec.sent, rec.recv)
	}
}
