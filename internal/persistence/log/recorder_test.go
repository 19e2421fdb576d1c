package log_test

import (
	"encoding/json"
	"testing"

	logrec "voxelpilot.ai/internal/persistence/log"
	"voxelpilot.ai/internal/protocol"
)

func TestRecorder_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := logrec.NewRecorder(dir, "test")

	frame := []byte(`{"type":"state","tick":5,"pose":{"x":0,"y":65,"z":0,"yaw":0,"pitch":0},"raycast":{"hit_type":"none"},"ui_state":{"on_ground":true,"hotbar_selected":0}}`)
	if err := rec.Recv(5, frame); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := rec.Send(5, protocol.Look(-12.5, 3)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := rec.Send(6, protocol.Use()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := logrec.ListFiles(dir, "test")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want one", files)
	}

	entries, err := logrec.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	if entries[0].Dir != logrec.DirRecv || entries[0].Tick != 5 {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	var st protocol.StateMsg
	if err := json.Unmarshal(entries[0].Msg, &st); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if st.Tick != 5 {
		t.Fatalf("frame tick = %d", st.Tick)
	}

	if entries[1].Dir != logrec.DirSend {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
	var look protocol.LookAction
	if err := json.Unmarshal(entries[1].Msg, &look); err != nil {
		t.Fatalf("decode look: %v", err)
	}
	if look.Type != protocol.TypeActionLook || look.Yaw != -12.5 {
		t.Fatalf("look = %+v", look)
	}
}

func TestListFiles_FiltersByPrefix(t *testing.T) {
	dir := t.TempDir()

	a := logrec.NewRecorder(dir, "builder")
	if err := a.Send(1, protocol.Jump()); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = a.Close()

	b := logrec.NewRecorder(dir, "navtest")
	if err := b.Send(1, protocol.Jump()); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = b.Close()

	files, err := logrec.ListFiles(dir, "builder")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want only the builder log", files)
	}
}
