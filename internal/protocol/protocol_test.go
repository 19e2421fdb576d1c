package protocol_test

import (
	"encoding/json"
	"testing"

	"voxelpilot.ai/internal/protocol"
)

func TestDecodeBase_RoutesByType(t *testing.T) {
	base, err := protocol.DecodeBase([]byte(`{"type":"state","tick":7}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if base.Type != protocol.TypeState {
		t.Fatalf("type = %q, want %q", base.Type, protocol.TypeState)
	}

	if _, err := protocol.DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("expected error on truncated json")
	}
}

func TestStateMsg_Decode(t *testing.T) {
	raw := []byte(`{
	  "type":"state",
	  "tick":99,
	  "pose":{"x":1.5,"y":65.62,"z":-2.5,"yaw":181.0,"pitch":-30.0},
	  "raycast":{"hit_type":"block","hit_id":"dirt","hit_normal":"TOP","hit_dist":2},
	  "ui_state":{"on_ground":true,"hotbar_selected":3},
	  "last_action_result":{"success":true,"pos":[1,64,-3],"id":"dirt"}
	}`)
	var st protocol.StateMsg
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Tick != 99 {
		t.Fatalf("tick = %d", st.Tick)
	}
	if st.Raycast.HitNormal != protocol.FaceTop {
		t.Fatalf("hit_normal = %q", st.Raycast.HitNormal)
	}
	if st.LastActionResult == nil || !st.LastActionResult.Success {
		t.Fatalf("last_action_result = %+v", st.LastActionResult)
	}
	if st.LastActionResult.Pos != [3]int{1, 64, -3} {
		t.Fatalf("pos = %v", st.LastActionResult.Pos)
	}
}

func TestStateMsg_ResultOmittedOnQuietTicks(t *testing.T) {
	var st protocol.StateMsg
	raw := []byte(`{"type":"state","tick":1,"pose":{"x":0,"y":0,"z":0,"yaw":0,"pitch":0},"raycast":{"hit_type":"none"},"ui_state":{"on_ground":true,"hotbar_selected":0}}`)
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.LastActionResult != nil {
		t.Fatalf("expected nil result, got %+v", st.LastActionResult)
	}
}

func TestActions_WireShape(t *testing.T) {
	cases := []struct {
		action any
		want   string
	}{
		{protocol.Look(-10.5, 3), `{"type":"action_look","yaw":-10.5,"pitch":3}`},
		{protocol.Move(1, 0, 500), `{"type":"action_move","forward":1,"strafe":0,"duration":500}`},
		{protocol.Jump(), `{"type":"action_jump"}`},
		{protocol.Use(), `{"type":"action_use"}`},
		{protocol.Attack(), `{"type":"action_attack"}`},
		{protocol.HotbarSelect(4), `{"type":"action_hotbar_select","slot":4}`},
		{protocol.Sprint(true), `{"type":"action_sprint","toggle":true}`},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.action)
		if err != nil {
			t.Fatalf("marshal %T: %v", c.action, err)
		}
		if string(b) != c.want {
			t.Fatalf("%T = %s, want %s", c.action, b, c.want)
		}
	}
}

func TestIsKnownFace(t *testing.T) {
	for _, f := range []protocol.Face{
		protocol.FaceTop, protocol.FaceBottom, protocol.FaceNorth,
		protocol.FaceSouth, protocol.FaceEast, protocol.FaceWest,
		protocol.FaceNone, "",
	} {
		if !protocol.IsKnownFace(f) {
			t.Fatalf("face %q should be known", f)
		}
	}
	if protocol.IsKnownFace("DIAGONAL") {
		t.Fatalf("face DIAGONAL should be unknown")
	}
}
