package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelpilot.ai/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	stateSchema := compile("state.schema.json")
	actionSchema := compile("action.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"hello",
	  "version":"1.2",
	  "capabilities":{"actions":["action_look","action_move","action_use"],"tick_ms":50}
	}`), &hello)
	validate(helloSchema, hello)

	var state any
	_ = json.Unmarshal([]byte(`{
	  "type":"state",
	  "tick":1042,
	  "pose":{"x":10.5,"y":65.62,"z":-3.5,"yaw":92.4,"pitch":-12.0},
	  "raycast":{"hit_type":"block","hit_id":"stone","hit_normal":"TOP","hit_dist":3},
	  "ui_state":{"on_ground":true,"hotbar_selected":0},
	  "hotbar_contents":["stone","dirt","","","","","","",""],
	  "last_action_result":{"success":true,"pos":[10,64,-4],"id":"stone"}
	}`), &state)
	validate(stateSchema, state)

	// One sample per action the client can send.
	actions := []any{
		protocol.Look(-42.5, 12.0),
		protocol.Move(1, 0, 500),
		protocol.Jump(),
		protocol.Use(),
		protocol.Attack(),
		protocol.HotbarSelect(2),
		protocol.Sprint(true),
	}
	for _, a := range actions {
		b, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal %T: %v", a, err)
		}
		var v any
		_ = json.Unmarshal(b, &v)
		validate(actionSchema, v)
	}
}

func TestSchemas_RejectBadState(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "state.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	bad := []string{
		`{"type":"state"}`,
		`{"type":"state","tick":-1,"pose":{"x":0,"y":0,"z":0,"yaw":0,"pitch":0},"raycast":{"hit_type":"none"},"ui_state":{"on_ground":true,"hotbar_selected":0}}`,
		`{"type":"state","tick":1,"pose":{"x":0,"y":0,"z":0,"yaw":0,"pitch":95},"raycast":{"hit_type":"none"},"ui_state":{"on_ground":true,"hotbar_selected":0}}`,
		`{"type":"state","tick":1,"pose":{"x":0,"y":0,"z":0,"yaw":0,"pitch":0},"raycast":{"hit_type":"lava"},"ui_state":{"on_ground":true,"hotbar_selected":0}}`,
	}
	for i, raw := range bad {
		var v any
		_ = json.Unmarshal([]byte(raw), &v)
		if err := s.Validate(v); err == nil {
			t.Fatalf("sample %d: expected validation failure", i)
		}
	}
}
