package protocol

import "encoding/json"

// Message types on the agent channel. The server sends one "hello" at
// connection time, then "state" once per simulation tick; the client sends
// "action_*" messages.
const (
	TypeHello = "hello"
	TypeState = "state"

	TypeActionLook   = "action_look"
	TypeActionMove   = "action_move"
	TypeActionJump   = "action_jump"
	TypeActionUse    = "action_use"
	TypeActionAttack = "action_attack"
	TypeActionHotbar = "action_hotbar_select"
	TypeActionSprint = "action_sprint"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
