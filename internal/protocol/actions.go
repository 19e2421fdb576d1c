package protocol

// Actions (client -> server). Look carries deltas in degrees, added to the
// current orientation by the simulation.
type LookAction struct {
	Type  string  `json:"type"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

func Look(dyaw, dpitch float64) LookAction {
	return LookAction{Type: TypeActionLook, Yaw: dyaw, Pitch: dpitch}
}

// MoveAction drives the agent for a bounded duration. Forward and Strafe are
// in [-1, 1]; Duration is in milliseconds.
type MoveAction struct {
	Type     string  `json:"type"`
	Forward  float64 `json:"forward"`
	Strafe   float64 `json:"strafe"`
	Duration int     `json:"duration"`
}

func Move(forward, strafe float64, durationMs int) MoveAction {
	return MoveAction{Type: TypeActionMove, Forward: forward, Strafe: strafe, Duration: durationMs}
}

type JumpAction struct {
	Type string `json:"type"`
}

func Jump() JumpAction { return JumpAction{Type: TypeActionJump} }

// UseAction places the held block at the raycast hit.
type UseAction struct {
	Type string `json:"type"`
}

func Use() UseAction { return UseAction{Type: TypeActionUse} }

// AttackAction breaks the block at the raycast hit.
type AttackAction struct {
	Type string `json:"type"`
}

func Attack() AttackAction { return AttackAction{Type: TypeActionAttack} }

type HotbarSelectAction struct {
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

func HotbarSelect(slot int) HotbarSelectAction {
	return HotbarSelectAction{Type: TypeActionHotbar, Slot: slot}
}

type SprintAction struct {
	Type   string `json:"type"`
	Toggle bool   `json:"toggle"`
}

func Sprint(on bool) SprintAction { return SprintAction{Type: TypeActionSprint, Toggle: on} }
