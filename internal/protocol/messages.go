package protocol

// HELLO (server -> client), consumed once at connection time.
type HelloMsg struct {
	Type         string       `json:"type"`
	Version      string       `json:"version"`
	Capabilities Capabilities `json:"capabilities"`
}

type Capabilities struct {
	Actions []string `json:"actions,omitempty"`
	TickMs  int      `json:"tick_ms,omitempty"`
}

// STATE (server -> client), one per simulation tick.
type StateMsg struct {
	Type             string        `json:"type"`
	Tick             uint64        `json:"tick"`
	Pose             Pose          `json:"pose"`
	Raycast          RaycastObs    `json:"raycast"`
	UIState          UIState       `json:"ui_state"`
	HotbarContents   []string      `json:"hotbar_contents,omitempty"`
	LastActionResult *ActionResult `json:"last_action_result,omitempty"`
}

// Pose is the agent's eye position and orientation. Yaw is unbounded and
// compared modulo 360; pitch stays within ±89.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Hit types reported by the crosshair raycast.
const (
	HitBlock  = "block"
	HitEntity = "entity"
	HitNone   = "none"
)

// RaycastObs describes what the crosshair currently points at. HitNormal is
// meaningful only when HitType is "block".
type RaycastObs struct {
	HitType   string `json:"hit_type"`
	HitID     string `json:"hit_id,omitempty"`
	HitNormal Face   `json:"hit_normal,omitempty"`
	HitDist   int    `json:"hit_dist,omitempty"` // bucketed distance
}

type UIState struct {
	OnGround       bool `json:"on_ground"`
	FlyMode        bool `json:"fly_mode,omitempty"`
	HotbarSelected int  `json:"hotbar_selected"`
}

// ActionResult resolves asynchronously, on the tick where a use/attack took
// effect. Pos is the placed/broken voxel coordinate.
type ActionResult struct {
	Success bool   `json:"success"`
	Pos     [3]int `json:"pos,omitempty"`
	ID      string `json:"id,omitempty"` // involved block/entity kind
}
