package event

// Type names an event. The vocabulary is closed: every Type has a fixed
// argument schema.
type Type string

const (
	ClientDisconnect         Type = "ClientDisconnectEvent"
	UserInput                Type = "UserInputEvent"
	CharacterCollision       Type = "CharacterCollisionEvent"
	CharacterDeath           Type = "CharacterDeathEvent"
	CharacterSpawn           Type = "CharacterSpawnEvent"
	CharacterMoved           Type = "CharacterMovedEvent"
	PlatformMoved            Type = "PlatformMovedEvent"
	CharacterMovedByGravity  Type = "CharacterMovedByGravityEvent"
	CharacterMovedByPlatform Type = "CharacterMovedByPlatformEvent"
	CharacterJumpStart       Type = "CharacterJumpStartEvent"
	CharacterStillJumping    Type = "CharacterStillJumpingEvent"
	CharacterJumpEnd         Type = "CharacterJumpEndEvent"
	CharacterFallStart       Type = "CharacterFallStartEvent"
	CharacterStillFalling    Type = "CharacterStillFallingEvent"
	CharacterFallEnd         Type = "CharacterFallEndEvent"
	ReplayRecordingStart     Type = "ReplayRecordingStartEvent"
	ReplayRecordingStop      Type = "ReplayRecordingStopEvent"
	ReplayFinished           Type = "ReplayFinishedEvent"
)

// ArgKind tags an argument as integer or float.
type ArgKind uint8

const (
	KindInt ArgKind = iota + 1
	KindFloat
)

func (k ArgKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "invalid"
}

var (
	idOnly   = []ArgKind{KindInt}
	movement = []ArgKind{KindInt, KindInt, KindFloat, KindFloat, KindFloat, KindFloat}
)

var schemas = map[Type][]ArgKind{
	ClientDisconnect:         idOnly,
	UserInput:                {KindInt, KindInt},
	CharacterCollision:       {KindInt, KindInt},
	CharacterDeath:           idOnly,
	CharacterSpawn:           {KindInt, KindInt, KindFloat, KindFloat},
	CharacterMoved:           movement,
	PlatformMoved:            movement,
	CharacterMovedByGravity:  movement,
	CharacterMovedByPlatform: movement,
	CharacterJumpStart:       idOnly,
	CharacterStillJumping:    idOnly,
	CharacterJumpEnd:         idOnly,
	CharacterFallStart:       idOnly,
	CharacterStillFalling:    idOnly,
	CharacterFallEnd:         idOnly,
	ReplayRecordingStart:     nil,
	ReplayRecordingStop:      {KindFloat},
	ReplayFinished:           nil,
}

// Schema returns the argument kinds of t.
func (t Type) Schema() ([]ArgKind, bool) {
	s, ok := schemas[t]
	return s, ok
}

// Known reports whether t belongs to the vocabulary.
func (t Type) Known() bool {
	_, ok := schemas[t]
	return ok
}

// IsMovement reports whether t carries the six-argument movement payload.
func (t Type) IsMovement() bool {
	switch t {
	case CharacterMoved, PlatformMoved, CharacterMovedByGravity, CharacterMovedByPlatform:
		return true
	}
	return false
}

// Recordable lists the event types captured by replay recording.
var Recordable = []Type{
	PlatformMoved,
	CharacterMoved,
	CharacterMovedByGravity,
	CharacterMovedByPlatform,
	CharacterSpawn,
}
