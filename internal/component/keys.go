package component

// Key is a client input key code.
type Key int64

const (
	KeyLeft  Key = 1
	KeyRight Key = 2
	KeyUp    Key = 3
	KeyR     Key = 4
	KeyOne   Key = 5
	KeyTwo   Key = 6
	KeyThree Key = 7
)

// IsReplaySpeed reports whether k selects a replay speed.
func (k Key) IsReplaySpeed() bool {
	return k == KeyOne || k == KeyTwo || k == KeyThree
}

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyR:
		return "r"
	case KeyOne:
		return "1"
	case KeyTwo:
		return "2"
	case KeyThree:
		return "3"
	}
	return "unknown"
}

// ParseKey maps a key name (as used in scripts) to its code.
func ParseKey(name string) (Key, bool) {
	for k := KeyLeft; k <= KeyThree; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}
