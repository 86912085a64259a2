package ptab

import (
	"fmt"
	"strings"
)

type State byte

const (
	StateEmbryo State = iota + 1
	StateSleeping
	StateRunnable
	StateRunning
	StateZombie
)

func (s State) Valid() bool {
	return s >= StateEmbryo && s <= StateZombie
}

func (s State) String() string {
	switch s {
	default:
		return "UNKNOWN"
	case StateEmbryo:
		return "EMBRYO"
	case StateSleeping:
		return "SLEEPING"
	case StateRunnable:
		return "RUNNABLE"
	case StateRunning:
		return "RUNNING"
	case StateZombie:
		return "ZOMBIE"
	}
}

// ParseState accepts the labels returned by String, in any case.
func ParseState(str string) (State, error) {
	for s := StateEmbryo; s <= StateZombie; s++ {
		if strings.EqualFold(str, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrState, str)
}
