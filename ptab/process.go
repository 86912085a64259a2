package ptab

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the size of the kernel process table (NPROC).
const DefaultCapacity = 64

var (
	ErrCapacity  = errors.New("invalid snapshot capacity")
	ErrState     = errors.New("invalid process state")
	ErrDuplicate = errors.New("duplicate process id")
	ErrRange     = errors.New("invalid ranges")
	ErrKey       = errors.New("unknown sort key")
)

type Process struct {
	Pid    int
	Ppid   int
	State  State
	Size   uint64
	Uptime uint64
	Start  uint64
	Name   string
}

// Source reads the records of a process table. capacity is a hint: a source
// may stop once it has found that many records, and Acquire drops any extra.
type Source interface {
	Acquire(capacity int) ([]Process, error)
}

// Clock reports the current global tick count.
type Clock interface {
	Now() int64
}

// Provider is a process table that also knows the tick count its start
// times are relative to.
type Provider interface {
	Source
	Clock
}

type ClockFunc func() int64

func (f ClockFunc) Now() int64 {
	return f()
}

// Snapshot is the process table as seen at one instant. Only the order of its
// records changes after Acquire.
type Snapshot struct {
	list    []Process
	dropped int
}

func Acquire(src Source, capacity int) (*Snapshot, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	list, err := src.Acquire(capacity)
	if err != nil {
		return nil, err
	}
	var dropped int
	if len(list) > capacity {
		dropped = len(list) - capacity
		list = list[:capacity]
	}
	snap := Snapshot{
		list:    make([]Process, len(list)),
		dropped: dropped,
	}
	copy(snap.list, list)

	seen := make(map[int]struct{}, len(snap.list))
	for _, p := range snap.list {
		if !p.State.Valid() {
			return nil, fmt.Errorf("%w: pid %d has state %d", ErrState, p.Pid, p.State)
		}
		if _, ok := seen[p.Pid]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicate, p.Pid)
		}
		seen[p.Pid] = struct{}{}
	}
	return &snap, nil
}

func (s *Snapshot) Len() int {
	return len(s.list)
}

// Dropped reports how many records the source returned beyond the capacity.
func (s *Snapshot) Dropped() int {
	return s.dropped
}

// Processes returns a copy of the records in their current order.
func (s *Snapshot) Processes() []Process {
	list := make([]Process, len(s.list))
	copy(list, s.list)
	return list
}
