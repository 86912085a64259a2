package ptab

import (
	"cmp"
	"fmt"
	"strings"
)

// Comparator orders two records: negative when a comes first, zero when they
// are equal for the key, positive otherwise.
type Comparator func(a, b Process) int

func ByState(a, b Process) int {
	return cmp.Compare(a.State, b.State)
}

func ByRuntime(a, b Process) int {
	return cmp.Compare(a.Uptime, b.Uptime)
}

func BySize(a, b Process) int {
	return cmp.Compare(a.Size, b.Size)
}

func ParseKey(key string) (Comparator, error) {
	switch strings.ToLower(key) {
	case "state", "st":
		return ByState, nil
	case "runtime", "sr":
		return ByRuntime, nil
	case "size", "sz":
		return BySize, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrKey, key)
	}
}

// Sort reorders the snapshot in place with an insertion sort. Records that
// compare equal keep their relative order.
func (s *Snapshot) Sort(by Comparator) {
	for i := 1; i < len(s.list); i++ {
		var (
			key = s.list[i]
			j   = i - 1
		)
		for j >= 0 && by(s.list[j], key) > 0 {
			s.list[j+1] = s.list[j]
			j--
		}
		s.list[j+1] = key
	}
}
