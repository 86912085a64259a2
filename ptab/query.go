package ptab

import "fmt"

// FindByName returns the first record, in the current order, named name.
func (s *Snapshot) FindByName(name string) (Process, bool) {
	for _, p := range s.list {
		if p.Name == name {
			return p, true
		}
	}
	return Process{}, false
}

func (s *Snapshot) FindByID(pid int) (Process, bool) {
	for _, p := range s.list {
		if p.Pid == pid {
			return p, true
		}
	}
	return Process{}, false
}

// FilterRange returns the records with low <= pid <= high in the current
// order. An empty range is not an error; low > high is.
func (s *Snapshot) FilterRange(low, high int) ([]Process, error) {
	if low > high {
		return nil, fmt.Errorf("%w: %d > %d", ErrRange, low, high)
	}
	var list []Process
	for _, p := range s.list {
		if p.Pid >= low && p.Pid <= high {
			list = append(list, p)
		}
	}
	return list, nil
}
