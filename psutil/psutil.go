// Package psutil reads the process table through gopsutil, for the systems
// where no procfs is mounted.
package psutil

import (
	"time"

	"github.com/midbel/xps/ptab"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// TicksPerSecond matches the clock ticks reported by procfs.
const TicksPerSecond = 100

// Table converts times into ticks elapsed since the host booted.
type Table struct {
	boot time.Time
}

func New() (*Table, error) {
	sec, err := host.BootTime()
	if err != nil {
		return nil, errors.Wrap(err, "boot time")
	}
	return &Table{
		boot: time.Unix(int64(sec), 0),
	}, nil
}

// Acquire lists the running processes. Processes whose details can no longer
// be read are skipped since they exited after being listed.
func (t *Table) Acquire(_ int) ([]ptab.Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, errors.Wrap(err, "list processes")
	}
	list := make([]ptab.Process, 0, len(procs))
	for _, p := range procs {
		if p == nil {
			continue
		}
		info, err := t.convert(p)
		if err != nil {
			continue
		}
		list = append(list, info)
	}
	return list, nil
}

func (t *Table) Now() int64 {
	return t.ticks(time.Now())
}

func (t *Table) convert(p *process.Process) (ptab.Process, error) {
	info := ptab.Process{
		Pid: int(p.Pid),
	}
	name, err := p.Name()
	if err != nil {
		return info, err
	}
	info.Name = name

	ppid, err := p.Ppid()
	if err != nil {
		return info, err
	}
	info.Ppid = int(ppid)

	status, err := p.Status()
	if err != nil {
		return info, err
	}
	info.State = convertStatus(status)

	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		info.Size = mem.VMS
	}
	if times, err := p.Times(); err == nil && times != nil {
		info.Uptime = uint64((times.User + times.System) * TicksPerSecond)
	}
	if ms, err := p.CreateTime(); err == nil {
		if n := t.ticks(time.UnixMilli(ms)); n > 0 {
			info.Start = uint64(n)
		}
	}
	return info, nil
}

func (t *Table) ticks(when time.Time) int64 {
	return int64(when.Sub(t.boot) / (time.Second / TicksPerSecond))
}

func convertStatus(status []string) ptab.State {
	if len(status) == 0 {
		return ptab.StateSleeping
	}
	switch status[0] {
	case process.Running:
		return ptab.StateRunning
	case process.Zombie:
		return ptab.StateZombie
	default:
		return ptab.StateSleeping
	}
}
