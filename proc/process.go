package proc

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/midbel/slices"
	"github.com/midbel/xps/ptab"
	"github.com/pkg/errors"
)

var errStat = errors.New("malformed stat line")

// Table reads the process table of a Linux system through a procfs mount.
type Table struct {
	Dir string
}

func Default() Table {
	return Table{Dir: proc}
}

// Acquire reads every process found under the procfs mount. Processes that
// exit while the directory is being walked are skipped.
func (t Table) Acquire(_ int) ([]ptab.Process, error) {
	files, err := os.ReadDir(t.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", t.Dir)
	}
	var list []ptab.Process
	for _, f := range files {
		if !f.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(f.Name()); err != nil {
			continue
		}
		p, err := readStat(filepath.Join(t.Dir, f.Name(), procStat))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ESRCH) {
				continue
			}
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

// Ticks returns the clock ticks elapsed since boot.
func (t Table) Ticks() (int64, error) {
	return readTicks(t.Dir)
}

// Now is Ticks without the error: it returns zero when the uptime file cannot
// be read. Call Ticks first to report that case.
func (t Table) Now() int64 {
	n, _ := t.Ticks()
	return n
}

func readStat(file string) (ptab.Process, error) {
	buf, err := os.ReadFile(file)
	if err != nil {
		return ptab.Process{}, errors.Wrapf(err, "read %s", file)
	}
	p, err := parseStat(string(buf))
	if err != nil {
		return p, errors.Wrapf(err, "parse %s", file)
	}
	return p, nil
}

// parseStat decodes one line of /proc/<pid>/stat. The command name is
// enclosed in parentheses and may itself contain spaces and parentheses, so
// the fields are split after the last closing one.
func parseStat(line string) (ptab.Process, error) {
	var p ptab.Process

	pid, rest, ok := strings.Cut(strings.TrimSpace(line), " (")
	if !ok {
		return p, errStat
	}
	ix := strings.LastIndexByte(rest, ')')
	if ix < 0 {
		return p, errStat
	}
	p.Name = rest[:ix]

	fields := strings.Fields(rest[ix+1:])
	if len(fields) < 21 {
		return p, errors.Wrapf(errStat, "%d fields", len(fields))
	}

	var err error
	if p.Pid, err = strconv.Atoi(pid); err != nil {
		return p, err
	}
	p.State = convertState(slices.Fst(fields))
	if p.Ppid, err = strconv.Atoi(slices.At(fields, 1)); err != nil {
		return p, err
	}
	utime, err := strconv.ParseUint(slices.At(fields, 11), 10, 64)
	if err != nil {
		return p, err
	}
	stime, err := strconv.ParseUint(slices.At(fields, 12), 10, 64)
	if err != nil {
		return p, err
	}
	p.Uptime = utime + stime
	if p.Start, err = strconv.ParseUint(slices.At(fields, 19), 10, 64); err != nil {
		return p, err
	}
	if p.Size, err = strconv.ParseUint(slices.At(fields, 20), 10, 64); err != nil {
		return p, err
	}
	return p, nil
}

// convertState maps the state letter of a Linux task. Linux does not report
// processes being created and does not distinguish runnable from running.
func convertState(str string) ptab.State {
	switch str {
	case "R":
		return ptab.StateRunning
	case "Z", "X", "x":
		return ptab.StateZombie
	default:
		return ptab.StateSleeping
	}
}
