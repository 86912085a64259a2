package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/midbel/xps/dump"
	"github.com/midbel/xps/proc"
	"github.com/midbel/xps/psutil"
	"github.com/midbel/xps/ptab"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	sourceProc   = "proc"
	sourcePsutil = "psutil"
)

const (
	msgArgs     = "Invalid number of arguments"
	msgRanges   = "usage: invalid ranges"
	msgNoName   = "Could not find a process with that name"
	msgNoID     = "Could not find a process with that id"
	msgNoRange  = "no processes found within range"
	msgMultiple = "usage: only one of -n, -s, -i and -ir can be given"
	msgSortKeys = "usage: only one sort key can be given"
)

var errSortKeys = errors.New("too many sort keys")

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp(stdout)
			return exitOk
		}
		return exitUsage
	}
	if opts.help {
		printHelp(stdout)
		return exitOk
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	by, err := sortKey(opts)
	if err != nil {
		if errors.Is(err, errSortKeys) {
			fmt.Fprintln(stdout, msgSortKeys)
		} else {
			fmt.Fprintf(stdout, "usage: %s\n", err)
		}
		return exitUsage
	}
	if code := checkArgs(opts, stdout); code != exitOk {
		return code
	}

	table, err := openTable(opts)
	if err != nil {
		log.WithError(err).WithField("source", opts.source).Error("open process table")
		return exitFail
	}
	checkClock(table, log)

	snap, err := ptab.Acquire(table, opts.capacity)
	if err != nil {
		if errors.Is(err, ptab.ErrCapacity) {
			fmt.Fprintln(stderr, "Out of memory")
		}
		log.WithError(err).WithField("capacity", opts.capacity).Error("acquire snapshot")
		return exitFail
	}
	log.WithFields(logrus.Fields{
		"count":    snap.Len(),
		"capacity": opts.capacity,
		"dropped":  snap.Dropped(),
	}).Debug("snapshot acquired")

	if by != nil {
		snap.Sort(by)
	}

	set := []ptab.Option{ptab.WithHumanSize(opts.human)}
	if opts.table {
		set = append(set, ptab.WithLayout(ptab.LayoutTable), ptab.WithRowLength(terminalWidth(stdout)))
	}
	prt := ptab.NewPrinter(stdout, table, set...)

	switch {
	case opts.count:
		fmt.Fprintf(stdout, "Number of processes: %d\n", snap.Len())
	case opts.byName:
		p, ok := snap.FindByName(opts.args[0])
		if !ok {
			fmt.Fprintln(stdout, msgNoName)
			break
		}
		err = prt.Print(p)
	case opts.byID:
		pid, _ := strconv.Atoi(opts.args[0])
		p, ok := snap.FindByID(pid)
		if !ok {
			fmt.Fprintln(stdout, msgNoID)
			break
		}
		err = prt.Print(p)
	case opts.byRange:
		low, _ := strconv.Atoi(opts.args[0])
		high, _ := strconv.Atoi(opts.args[1])
		list, rerr := snap.FilterRange(low, high)
		if rerr != nil {
			log.WithError(rerr).Debug("filter range")
			fmt.Fprintln(stdout, msgRanges)
			return exitUsage
		}
		if len(list) == 0 {
			fmt.Fprintln(stdout, msgNoRange)
			break
		}
		err = prt.Print(list...)
	default:
		err = prt.Print(snap.Processes()...)
	}
	if err != nil {
		log.WithError(err).Error("write process table")
		return exitFail
	}
	return exitOk
}

type ticker interface {
	Ticks() (int64, error)
}

// checkClock reports a clock that cannot be read once, before every TIME cell
// of the listing falls back to zero.
func checkClock(clock ptab.Clock, log *logrus.Logger) {
	t, ok := clock.(ticker)
	if !ok {
		return
	}
	if _, err := t.Ticks(); err != nil {
		log.WithError(err).Warn("clock unavailable, elapsed time reported as 0")
	}
}

func sortKey(opts options) (ptab.Comparator, error) {
	var keys []string
	if opts.byState {
		keys = append(keys, "state")
	}
	if opts.byTime {
		keys = append(keys, "runtime")
	}
	if opts.bySize {
		keys = append(keys, "size")
	}
	if opts.key != "" {
		keys = append(keys, opts.key)
	}
	switch len(keys) {
	case 0:
		return nil, nil
	case 1:
		return ptab.ParseKey(keys[0])
	default:
		return nil, errSortKeys
	}
}

// checkArgs validates the arguments of the selected query before the process
// table is read.
func checkArgs(opts options, stdout io.Writer) int {
	var (
		modes int
		want  int
	)
	for _, m := range []struct {
		set  bool
		args int
	}{
		{opts.count, 0},
		{opts.byName, 1},
		{opts.byID, 1},
		{opts.byRange, 2},
	} {
		if m.set {
			modes++
			want = m.args
		}
	}
	if modes > 1 {
		fmt.Fprintln(stdout, msgMultiple)
		return exitUsage
	}
	if len(opts.args) != want {
		fmt.Fprintln(stdout, msgArgs)
		return exitUsage
	}
	if opts.byID || opts.byRange {
		for _, a := range opts.args {
			if _, err := strconv.Atoi(a); err != nil {
				fmt.Fprintf(stdout, "usage: invalid id %q\n", a)
				return exitUsage
			}
		}
	}
	return exitOk
}

func openTable(opts options) (ptab.Provider, error) {
	if opts.file != "" {
		f, err := dump.Load(opts.file)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	switch opts.source {
	case sourceProc:
		return proc.Default(), nil
	case sourcePsutil:
		t, err := psutil.New()
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown source %q", opts.source)
	}
}

// terminalWidth returns the number of columns of the terminal w writes to, or
// zero when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
