package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/midbel/xps/proc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var (
	snapshot = filepath.Join("testdata", "snapshot.txt")

	header = "PID  PPID  STATE     TIME  RUNNING-TIME  SIZE  NAME"
	rows   = map[int]string{
		1:  "1    0     SLEEPING  1000  12            16384 init",
		2:  "2    1     RUNNABLE  995   6             20480 my shell",
		3:  "3    2     SLEEPING  900   6             12288 ps",
		4:  "4    1     EMBRYO    10    0             4096  sh",
		10: "10   2     RUNNING   600   30            8192  sh",
	}
)

func listing(pids ...int) string {
	lines := []string{header}
	for _, p := range pids {
		lines = append(lines, rows[p])
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{name: "list", args: nil, code: exitOk, want: listing(4, 1, 10, 2, 3)},
		{name: "sort state", args: []string{"-st"}, code: exitOk, want: listing(4, 1, 3, 2, 10)},
		{name: "sort runtime", args: []string{"-sr"}, code: exitOk, want: listing(4, 2, 3, 1, 10)},
		{name: "sort size", args: []string{"-sz"}, code: exitOk, want: listing(4, 10, 3, 1, 2)},
		{name: "sort key", args: []string{"-k", "size"}, code: exitOk, want: listing(4, 10, 3, 1, 2)},
		{name: "sort unknown key", args: []string{"-k", "pid"}, code: exitUsage, want: "usage: unknown sort key: pid\n"},
		{name: "sort two keys", args: []string{"-st", "-sz"}, code: exitUsage, want: msgSortKeys + "\n"},
		{name: "count", args: []string{"-n"}, code: exitOk, want: "Number of processes: 5\n"},
		{name: "capacity", args: []string{"-max", "2"}, code: exitOk, want: listing(4, 1)},
		{name: "capacity large", args: []string{"-max", "9223372036854775807"}, code: exitOk, want: listing(4, 1, 10, 2, 3)},
		{name: "count capacity", args: []string{"-max", "3", "-n"}, code: exitOk, want: "Number of processes: 3\n"},
		{name: "name", args: []string{"-s", "sh"}, code: exitOk, want: listing(4)},
		{name: "name quoted", args: []string{"-s", "my shell"}, code: exitOk, want: listing(2)},
		{name: "name sorted", args: []string{"-st", "-s", "ps"}, code: exitOk, want: listing(3)},
		{name: "name missing", args: []string{"-s", "init2"}, code: exitOk, want: msgNoName + "\n"},
		{name: "name no argument", args: []string{"-s"}, code: exitUsage, want: msgArgs + "\n"},
		{name: "id", args: []string{"-i", "10"}, code: exitOk, want: listing(10)},
		{name: "id missing", args: []string{"-i", "7"}, code: exitOk, want: msgNoID + "\n"},
		{name: "id no argument", args: []string{"-i"}, code: exitUsage, want: msgArgs + "\n"},
		{name: "id invalid", args: []string{"-i", "ten"}, code: exitUsage, want: "usage: invalid id \"ten\"\n"},
		{name: "range", args: []string{"-ir", "2", "4"}, code: exitOk, want: listing(4, 2, 3)},
		{name: "range sorted", args: []string{"-sz", "-ir", "2", "4"}, code: exitOk, want: listing(4, 3, 2)},
		{name: "range options after arguments", args: []string{"-ir", "2", "4", "-sz"}, code: exitOk, want: listing(4, 3, 2)},
		{name: "id options after arguments", args: []string{"-i", "3", "-st"}, code: exitOk, want: listing(3)},
		{name: "range negative bound", args: []string{"-ir", "-5", "2"}, code: exitOk, want: listing(1, 2)},
		{name: "range negative inverted", args: []string{"-ir", "2", "-5"}, code: exitUsage, want: msgRanges + "\n"},
		{name: "range empty", args: []string{"-ir", "5", "9"}, code: exitOk, want: msgNoRange + "\n"},
		{name: "range inverted", args: []string{"-ir", "5", "2"}, code: exitUsage, want: msgRanges + "\n"},
		{name: "range one argument", args: []string{"-ir", "2"}, code: exitUsage, want: msgArgs + "\n"},
		{name: "two queries", args: []string{"-s", "-i", "sh"}, code: exitUsage, want: msgMultiple + "\n"},
		{name: "extra argument", args: []string{"init"}, code: exitUsage, want: msgArgs + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr strings.Builder

			args := append([]string{"-f", snapshot}, tt.args...)
			code := run(args, &stdout, &stderr)
			assert.Equal(t, tt.code, code, stderr.String())
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestRunHelp(t *testing.T) {
	for _, arg := range []string{"-help", "-h"} {
		var stdout, stderr strings.Builder
		assert.Equal(t, exitOk, run([]string{arg}, &stdout, &stderr))
		assert.True(t, strings.HasPrefix(stdout.String(), "usage: xps"))
		assert.Contains(t, stdout.String(), "-ir <low> <high>")
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{name: "capacity", args: []string{"-f", snapshot, "-max", "0"}, code: exitFail, stderr: "Out of memory"},
		{name: "negative capacity", args: []string{"-f", snapshot, "-max", "-1"}, code: exitFail, stderr: "Out of memory"},
		{name: "missing file", args: []string{"-f", filepath.Join("testdata", "none.txt")}, code: exitFail, stderr: "open process table"},
		{name: "unknown source", args: []string{"-source", "kvm"}, code: exitFail, stderr: "unknown source"},
		{name: "unknown flag", args: []string{"-x"}, code: exitUsage, stderr: "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr strings.Builder
			assert.Equal(t, tt.code, run(tt.args, &stdout, &stderr))
			assert.Contains(t, stderr.String(), tt.stderr)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunTable(t *testing.T) {
	var stdout, stderr strings.Builder
	assert.Equal(t, exitOk, run([]string{"-f", snapshot, "-t", "-H", "-st"}, &stdout, &stderr))

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if assert.Len(t, lines, 6) {
		assert.Equal(t, []string{"4", "1", "EMBRYO", "10", "0", "4.0", "KiB", "sh"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"2", "1", "RUNNABLE", "995", "6", "20", "KiB", "my", "shell"}, strings.Fields(lines[4]))
	}
}

func TestRunVerbose(t *testing.T) {
	var stdout, stderr strings.Builder
	assert.Equal(t, exitOk, run([]string{"-f", snapshot, "-v", "-max", "4"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "snapshot acquired")
	assert.Contains(t, stderr.String(), "dropped=1")
	assert.Equal(t, listing(4, 1, 10, 2), stdout.String())
}

func TestCheckClock(t *testing.T) {
	var out strings.Builder
	log := logrus.New()
	log.SetOutput(&out)

	checkClock(proc.Table{Dir: t.TempDir()}, log)
	assert.Contains(t, out.String(), "level=warning")
	assert.Contains(t, out.String(), "clock unavailable")

	out.Reset()
	checkClock(proc.Table{Dir: filepath.Join("..", "..", "proc", "testdata")}, log)
	assert.Empty(t, out.String())
}
