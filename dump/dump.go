// Package dump reads process tables saved to a file, so a snapshot taken on
// one machine can be inspected on another.
//
// Two formats are recognized from the file extension. Files ending in .yaml
// or .yml hold a document with the tick count and the list of processes:
//
//	ticks: 1200
//	processes:
//	  - pid: 1
//	    state: sleeping
//	    name: init
//
// Any other file is a text table with one process per line, in the order
// pid, ppid, state, size, uptime, start and name. Fields are separated by
// blanks and may be quoted. Lines starting with # are ignored and a line
// "ticks N" sets the tick count.
package dump

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/midbel/shlex"
	"github.com/midbel/slices"
	"github.com/midbel/xps/ptab"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrSyntax = errors.New("syntax error")

// File is a snapshot loaded from disk. Its clock is frozen at the tick count
// recorded with the snapshot.
type File struct {
	Ticks int64
	List  []ptab.Process
}

func Load(file string) (*File, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", file)
	}
	defer r.Close()

	var f *File
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		f, err = DecodeYAML(r)
	default:
		f, err = DecodeText(r)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", file)
	}
	return f, nil
}

func (f *File) Acquire(_ int) ([]ptab.Process, error) {
	list := make([]ptab.Process, len(f.List))
	copy(list, f.List)
	return list, nil
}

func (f *File) Now() int64 {
	return f.Ticks
}

type record struct {
	Pid    int    `yaml:"pid"`
	Ppid   int    `yaml:"ppid"`
	State  string `yaml:"state"`
	Size   uint64 `yaml:"size"`
	Uptime uint64 `yaml:"uptime"`
	Start  uint64 `yaml:"start"`
	Name   string `yaml:"name"`
}

func DecodeYAML(r io.Reader) (*File, error) {
	doc := struct {
		Ticks     int64    `yaml:"ticks"`
		Processes []record `yaml:"processes"`
	}{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	f := File{
		Ticks: doc.Ticks,
		List:  make([]ptab.Process, 0, len(doc.Processes)),
	}
	for i, rec := range doc.Processes {
		state, err := parseState(rec.State)
		if err != nil {
			return nil, errors.Wrapf(err, "process #%d", i+1)
		}
		f.List = append(f.List, ptab.Process{
			Pid:    rec.Pid,
			Ppid:   rec.Ppid,
			State:  state,
			Size:   rec.Size,
			Uptime: rec.Uptime,
			Start:  rec.Start,
			Name:   rec.Name,
		})
	}
	return &f, nil
}

func DecodeText(r io.Reader) (*File, error) {
	var (
		scan = bufio.NewScanner(r)
		file File
		line int
	)
	for scan.Scan() {
		line++
		str := strings.TrimSpace(scan.Text())
		if str == "" || strings.HasPrefix(str, "#") {
			continue
		}
		fields, err := shlex.Split(strings.NewReader(str))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if slices.Fst(fields) == "ticks" {
			if len(fields) != 2 {
				return nil, errors.Wrapf(ErrSyntax, "line %d: ticks expects one value", line)
			}
			if file.Ticks, err = strconv.ParseInt(slices.Snd(fields), 10, 64); err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			continue
		}
		p, err := parseRow(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		file.List = append(file.List, p)
	}
	return &file, scan.Err()
}

func parseRow(fields []string) (ptab.Process, error) {
	var (
		p   ptab.Process
		err error
	)
	if len(fields) != 7 {
		return p, errors.Wrapf(ErrSyntax, "expected 7 fields, got %d", len(fields))
	}
	if p.Pid, err = strconv.Atoi(fields[0]); err != nil {
		return p, err
	}
	if p.Ppid, err = strconv.Atoi(fields[1]); err != nil {
		return p, err
	}
	if p.State, err = parseState(fields[2]); err != nil {
		return p, err
	}
	if p.Size, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
		return p, err
	}
	if p.Uptime, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return p, err
	}
	if p.Start, err = strconv.ParseUint(fields[5], 10, 64); err != nil {
		return p, err
	}
	p.Name = slices.Lst(fields)
	return p, nil
}

// parseState accepts either a state label or its ordinal.
func parseState(str string) (ptab.State, error) {
	if n, err := strconv.Atoi(str); err == nil {
		s := ptab.State(n)
		if n < 0 || n > 255 || !s.Valid() {
			return 0, errors.Wrapf(ptab.ErrState, "%d", n)
		}
		return s, nil
	}
	return ptab.ParseState(str)
}
