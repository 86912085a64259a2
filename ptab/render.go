package ptab

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Layout int

const (
	LayoutPlain Layout = iota
	LayoutTable
)

const header = "PID  PPID  STATE     TIME  RUNNING-TIME  SIZE  NAME"

// Printer writes process rows. The TIME column is computed from the clock
// when each row is written, so rows of a long listing may use a slightly
// later tick count than the rows before them.
type Printer struct {
	w      io.Writer
	clock  Clock
	layout Layout
	human  bool
	width  int
}

type Option func(*Printer)

func WithLayout(layout Layout) Option {
	return func(p *Printer) {
		p.layout = layout
	}
}

func WithHumanSize(human bool) Option {
	return func(p *Printer) {
		p.human = human
	}
}

// WithRowLength cuts the rows of the table layout to width runes. Zero leaves
// rows untouched.
func WithRowLength(width int) Option {
	return func(p *Printer) {
		p.width = width
	}
}

func NewPrinter(w io.Writer, clock Clock, options ...Option) *Printer {
	p := Printer{
		w:     w,
		clock: clock,
	}
	for _, o := range options {
		o(&p)
	}
	return &p
}

// Print writes the header line followed by one row per record. The header is
// written even when list is empty.
func (p *Printer) Print(list ...Process) error {
	if p.layout == LayoutTable {
		return p.printTable(list)
	}
	if _, err := fmt.Fprintln(p.w, header); err != nil {
		return err
	}
	for _, r := range list {
		_, err := fmt.Fprintf(p.w, "%-4d %-5d %-9s %-5d %-13d %-5s %s\n", r.Pid, r.Ppid, r.State, p.elapsed(r), r.Uptime, p.size(r), r.Name)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(list []Process) error {
	t := table.NewWriter()
	t.SuppressTrailingSpaces()
	if p.width > 0 {
		t.SetAllowedRowLength(p.width)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignRight},
		{Number: 7, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false

	t.AppendHeader(table.Row{"PID", "PPID", "STATE", "TIME", "RUNNING-TIME", "SIZE", "NAME"})
	for _, r := range list {
		t.AppendRow(table.Row{r.Pid, r.Ppid, r.State.String(), p.elapsed(r), r.Uptime, p.size(r), r.Name})
	}
	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

func (p *Printer) elapsed(r Process) uint64 {
	now := p.clock.Now()
	if now < 0 || uint64(now) < r.Start {
		return 0
	}
	return uint64(now) - r.Start
}

func (p *Printer) size(r Process) string {
	if p.human {
		return humanize.IBytes(r.Size)
	}
	return strconv.FormatUint(r.Size, 10)
}
