package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/midbel/xps/ptab"
)

const (
	exitOk    = 0
	exitFail  = 1
	exitUsage = 2
)

type options struct {
	help     bool
	byState  bool
	byTime   bool
	bySize   bool
	key      string
	count    bool
	byName   bool
	byID     bool
	byRange  bool
	file     string
	source   string
	capacity int
	table    bool
	human    bool
	verbose  bool
	args     []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var (
		opts options
		set  = flag.NewFlagSet("xps", flag.ContinueOnError)
	)
	set.SetOutput(stderr)
	set.Usage = func() {}

	set.BoolVar(&opts.help, "help", false, "print options")
	set.BoolVar(&opts.byState, "st", false, "sort process table by state")
	set.BoolVar(&opts.byTime, "sr", false, "sort process table by running-time")
	set.BoolVar(&opts.bySize, "sz", false, "sort process table by process size")
	set.StringVar(&opts.key, "k", "", "sort process table by key (state, runtime, size)")
	set.BoolVar(&opts.count, "n", false, "print number of processes in the process table")
	set.BoolVar(&opts.byName, "s", false, "search a process by name")
	set.BoolVar(&opts.byID, "i", false, "search a process by id")
	set.BoolVar(&opts.byRange, "ir", false, "list processes with id between low and high")
	set.StringVar(&opts.file, "f", "", "read process table from file")
	set.StringVar(&opts.source, "source", defaultSource(), "process table source (proc, psutil)")
	set.IntVar(&opts.capacity, "max", ptab.DefaultCapacity, "maximum number of processes read")
	set.BoolVar(&opts.table, "t", false, "align columns")
	set.BoolVar(&opts.human, "H", false, "print sizes in human readable format")
	set.BoolVar(&opts.verbose, "v", false, "verbose logging")

	flags, rest := splitArgs(set, args)
	if err := set.Parse(flags); err != nil {
		return opts, err
	}
	opts.args = append(set.Args(), rest...)
	return opts, nil
}

// splitArgs separates options from query arguments so that options may follow
// the arguments (xps -s sh -st) and negative numbers are taken as arguments
// (xps -ir -5 2). Everything after "--" is an argument.
func splitArgs(set *flag.FlagSet, args []string) ([]string, []string) {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" || isNumber(arg) {
			rest = append(rest, arg)
			continue
		}
		flags = append(flags, arg)

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := set.Lookup(name)
		if f == nil || isBool(f) || i+1 >= len(args) {
			continue
		}
		i++
		flags = append(flags, args[i])
	}
	return flags, rest
}

func isNumber(str string) bool {
	_, err := strconv.Atoi(str)
	return err == nil
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func defaultSource() string {
	if str := os.Getenv("XPS_SOURCE"); str != "" {
		return str
	}
	return sourceProc
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "usage: xps [option]... [args]")
	fmt.Fprintln(w, "   -st               sort process table by state")
	fmt.Fprintln(w, "   -sr               sort process table by running-time")
	fmt.Fprintln(w, "   -sz               sort process table by process size")
	fmt.Fprintln(w, "   -k <key>          sort process table by state, runtime or size")
	fmt.Fprintln(w, "   -n                print number of processes in the process table")
	fmt.Fprintln(w, "   -s <query>        search a process by name")
	fmt.Fprintln(w, "   -i <id>           search a process by id")
	fmt.Fprintln(w, "   -ir <low> <high>  list processes with id between low and high")
	fmt.Fprintln(w, "   -f <file>         read process table from file")
	fmt.Fprintln(w, "   -source <name>    read process table from proc or psutil")
	fmt.Fprintln(w, "   -max <n>          maximum number of processes read")
	fmt.Fprintln(w, "   -t                align columns")
	fmt.Fprintln(w, "   -H                print sizes in human readable format")
	fmt.Fprintln(w, "   -v                verbose logging")
}
