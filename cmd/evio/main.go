// Command evio is a thin CLI front-end over the go-evio library: merge,
// read, write and convert operations used for ad-hoc inspection and
// testing of evio v4/v6 containers. It is peripheral to the library (§6 of
// the format specification); all real work happens in the evio package.
package main

import (
	"flag"
	"fmt"
	"os"
)

type verb struct {
	fn    func(args []string) error
	usage string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()

	verbs := map[string]verb{
		"merge":   {cmdMerge, "merge -o<output> <inputs...>"},
		"read":    {cmdRead, "read <file>"},
		"write":   {cmdWrite, "write <n>"},
		"convert": {cmdConvert, "convert <in> <inFmt> <out> <outFmt>   (fmt: evio4, evio6, hipo)"},
	}

	if len(args) == 0 {
		printUsage(verbs)
		os.Exit(2)
	}

	name, rest := args[0], args[1:]
	v, ok := verbs[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "evio: unknown command %q\n", name)
		printUsage(verbs)
		os.Exit(2)
	}
	if err := v.fn(rest); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func printUsage(verbs map[string]verb) {
	fmt.Fprintf(os.Stderr, "usage: evio <command> [arguments]\n\ncommands:\n")
	for _, name := range []string{"merge", "read", "write", "convert"} {
		fmt.Fprintf(os.Stderr, "\t%s\n", verbs[name].usage)
	}
}
