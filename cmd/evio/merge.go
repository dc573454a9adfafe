package main

import (
	"flag"
	"fmt"

	evio "github.com/JeffersonLab/go-evio"
)

// cmdMerge concatenates the events of one or more input files, in order,
// into a single output file, each input's events passed through unparsed.
func cmdMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	out := fs.String("o", "", "output file path")
	fs.Parse(args)
	if *out == "" || fs.NArg() == 0 {
		return fmt.Errorf("usage: evio merge -o<output> <inputs...>")
	}

	w, err := evio.NewWriter(*out, evio.WithOverwrite(true))
	if err != nil {
		return err
	}

	total := 0
	for _, path := range fs.Args() {
		if err := mergeOne(w, path, &total); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("merged %d events from %d files into %s\n", total, fs.NArg(), *out)
	return nil
}

func mergeOne(w *evio.Writer, path string, total *int) error {
	r, err := evio.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for i := 1; i <= r.GetEventCount(); i++ {
		raw, err := r.GetEvent(i)
		if err != nil {
			return err
		}
		if err := w.WriteEvent(raw); err != nil {
			return err
		}
		*total++
	}
	return nil
}
