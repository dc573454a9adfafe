package main

import (
	"flag"
	"fmt"

	evio "github.com/JeffersonLab/go-evio"
	"github.com/JeffersonLab/go-evio/dtype"
	"github.com/JeffersonLab/go-evio/tree"
)

// cmdWrite synthesizes n simple events (a bank of int32 [0,1,2,...,i]) and
// writes them to out.evio, exercising the writer the same way the bundled
// `write <n>` utility does in the original toolset.
func cmdWrite(args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	out := fs.String("o", "out.evio", "output file path")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: evio write [-o<output>] <n>")
	}

	var n int
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &n); err != nil || n < 0 {
		return fmt.Errorf("evio: invalid event count %q", fs.Arg(0))
	}

	w, err := evio.NewWriter(*out)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		bank := tree.NewBank(1, 1, dtype.Int32)
		data := make([]int32, i+1)
		for k := range data {
			data[k] = int32(k)
		}
		if err := bank.SetInt32Data(data); err != nil {
			return err
		}
		if err := w.WriteEvent(bank); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %d events to %s\n", n, *out)
	return nil
}
