package main

import (
	"flag"
	"fmt"

	evio "github.com/JeffersonLab/go-evio"
)

// cmdRead opens an evio file and dumps every event's parsed tree to
// stdout, the way a developer would eyeball a capture during debugging.
func cmdRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: evio read <file>")
	}

	r, err := evio.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("version=%d order=%v events=%d dictionary=%t\n",
		r.GetEvioVersion(), r.GetByteOrder(), r.GetEventCount(), r.GetDictionaryXML() != "")

	for i := 1; i <= r.GetEventCount(); i++ {
		node, err := r.ParseEvent(i)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		fmt.Printf("--- event %d ---\n%s", i, node.String())
	}
	return nil
}
