package main

import (
	"fmt"

	evio "github.com/JeffersonLab/go-evio"
)

// cmdConvert re-encodes an evio container from one generation/flavor to
// another, carrying the dictionary and first event across if present.
func cmdConvert(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: evio convert <in> <inFmt> <out> <outFmt>   (fmt: evio4, evio6, hipo)")
	}
	inPath, _, outPath, outFmt := args[0], args[1], args[2], args[3]

	opts, err := formatOptions(outFmt)
	if err != nil {
		return err
	}

	r, err := evio.Open(inPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if dict := r.GetDictionaryXML(); dict != "" {
		opts = append(opts, evio.WithDictionaryXML(dict))
	}
	if first := r.GetFirstEvent(); first != nil {
		opts = append(opts, evio.WithFirstEvent(first))
	}
	opts = append(opts, evio.WithByteOrder(r.GetByteOrder()), evio.WithOverwrite(true))

	w, err := evio.NewWriter(outPath, opts...)
	if err != nil {
		return err
	}
	for i := 1; i <= r.GetEventCount(); i++ {
		raw, err := r.GetEvent(i)
		if err != nil {
			return err
		}
		if err := w.WriteEvent(raw); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("converted %d events from %s to %s (%s)\n", r.GetEventCount(), inPath, outPath, outFmt)
	return nil
}

func formatOptions(fmtName string) ([]evio.WriterOption, error) {
	switch fmtName {
	case "evio4":
		return []evio.WriterOption{evio.WithVersion(4)}, nil
	case "evio6":
		return []evio.WriterOption{evio.WithVersion(6)}, nil
	case "hipo":
		return []evio.WriterOption{evio.WithVersion(6), evio.WithHIPO(true)}, nil
	default:
		return nil, fmt.Errorf("evio: unknown format %q (want evio4, evio6 or hipo)", fmtName)
	}
}
