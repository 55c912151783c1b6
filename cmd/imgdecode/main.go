// Command imgdecode decodes image files on a worker pool and prints their size and channel count.
//
// Usage:
//
//	imgdecode [-workers 4] file...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-spiro/engine/loader"
)

func main() {
	workers := flag.Int("workers", 4, "maximum concurrent decodes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: imgdecode [-workers n] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(flag.Args(), *workers))
}

func run(paths []string, workers int) int {
	l := loader.NewLoader(loader.WithWorkers(workers))
	defer l.Release()

	failed := 0
	for _, res := range l.DecodeAll(paths) {
		if res.Image.Empty() {
			failed++
			fmt.Printf("%s\tfailed\n", res.Path)
			continue
		}
		fmt.Printf("%s\t%dx%d\t%d channels\t%d bytes\n", res.Path, res.Image.Width, res.Image.Height, res.Image.Components, len(res.Image.Pixels))
	}

	if failed > 0 {
		return 1
	}
	return 0
}
