package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/msgpack"
)

func main() {
	var (
		decode      = flag.Bool("decode", false, "Decode MessagePack input to JSON")
		encode      = flag.Bool("encode", false, "Encode JSON input to MessagePack")
		diag        = flag.Bool("diag", false, "Print diagnostic notation, one line per value")
		slurp       = flag.Bool("s", false, "Decode the whole stream into a JSON array")
		compact     = flag.Bool("c", false, "Compact JSON output")
		interactive = flag.Bool("i", false, "Interactive inspector with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging to stderr")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		msgpack.SetLogger(logger)
	}

	modes := 0
	for _, m := range []bool{*decode, *encode, *diag, *interactive} {
		if m {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintln(os.Stderr, "Usage: msgpack -decode [-s] [-c] [file]")
		fmt.Fprintln(os.Stderr, "       msgpack -encode [file.json]")
		fmt.Fprintln(os.Stderr, "       msgpack -diag [file]")
		fmt.Fprintln(os.Stderr, "       msgpack -i <file>  (interactive inspector)")
		fmt.Fprintln(os.Stderr, "Input is read from the file argument or stdin.")
		os.Exit(1)
	}

	if *interactive {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: msgpack -i <file>")
			os.Exit(1)
		}
		if err := runInteractive(flag.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch {
	case *decode:
		err = runDecode(flag.Arg(0), *slurp, *compact)
	case *encode:
		err = runEncode(flag.Arg(0))
	case *diag:
		err = runDiag(flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
