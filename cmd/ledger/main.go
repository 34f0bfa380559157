// Command ledger is the CLI entrypoint for the spreadsheet engine: a
// line-oriented REPL, a websocket push server, and a batch CSV converter.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"liveledger/live"
	"liveledger/sheet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
		return
	case "repl":
		os.Exit(replCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "csv":
		os.Exit(csvCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  ledger <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  repl [-seed=name] [-rows=N] [-cols=N]   start the line-oriented REPL\n")
	fmt.Fprintf(os.Stderr, "  serve [-addr=:8080]                     start the websocket push server\n")
	fmt.Fprintf(os.Stderr, "  csv -in=in.csv -out=out.csv [-formulas] batch convert/recalculate a CSV file\n")
}

func serveCommand(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	static := fs.String("static", "", "directory of static assets to serve at /")
	seed := fs.String("seed", "", "seed the sheet with example data before serving")
	rows := fs.Int("rows", 100, "sheet rows")
	cols := fs.Int("cols", 26, "sheet columns")
	fs.Parse(args)

	s := sheet.NewSheet("sheet1", *rows, *cols)
	if *seed != "" {
		sheet.Seed(*seed, s)
	}

	srv := live.NewServer(s)
	if err := srv.Start(*addr, *static); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}

func csvCommand(args []string) int {
	fs := flag.NewFlagSet("csv", flag.ExitOnError)
	in := fs.String("in", "", "input CSV path")
	out := fs.String("out", "", "output CSV path")
	formulas := fs.Bool("formulas", false, "preserve formula text instead of flattening to values")
	rows := fs.Int("rows", 1000, "sheet rows")
	cols := fs.Int("cols", 100, "sheet columns")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "csv: -in and -out are required")
		return 2
	}

	inFile, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "csv: %v\n", err)
		return 1
	}
	defer inFile.Close()

	s := sheet.NewSheet("sheet1", *rows, *cols)
	if err := s.LoadCSV(inFile, *formulas); err != nil {
		fmt.Fprintf(os.Stderr, "csv: load: %v\n", err)
		return 1
	}
	s.Recalculate()

	outFile, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "csv: %v\n", err)
		return 1
	}
	defer outFile.Close()

	if err := s.SaveCSV(outFile, *formulas); err != nil {
		fmt.Fprintf(os.Stderr, "csv: save: %v\n", err)
		return 1
	}
	return 0
}

func replCommand(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	seed := fs.String("seed", "", "seed the sheet with example data ("+strings.Join(sheet.SeedNames(), ", ")+")")
	rows := fs.Int("rows", 100, "sheet rows")
	cols := fs.Int("cols", 26, "sheet columns")
	fs.Parse(args)

	s := sheet.NewSheet("sheet1", *rows, *cols)
	if *seed != "" {
		sheet.Seed(*seed, s)
	}

	r := newRepl(s)
	return r.run()
}
