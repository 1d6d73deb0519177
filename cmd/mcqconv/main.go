package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mind-engage/mcq-docgen/internal/convert"
	"github.com/mind-engage/mcq-docgen/internal/mcq"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mcqconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "Path to the question text file, or - for stdin")
	output := fs.String("output", "", "Path to the output file (defaults to the input name with the format's extension)")
	format := fs.String("format", "docx", "Output format: docx, qti or json")
	join := fs.String("join", string(mcq.JoinLines), "How stem and solution lines are joined: lines or space")
	batch := fs.Bool("batch", false, "Convert every *.txt file in -dir")
	dir := fs.String("dir", ".", "Directory to search for text files (used with -batch)")
	verbose := fs.Bool("verbose", false, "Enable verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	svc := convert.NewService(mcq.NewParser(mcq.ParseJoinMode(*join)), convert.WithDefaultFormat(*format))

	if *batch {
		return convertBatch(svc, *dir, *verbose, stdout, stderr)
	}
	if *input == "" {
		fmt.Fprintf(stderr, "Error: input file required\n")
		fmt.Fprintf(stderr, "Usage: mcqconv -input <txt-file|-> [-output <file>] [-format docx|qti|json] [-join lines|space] [-verbose]\n")
		return 1
	}

	var (
		text []byte
		err  error
	)
	if *input == "-" {
		text, err = io.ReadAll(stdin)
	} else {
		text, err = os.ReadFile(*input)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: cannot read input: %v\n", err)
		return 1
	}

	res, err := svc.Convert(context.Background(), convert.Request{Text: string(text)})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	dest := *output
	switch {
	case dest == "-":
		_, err = stdout.Write(res.Body)
	case dest == "" && *input == "-":
		dest = res.Filename
		fallthrough
	default:
		if dest == "" {
			dest = withExt(*input, res.Filename)
		}
		err = os.WriteFile(dest, res.Body, 0o644)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	if *verbose {
		fmt.Fprintf(stderr, "Converted %d questions -> %s (%d bytes)\n", res.Records, or(dest, "stdout"), len(res.Body))
	}
	return 0
}

func convertBatch(svc *convert.Service, dir string, verbose bool, stdout, stderr io.Writer) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading directory: %v\n", err)
		return 1
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "Error: no .txt files found in %s\n", dir)
		return 1
	}
	sort.Strings(files)

	failed := 0
	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "  %s: %v\n", path, err)
			failed++
			continue
		}
		res, err := svc.Convert(context.Background(), convert.Request{Text: string(text)})
		if err != nil {
			fmt.Fprintf(stderr, "  %s: %v\n", path, err)
			failed++
			continue
		}
		dest := withExt(path, res.Filename)
		if err := os.WriteFile(dest, res.Body, 0o644); err != nil {
			fmt.Fprintf(stderr, "  %s: %v\n", dest, err)
			failed++
			continue
		}
		if verbose {
			fmt.Fprintf(stdout, "  %s: %d questions -> %s\n", path, res.Records, dest)
		}
	}
	fmt.Fprintf(stdout, "Converted %d of %d files\n", len(files)-failed, len(files))
	if failed > 0 {
		return 1
	}
	return 0
}

// withExt swaps path's extension for the one the renderer chose for name.
func withExt(path, name string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + filepath.Ext(name)
}

func or(v, def string) string {
	if v == "" || v == "-" {
		return def
	}
	return v
}
