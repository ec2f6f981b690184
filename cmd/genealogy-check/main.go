// Command genealogy-check validates a tree sequence table collection dump
// against the structural genealogy invariants and reports every problem found.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"traitcore/docs/schema"
	"traitcore/pkg/treeseq"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("genealogy-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		inputPath   string
		showVersion bool
	)
	fs.StringVar(&inputPath, "input", "-", "path to a table collection JSON dump, - for stdin")
	fs.BoolVar(&showVersion, "version", false, "print the record model version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		version, err := schema.RecordModelVersion()
		if err != nil {
			fmt.Fprintf(stderr, "record model version: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, version)
		return 0
	}

	problems, err := run(inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Genealogy validation failed: %v\n", err)
		return 1
	}
	if len(problems) > 0 {
		for _, problem := range problems {
			fmt.Fprintln(stdout, problem)
		}
		return 1
	}
	fmt.Fprintln(stdout, "Genealogy validation passed.")
	return 0
}

// run loads the table collection from the path, or from stdin when the path
// is "-", and returns the structural problems found.
func run(path string, stdin io.Reader) (problems []treeseq.Problem, err error) {
	var reader io.Reader = stdin
	if path != "" && path != "-" {
		file, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("read dump: %w", openErr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close dump: %w", cerr)
			}
		}()
		reader = file
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var collection treeseq.TableCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("parse dump: %w", err)
	}
	return treeseq.Validate(collection), nil
}
