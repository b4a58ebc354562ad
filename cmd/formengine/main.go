// Package main provides the formengine CLI. It builds a form from a
// structure, a layout and prefill data, then renders it, fills it from the
// terminal or prints its captured record.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if err := execRootCmd(os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execRootCmd runs the command line args, writing command output to out.
// A nil params gets the defaults.
func execRootCmd(args []string, out io.Writer, p *params) error {
	if p == nil {
		p = &params{}
	}
	rootCmd := newRootCmd(p)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.Execute()
}
