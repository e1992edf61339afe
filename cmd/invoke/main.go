// Package main is the entrypoint for the voucher invoker (binary name "invoke").
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyg/voucher-invoker/internal/invoker"
)

const usage = `Usage: invoke <method> [arg ...]

Runs one conversion method and prints its result as a single line on stdout.
Diagnostics go to stderr. Exit status is 0 on completion, including {"error": ...} results,
and 1 on an unknown method, a wrong argument count or a failed conversion.
A missing or unknown method lists the methods on stderr.

Environment: LOG_LEVEL (info), LOG_FORMAT (text|json), INVOKER_ENV_FILE (.env), INVOKER_OUTPUT_DIR,
INVOKER_TAXONOMY_FILE, INVOKER_FACILITY_VERSION (^1.0.0), INVOKER_OFD_VERSION (>=1.0), INVOKER_PDF_MAX_BYTES.
`

// isHelp matches the conventional help spellings. They are not methods and still fail as unknown.
func isHelp(arg string) bool {
	switch arg {
	case "help", "-h", "--help":
		return true
	}
	return false
}

// newRootCommand builds the CLI. The invocation's exit code is stored in exitCode.
func newRootCommand(stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <method> [arg ...]",
		Short: "Run one XBRL, XML, PDF or OFD conversion method",
		// Method arguments are passed through verbatim, even when they look like flags.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || isHelp(args[0]) {
				fmt.Fprint(stderr, usage)
			}
			*exitCode = invoker.Run(cmd.Context(), args, invoker.Options{Stdout: stdout, Stderr: stderr})
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := invoker.ExitOK
	root := newRootCommand(os.Stdout, os.Stderr, &code)
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "invoke: %v\n", err)
		code = invoker.ExitFailure
	}

	stop()
	os.Exit(code)
}
