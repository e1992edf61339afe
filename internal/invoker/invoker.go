// Package invoker runs a single method invocation: configuration, logging, facility wiring,
// dispatch and the process exit status.
package invoker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hyg/voucher-invoker/internal/config"
	"github.com/hyg/voucher-invoker/internal/logging"
	"github.com/hyg/voucher-invoker/pkg/dispatcher"
	"github.com/hyg/voucher-invoker/pkg/facility"
	"github.com/hyg/voucher-invoker/pkg/facility/native"
	"github.com/hyg/voucher-invoker/pkg/semver"
	"github.com/hyg/voucher-invoker/pkg/taxonomy"
)

const logPrefix = "invoker:invoker"

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// FacilityFactory builds the facility an invocation dispatches to.
type FacilityFactory func(cfg *config.Config, ix *taxonomy.Index) facility.Facility

// Options configures Run.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// NewFacility defaults to NativeFacility.
	NewFacility FacilityFactory
}

// NativeFacility builds the native facility from configuration.
func NativeFacility(cfg *config.Config, ix *taxonomy.Index) facility.Facility {
	return native.New(native.Options{
		OutputDir:   cfg.OutputDir,
		OFDVersion:  cfg.OFDVersion,
		PDFMaxBytes: cfg.PDFMaxBytes,
		Taxonomy:    ix,
	})
}

// Run executes `<method> [arg ...]` and returns the process exit code.
// The result line goes to Stdout; everything else, including failure traces, goes to Stderr.
func Run(ctx context.Context, args []string, opts Options) (code int) {
	if opts.NewFacility == nil {
		opts.NewFacility = NativeFacility
	}
	logging.Setup(opts.Stderr, "info", "text")

	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - invocation panicked: %v", logPrefix, r))
			fmt.Fprintf(opts.Stderr, "panic: %v\n\n%s", r, debug.Stack())
			code = ExitFailure
		}
	}()

	cfg, err := config.LoadConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		report(opts.Stderr, errors.Wrap(err, "configuration"))
		return ExitFailure
	}

	if len(args) == 0 {
		report(opts.Stderr, errors.New("missing method name"))
		writeMethods(opts.Stderr)
		return ExitFailure
	}
	inv := &dispatcher.Invocation{ID: uuid.NewString(), Method: args[0], Args: args[1:]}
	logging.Setup(opts.Stderr, cfg.LogLevel, cfg.LogFormat, "run", inv.ID, "method", inv.Method)

	d, err := newDispatcher(cfg, opts.NewFacility)
	if err != nil {
		report(opts.Stderr, err)
		return ExitFailure
	}

	if err := d.Dispatch(ctx, inv, opts.Stdout); err != nil {
		report(opts.Stderr, err)
		if dispatcher.IsDispatchError(err, dispatcher.CodeUnknownMethod) {
			writeMethods(opts.Stderr)
		}
		return ExitFailure
	}
	slog.Info(fmt.Sprintf("%s - %s completed", logPrefix, inv.Method))
	return ExitOK
}

func newDispatcher(cfg *config.Config, factory FacilityFactory) (*dispatcher.Dispatcher, error) {
	table, err := taxonomy.LoadTable(cfg.TaxonomyFile)
	if err != nil {
		return nil, errors.Wrap(err, "load taxonomy")
	}
	ix := taxonomy.NewIndex(table)
	slog.Debug(fmt.Sprintf("%s - taxonomy %s %s with %d configs", logPrefix, ix.Name(), ix.Version(), len(ix.IDs())))

	f := factory(cfg, ix)
	if v, ok := f.(facility.Versioned); ok {
		if err := semver.CheckConstraint(v.Version(), cfg.FacilityVersion); err != nil {
			return nil, errors.Wrap(err, "facility version")
		}
		slog.Debug(fmt.Sprintf("%s - facility version %s satisfies %s", logPrefix, v.Version(), cfg.FacilityVersion))
	}
	return dispatcher.NewDispatcher(f), nil
}

// report writes the failure category, message and stack trace to w.
func report(w io.Writer, err error) {
	slog.Error(fmt.Sprintf("%s - invocation failed", logPrefix), "category", Category(err), "error", err.Error())
	fmt.Fprintf(w, "%+v\n", err)
}

// writeMethods lists the methods after a missing or unknown method name.
func writeMethods(w io.Writer) {
	fmt.Fprintln(w, "\nMethods:")
	if err := WriteUsage(w); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to list methods: %v", logPrefix, err))
	}
}

// Category names the kind of failure: a dispatch or facility error code, else the Go type of the root cause.
func Category(err error) string {
	var de *dispatcher.DispatchError
	if errors.As(err, &de) {
		return de.Code
	}
	var fe *facility.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fmt.Sprintf("%T", errors.Cause(err))
}

// WriteUsage writes the method table and the config IDs known to the taxonomy.
func WriteUsage(w io.Writer) error {
	ix := taxonomy.NewIndex(taxonomy.DefaultTable())
	if cfg, err := config.LoadConfig(); err == nil {
		if table, err := taxonomy.LoadTable(cfg.TaxonomyFile); err == nil {
			ix = taxonomy.NewIndex(table)
		}
	}

	d := dispatcher.NewDispatcher(native.New(native.Options{Taxonomy: ix}))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, op := range d.Operations() {
		fmt.Fprintf(tw, "  %s\t%s\n", op.Name, op.Summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nConfig IDs (%s %s), usable as id, id@major or id@range:\n", ix.Name(), ix.Version())
	for _, id := range ix.IDs() {
		majors, err := ix.ListMajors(id, false)
		if err != nil {
			return err
		}
		for _, m := range majors {
			def := ""
			if m.IsDefault {
				def = ", default"
			}
			fmt.Fprintf(tw, "  %s@%d\tlatest %s (%s%s)\n", id, m.Major, m.LatestVersion, m.Status, def)
		}
	}
	return tw.Flush()
}
