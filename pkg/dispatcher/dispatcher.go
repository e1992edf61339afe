package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

const logPrefix = "dispatcher:dispatch"

// Dispatcher routes invocations to facility operations.
type Dispatcher struct {
	facility   facility.Facility
	operations map[string]*Operation
	order      []*Operation
}

// NewDispatcher creates a new Dispatcher bound to f.
func NewDispatcher(f facility.Facility) *Dispatcher {
	d := &Dispatcher{facility: f}
	d.order = d.operationTable()
	d.operations = make(map[string]*Operation, len(d.order))
	for _, op := range d.order {
		d.operations[op.Name] = op
	}
	return d
}

// Operations returns the dispatchable operations in table order.
func (d *Dispatcher) Operations() []*Operation {
	out := make([]*Operation, len(d.order))
	copy(out, d.order)
	return out
}

// Lookup returns the operation registered under method.
func (d *Dispatcher) Lookup(method string) (*Operation, bool) {
	op, ok := d.operations[method]
	return op, ok
}

// Dispatch runs inv and writes its single result line to w.
// Returned errors are fatal: a malformed invocation (*DispatchError) or a facility failure.
// Data conditions such as a missing input file are rendered to w and yield a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation, w io.Writer) error {
	slog.Info(fmt.Sprintf("%s - method=%s argCount=%d", logPrefix, inv.Method, len(inv.Args)))
	for i, arg := range inv.Args {
		slog.Info(fmt.Sprintf("%s - arg[%d]=%s", logPrefix, i, arg))
	}

	op, ok := d.Lookup(inv.Method)
	if !ok {
		return unknownMethod(inv.Method)
	}
	if !op.Accepts(len(inv.Args)) {
		return invalidArguments(op.Name, len(inv.Args), op.Arities)
	}

	slog.Info(fmt.Sprintf("%s - executing %s (%s)", logPrefix, op.Name, op.Kind))
	return op.run(ctx, inv.Args, w)
}

// --- handlers ---

func (d *Dispatcher) unary(name string, fn unaryFunc) runFunc {
	return func(ctx context.Context, args []string, w io.Writer) error {
		result, err := fn(ctx, args[0])
		if err != nil {
			return errors.Wrapf(err, "%s failed", name)
		}
		slog.Info(fmt.Sprintf("%s - %s completed, result length %d", logPrefix, name, len(result)))
		return writeLine(w, result)
	}
}

func (d *Dispatcher) binary(name string, fn binaryFunc) runFunc {
	return func(ctx context.Context, args []string, w io.Writer) error {
		result, err := fn(ctx, args[0], args[1])
		if err != nil {
			return errors.Wrapf(err, "%s failed", name)
		}
		slog.Info(fmt.Sprintf("%s - %s completed, result length %d", logPrefix, name, len(result)))
		return writeLine(w, result)
	}
}

func (d *Dispatcher) sideEffect(name string, fn sideEffectFunc) runFunc {
	return func(ctx context.Context, args []string, w io.Writer) error {
		if err := fn(ctx, args[0], args[1]); err != nil {
			return errors.Wrapf(err, "%s failed", name)
		}
		slog.Info(fmt.Sprintf("%s - %s completed", logPrefix, name))
		return writeEnvelope(w, NewEnvelope().
			Set(KeyStatus, "success").
			Set(KeyMessage, "Attachments extracted successfully"))
	}
}

// xbrl2JSONFromFile reports read and conversion failures as an error envelope instead of failing the process.
func (d *Dispatcher) xbrl2JSONFromFile(ctx context.Context, args []string, w io.Writer) error {
	path, configID := args[0], args[1]
	slog.Info(fmt.Sprintf("%s - reading XBRL from %s", logPrefix, path))

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to read %s: %v", logPrefix, path, err))
		return writeEnvelope(w, ErrorEnvelope(err.Error()))
	}
	slog.Info(fmt.Sprintf("%s - read %d bytes", logPrefix, len(data)))

	result, err := d.facility.XBRL2JSON(ctx, string(data), configID)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - xbrl2Json failed: %v", logPrefix, err))
		return writeEnvelope(w, ErrorEnvelope(err.Error()))
	}
	slog.Info(fmt.Sprintf("%s - xbrl2Json completed, result length %d", logPrefix, len(result)))
	return writeLine(w, result)
}

// --- helpers ---

func writeLine(w io.Writer, s string) error {
	if _, err := fmt.Fprintln(w, s); err != nil {
		return errors.Wrap(err, "write result")
	}
	return nil
}

func writeEnvelope(w io.Writer, env *Envelope) error {
	s, err := env.Render()
	if err != nil {
		return errors.WithStack(err)
	}
	return writeLine(w, s)
}
