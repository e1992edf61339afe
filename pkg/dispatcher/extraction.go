package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

const extractLogPrefix = "dispatcher:extraction"

// Messages of the extraction envelope.
const (
	msgNoInputFile    = "No input file specified"
	msgInputNotFound  = "Input file not found: "
	msgNoResult       = "No result returned"
	msgNoXBRLPath     = "No XBRL file path available"
	msgFileNotFound   = "File not found: "
	msgFailedReadFile = "Failed to read file: "
)

func (d *Dispatcher) extraction(name string, one extractFunc, two extractToFileFunc) runFunc {
	return func(ctx context.Context, args []string, w io.Writer) error {
		env, err := d.extract(ctx, name, args, one, two)
		if err != nil {
			return err
		}
		return writeEnvelope(w, env)
	}
}

// extract runs an extraction operation and builds its envelope.
// Missing input, an empty result and an unreadable XBRL file end up in the envelope;
// only facility failures and a bad argument count are returned as errors.
func (d *Dispatcher) extract(ctx context.Context, name string, args []string, one extractFunc, two extractToFileFunc) (*Envelope, error) {
	if len(args) == 0 {
		return ErrorEnvelope(msgNoInputFile), nil
	}

	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - input file not found: %s", extractLogPrefix, input))
		return ErrorEnvelope(msgInputNotFound + input), nil
	}
	slog.Info(fmt.Sprintf("%s - input file exists: %s (%d bytes)", extractLogPrefix, input, info.Size()))

	var result *facility.ExtractionResult
	switch len(args) {
	case 1:
		slog.Info(fmt.Sprintf("%s - calling %s(input)", extractLogPrefix, name))
		result, err = one(ctx, input)
	case 2:
		output := args[1]
		ensureParentDir(output)
		slog.Info(fmt.Sprintf("%s - calling %s(input, output)", extractLogPrefix, name))
		result, err = two(ctx, input, output)
	default:
		return nil, invalidArguments(name, len(args), []int{0, 1, 2})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed", name)
	}
	slog.Info(fmt.Sprintf("%s - %s returned", extractLogPrefix, name))

	if result == nil {
		slog.Warn(fmt.Sprintf("%s - %s returned no result", extractLogPrefix, name))
		return ErrorEnvelope(msgNoResult), nil
	}

	if result.XBRLFilePath == nil {
		slog.Info(fmt.Sprintf("%s - result has no XBRL file path", extractLogPrefix))
	}
	if result.VoucherType == nil {
		slog.Info(fmt.Sprintf("%s - result has no voucher type", extractLogPrefix))
	}
	xbrlPath := stringValue(result.XBRLFilePath)
	voucherType := stringValue(result.VoucherType)
	slog.Info(fmt.Sprintf("%s - xbrlFilePath=%s voucherType=%s", extractLogPrefix, xbrlPath, voucherType))

	env := NewEnvelope().
		Set(KeyXBRLFilePath, xbrlPath).
		Set(KeyVoucherType, voucherType)
	inlineContent(env, xbrlPath)
	return env, nil
}

// inlineContent sets exactly one of "content" or "error" on env.
func inlineContent(env *Envelope, xbrlPath string) {
	if xbrlPath == "" {
		slog.Warn(fmt.Sprintf("%s - no XBRL file path available", extractLogPrefix))
		env.Set(KeyError, msgNoXBRLPath)
		return
	}
	if _, err := os.Stat(xbrlPath); err != nil {
		slog.Warn(fmt.Sprintf("%s - XBRL file does not exist: %s", extractLogPrefix, xbrlPath))
		env.Set(KeyError, msgFileNotFound+xbrlPath)
		return
	}
	data, err := os.ReadFile(xbrlPath)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to read XBRL file: %v", extractLogPrefix, err))
		env.Set(KeyError, msgFailedReadFile+err.Error())
		return
	}
	slog.Info(fmt.Sprintf("%s - XBRL content length %d", extractLogPrefix, len(data)))
	env.Set(KeyContent, string(data))
}

// ensureParentDir creates the directory that will hold output. Failures are only traced.
func ensureParentDir(output string) {
	dir := filepath.Dir(output)
	if dir == "." || dir == "" {
		return
	}
	if _, err := os.Stat(dir); err == nil {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to create output directory %s: %v", extractLogPrefix, dir, err))
		return
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	slog.Info(fmt.Sprintf("%s - created output directory %s", extractLogPrefix, abs))
}
