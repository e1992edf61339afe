// Package native implements facility.Facility in Go.
//
// OFD containers are read with archive/zip, PDF embedded files with pdfcpu and PDF page
// text with go-fitz. XBRL instances are classified and generated against a taxonomy.Index.
package native

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyg/voucher-invoker/pkg/facility"
	"github.com/hyg/voucher-invoker/pkg/taxonomy"
)

const logPrefix = "native:native"

// Version is the implementation version reported by Facility.Version.
const Version = "1.0.0"

const (
	defaultOFDVersion  = ">=1.0"
	defaultPDFMaxBytes = 64 << 20
)

// Options configures a Facility.
type Options struct {
	// OutputDir receives extraction output when no output file is given.
	// Empty means <os.TempDir()>/voucher-invoker.
	OutputDir string
	// OFDVersion is the constraint the OFD.xml Version attribute must satisfy.
	OFDVersion string
	// PDFMaxBytes bounds the PDF size read into memory for page-text scanning.
	PDFMaxBytes int64
	// Taxonomy classifies extracted instances and resolves config IDs.
	Taxonomy *taxonomy.Index
}

// Facility is the native document-conversion backend.
type Facility struct {
	opts        Options
	attachments attachmentSource
	pages       pageTextSource
}

var (
	_ facility.Facility  = (*Facility)(nil)
	_ facility.Versioned = (*Facility)(nil)
)

// New creates a Facility. Zero-valued options take their defaults.
func New(opts Options) *Facility {
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(os.TempDir(), "voucher-invoker")
	}
	if opts.OFDVersion == "" {
		opts.OFDVersion = defaultOFDVersion
	}
	if opts.PDFMaxBytes <= 0 {
		opts.PDFMaxBytes = defaultPDFMaxBytes
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = taxonomy.NewIndex(taxonomy.DefaultTable())
	}
	return &Facility{
		opts:        opts,
		attachments: pdfcpuAttachments{},
		pages:       fitzPages{maxBytes: opts.PDFMaxBytes},
	}
}

// Version returns the implementation version.
func (f *Facility) Version() string {
	return Version
}

// defaultOutput returns <OutputDir>/extracted_<stem>.xbrl for an input file.
func (f *Facility) defaultOutput(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(f.opts.OutputDir, "extracted_"+stem+".xbrl")
}

// writeInstance stores an extracted XBRL instance and builds the extraction result.
func (f *Facility) writeInstance(ctx context.Context, op, output string, data []byte) (*facility.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, facility.NewError(op, facility.CodeInternalError, "cancelled", err)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, facility.NewError(op, facility.CodeInternalError, "create output directory "+dir, err)
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return nil, facility.NewError(op, facility.CodeInternalError, "write "+output, err)
	}
	slog.Info(fmt.Sprintf("%s - %s wrote %d bytes to %s", logPrefix, op, len(data), output))

	result := &facility.ExtractionResult{XBRLFilePath: &output}
	if voucherType, ok := f.classify(data); ok {
		result.VoucherType = &voucherType
	} else {
		slog.Warn(fmt.Sprintf("%s - %s could not classify the instance in %s", logPrefix, op, output))
	}
	return result, nil
}

// classify returns the voucher type of an XBRL instance, or false when no taxonomy entry matches.
func (f *Facility) classify(data []byte) (string, bool) {
	info, err := inspectInstance(data)
	if err != nil {
		return "", false
	}
	entry, ok := f.opts.Taxonomy.Classify(info.SchemaRef, info.Namespaces)
	if !ok {
		return "", false
	}
	return entry.VoucherType, true
}
