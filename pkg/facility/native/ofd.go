package native

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/hyg/voucher-invoker/pkg/facility"
	"github.com/hyg/voucher-invoker/pkg/semver"
)

const ofdLogPrefix = "native:ofd"

const ofdMainEntry = "OFD.xml"

// ExtractXBRLFromOFD extracts the XBRL instance of an OFD file to <OutputDir>/extracted_<stem>.xbrl.
func (f *Facility) ExtractXBRLFromOFD(ctx context.Context, ofdPath string) (*facility.ExtractionResult, error) {
	return f.ExtractXBRLFromOFDToFile(ctx, ofdPath, f.defaultOutput(ofdPath))
}

// ExtractXBRLFromOFDToFile extracts the XBRL instance of an OFD file to outputFile.
// A container without an XBRL instance yields an empty result, not an error.
func (f *Facility) ExtractXBRLFromOFDToFile(ctx context.Context, ofdPath, outputFile string) (*facility.ExtractionResult, error) {
	const op = "extractXBRLFromOFD"

	zr, err := zip.OpenReader(ofdPath)
	if err != nil {
		return nil, facility.NewError(op, facility.CodeInvalidInput, "not an OFD container: "+ofdPath, err)
	}
	defer zr.Close()

	if err := f.checkOFDVersion(&zr.Reader); err != nil {
		return nil, facility.NewError(op, facility.CodeUnsupported, "unsupported OFD container", err)
	}

	entry, err := findXBRLEntry(&zr.Reader, f.opts.PDFMaxBytes)
	if err != nil {
		return nil, facility.NewError(op, facility.CodeInvalidInput, "read OFD container", err)
	}
	if entry == nil {
		slog.Warn(fmt.Sprintf("%s - no XBRL instance in %s", ofdLogPrefix, ofdPath))
		return &facility.ExtractionResult{}, nil
	}
	slog.Info(fmt.Sprintf("%s - found XBRL instance %s in %s", ofdLogPrefix, entry.name, ofdPath))

	return f.writeInstance(ctx, op, outputFile, entry.data)
}

func (f *Facility) checkOFDVersion(zr *zip.Reader) error {
	var main *zip.File
	for _, zf := range zr.File {
		if strings.EqualFold(path.Base(zf.Name), ofdMainEntry) && !strings.Contains(strings.Trim(zf.Name, "/"), "/") {
			main = zf
			break
		}
	}
	if main == nil {
		return fmt.Errorf("%s - missing %s", ofdLogPrefix, ofdMainEntry)
	}

	data, err := readEntry(main, f.opts.PDFMaxBytes)
	if err != nil {
		return err
	}
	root, err := rootElement(data)
	if err != nil {
		return fmt.Errorf("%s - parse %s: %w", ofdLogPrefix, ofdMainEntry, err)
	}
	if root.Name.Local != "OFD" {
		return fmt.Errorf("%s - %s root element is %s", ofdLogPrefix, ofdMainEntry, root.Name.Local)
	}

	version := attrValue(root.Attr, "Version")
	if version == "" {
		slog.Warn(fmt.Sprintf("%s - %s carries no Version attribute", ofdLogPrefix, ofdMainEntry))
		return nil
	}
	return semver.CheckConstraint(version, f.opts.OFDVersion)
}

type archiveEntry struct {
	name string
	data []byte
}

// findXBRLEntry returns the first *.xbrl entry, else the first *.xml entry whose root element is xbrl.
func findXBRLEntry(zr *zip.Reader, maxBytes int64) (*archiveEntry, error) {
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(path.Ext(zf.Name), ".xbrl") {
			continue
		}
		data, err := readEntry(zf, maxBytes)
		if err != nil {
			return nil, err
		}
		return &archiveEntry{name: zf.Name, data: data}, nil
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(path.Ext(zf.Name), ".xml") {
			continue
		}
		data, err := readEntry(zf, maxBytes)
		if err != nil {
			return nil, err
		}
		if isXBRLInstance(data) {
			return &archiveEntry{name: zf.Name, data: data}, nil
		}
	}
	return nil, nil
}

func readEntry(zf *zip.File, maxBytes int64) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("%s - open %s: %w", ofdLogPrefix, zf.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s - read %s: %w", ofdLogPrefix, zf.Name, err)
	}
	if n > maxBytes {
		return nil, fmt.Errorf("%s - %s is larger than %d bytes", ofdLogPrefix, zf.Name, maxBytes)
	}
	return buf.Bytes(), nil
}
