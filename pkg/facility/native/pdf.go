package native

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

const pdfLogPrefix = "native:pdf"

func init() {
	// pdfcpu must not create its configuration directory under the user's home.
	api.DisableConfigDir()
}

// attachment is one file embedded in a PDF.
type attachment struct {
	Name string
	Data []byte
}

type attachmentSource interface {
	Attachments(ctx context.Context, pdfPath string) ([]attachment, error)
}

type pageTextSource interface {
	PageTexts(ctx context.Context, pdfPath string) ([]string, error)
}

// pdfcpuAttachments reads the embedded files of a PDF with pdfcpu.
type pdfcpuAttachments struct{}

func (pdfcpuAttachments) Attachments(ctx context.Context, pdfPath string) ([]attachment, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := api.ExtractAttachmentsRaw(f, "", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%s - read attachments of %s: %w", pdfLogPrefix, pdfPath, err)
	}

	out := make([]attachment, 0, len(raw))
	for _, a := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(a)
		if err != nil {
			return nil, fmt.Errorf("%s - read attachment %s: %w", pdfLogPrefix, a.FileName, err)
		}
		name := a.FileName
		if name == "" {
			name = a.ID
		}
		out = append(out, attachment{Name: name, Data: data})
	}
	return out, nil
}

// fitzPages reads page text with MuPDF, refusing documents larger than maxBytes.
type fitzPages struct {
	maxBytes int64
}

func (p fitzPages) PageTexts(ctx context.Context, pdfPath string) ([]string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	document, err := io.ReadAll(io.LimitReader(f, p.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(document)) > p.maxBytes {
		return nil, fmt.Errorf("%s - %s is larger than %d bytes", pdfLogPrefix, pdfPath, p.maxBytes)
	}

	doc, err := fitz.NewFromMemory(document)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ExtractXBRLFromPDF extracts the XBRL instance embedded in a PDF to <OutputDir>/extracted_<stem>.xbrl.
func (f *Facility) ExtractXBRLFromPDF(ctx context.Context, pdfPath string) (*facility.ExtractionResult, error) {
	return f.ExtractXBRLFromPDFToFile(ctx, pdfPath, f.defaultOutput(pdfPath))
}

// ExtractXBRLFromPDFToFile extracts the XBRL instance embedded in a PDF to outputFile.
// The first *.xbrl attachment wins, then the first *.xml attachment whose root is xbrl.
// A PDF without an XBRL attachment yields an empty result, not an error.
func (f *Facility) ExtractXBRLFromPDFToFile(ctx context.Context, pdfPath, outputFile string) (*facility.ExtractionResult, error) {
	const op = "extractXBRLFromPDF"

	atts, err := f.attachments.Attachments(ctx, pdfPath)
	if err != nil {
		return nil, facility.NewError(op, facility.CodeInvalidInput, "read PDF attachments", err)
	}

	instance := firstAttachment(atts, ".xbrl", nil)
	if instance == nil {
		instance = firstAttachment(atts, ".xml", isXBRLInstance)
	}
	if instance == nil {
		slog.Warn(fmt.Sprintf("%s - no XBRL attachment among %d in %s", pdfLogPrefix, len(atts), pdfPath))
		return &facility.ExtractionResult{}, nil
	}
	slog.Info(fmt.Sprintf("%s - found XBRL attachment %s in %s", pdfLogPrefix, instance.Name, pdfPath))

	return f.writeInstance(ctx, op, outputFile, instance.Data)
}

// ExtractAttachFromPDF writes every embedded file of a PDF into outputDir, creating it if needed.
func (f *Facility) ExtractAttachFromPDF(ctx context.Context, pdfPath, outputDir string) error {
	const op = "extractAttachFromPDF"

	atts, err := f.attachments.Attachments(ctx, pdfPath)
	if err != nil {
		return facility.NewError(op, facility.CodeInvalidInput, "read PDF attachments", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return facility.NewError(op, facility.CodeInternalError, "create "+outputDir, err)
	}

	for i, a := range atts {
		name := safeName(a.Name)
		if name == "" {
			name = "attachment_" + strconv.Itoa(i+1)
		}
		target := filepath.Join(outputDir, name)
		if err := os.WriteFile(target, a.Data, 0o644); err != nil {
			return facility.NewError(op, facility.CodeInternalError, "write "+target, err)
		}
		slog.Info(fmt.Sprintf("%s - wrote attachment %s (%d bytes)", pdfLogPrefix, target, len(a.Data)))
	}
	if len(atts) == 0 {
		slog.Warn(fmt.Sprintf("%s - %s has no attachments", pdfLogPrefix, pdfPath))
	}
	return nil
}

// ExtractXMLFromPDF returns the first XML file embedded in a PDF.
func (f *Facility) ExtractXMLFromPDF(ctx context.Context, pdfPath string) (string, error) {
	const op = "extractXMLFromPDF"

	atts, err := f.attachments.Attachments(ctx, pdfPath)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "read PDF attachments", err)
	}
	if a := firstAttachment(atts, ".xml", nil); a != nil {
		return string(a.Data), nil
	}
	return "", facility.NewError(op, facility.CodeNotFound, "no XML attachment in "+pdfPath, nil)
}

// ExtractXMLFromCEBPDF returns the XML voucher of a CEB receipt: an embedded XML file when
// present, otherwise the first <?xml ...?> document printed in the page text.
func (f *Facility) ExtractXMLFromCEBPDF(ctx context.Context, pdfPath string) (string, error) {
	const op = "extractXMLFromCEBPDF"

	atts, err := f.attachments.Attachments(ctx, pdfPath)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - attachments unavailable in %s: %v", pdfLogPrefix, pdfPath, err))
	}
	if a := firstAttachment(atts, ".xml", nil); a != nil {
		return string(a.Data), nil
	}

	pages, err := f.pages.PageTexts(ctx, pdfPath)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "read PDF page text", err)
	}
	doc, ok := findXMLDocument(strings.Join(pages, "\n"))
	if !ok {
		return "", facility.NewError(op, facility.CodeNotFound, "no XML document in "+pdfPath, nil)
	}
	slog.Info(fmt.Sprintf("%s - found XML document in page text of %s (%d bytes)", pdfLogPrefix, pdfPath, len(doc)))
	return doc, nil
}

func firstAttachment(atts []attachment, ext string, accept func([]byte) bool) *attachment {
	for i := range atts {
		if !strings.EqualFold(path.Ext(atts[i].Name), ext) {
			continue
		}
		if accept == nil || accept(atts[i].Data) {
			return &atts[i]
		}
	}
	return nil
}

// safeName keeps only the base name of an attachment so it cannot escape the output directory.
func safeName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// findXMLDocument returns the text from the first "<?xml" up to the end of its root element.
func findXMLDocument(text string) (string, bool) {
	for start := strings.Index(text, "<?xml"); start >= 0; {
		rest := text[start:]
		if end, ok := rootEnd(rest); ok {
			return rest[:end], true
		}
		next := strings.Index(rest[len("<?xml"):], "<?xml")
		if next < 0 {
			break
		}
		start += len("<?xml") + next
	}
	return "", false
}

// rootEnd returns the offset just past the root element's end tag.
func rootEnd(doc string) (int, bool) {
	dec := xml.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.Strict = false
	// Page text is already UTF-8 whatever the declaration says.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, false
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return int(dec.InputOffset()), true
			}
		}
	}
}
