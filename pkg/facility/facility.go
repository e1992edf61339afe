// Package facility declares the document-conversion operations the dispatcher invokes.
package facility

import "context"

// ExtractionResult is returned by the XBRL extraction operations. A nil field means the
// facility could not provide that value.
type ExtractionResult struct {
	// XBRLFilePath is the path of the XBRL instance written by the extraction.
	XBRLFilePath *string
	// VoucherType classifies the extracted voucher (e.g. "bank_receipt").
	VoucherType *string
}

// NewExtractionResult builds a result with both fields set; empty strings are kept as empty, not nil.
func NewExtractionResult(xbrlFilePath, voucherType string) *ExtractionResult {
	return &ExtractionResult{XBRLFilePath: &xbrlFilePath, VoucherType: &voucherType}
}

// Facility is the set of operations a document-processing backend exposes.
type Facility interface {
	// ExtractXBRLFromOFD extracts the embedded XBRL instance from an OFD file into a default location.
	ExtractXBRLFromOFD(ctx context.Context, ofdPath string) (*ExtractionResult, error)
	// ExtractXBRLFromOFDToFile extracts the embedded XBRL instance from an OFD file into outputFile.
	ExtractXBRLFromOFDToFile(ctx context.Context, ofdPath, outputFile string) (*ExtractionResult, error)
	// ExtractXBRLFromPDF extracts the embedded XBRL instance from a PDF file into a default location.
	ExtractXBRLFromPDF(ctx context.Context, pdfPath string) (*ExtractionResult, error)
	// ExtractXBRLFromPDFToFile extracts the embedded XBRL instance from a PDF file into outputFile.
	ExtractXBRLFromPDFToFile(ctx context.Context, pdfPath, outputFile string) (*ExtractionResult, error)

	JSON2XBRL(ctx context.Context, json, configID string) (string, error)
	XBRL2JSON(ctx context.Context, xbrl, configID string) (string, error)
	XML2JSON(ctx context.Context, xml string) (string, error)

	// ExtractAttachFromPDF writes every file embedded in the PDF into outputDir.
	ExtractAttachFromPDF(ctx context.Context, pdfPath, outputDir string) error
	// ExtractXMLFromPDF returns the XML voucher embedded in a treasury payment PDF.
	ExtractXMLFromPDF(ctx context.Context, pdfPath string) (string, error)
	// ExtractXMLFromCEBPDF returns the XML voucher carried by a CEB bank receipt PDF.
	ExtractXMLFromCEBPDF(ctx context.Context, pdfPath string) (string, error)
}

// Versioned is implemented by facilities that report an implementation version.
type Versioned interface {
	Version() string
}
