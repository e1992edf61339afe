package dispatcher

import (
	"context"
	"io"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

// Method names accepted by the dispatcher.
const (
	MethodExtractXBRLFromOFD   = "extractXBRLFromOFD"
	MethodExtractXBRLFromPDF   = "extractXBRLFromPDF"
	MethodJSON2XBRL            = "json2Xbrl"
	MethodXBRL2JSON            = "xbrl2Json"
	MethodXBRL2JSONFromFile    = "xbrl2JsonFromFile"
	MethodXML2JSON             = "xml2Json"
	MethodExtractAttachFromPDF = "extractAttachFromPDF"
	MethodExtractXMLFromPDF    = "extractXMLFromPDF"
	MethodExtractXMLFromCEBPDF = "extractXMLFromCEBPDF"
)

// Kind describes the shape of an operation's result.
type Kind int

const (
	// KindSingleArgTransform takes one string and prints the returned string.
	KindSingleArgTransform Kind = iota
	// KindTwoArgTransform takes two strings and prints the returned string.
	KindTwoArgTransform
	// KindFileExtraction reads an input file and prints an extraction envelope.
	KindFileExtraction
	// KindSideEffect writes to disk and prints a fixed status envelope.
	KindSideEffect
)

func (k Kind) String() string {
	switch k {
	case KindSingleArgTransform:
		return "single-arg-transform"
	case KindTwoArgTransform:
		return "two-arg-transform"
	case KindFileExtraction:
		return "file-extraction"
	case KindSideEffect:
		return "side-effect"
	default:
		return "unknown"
	}
}

type (
	unaryFunc         func(ctx context.Context, arg string) (string, error)
	binaryFunc        func(ctx context.Context, arg0, arg1 string) (string, error)
	sideEffectFunc    func(ctx context.Context, arg0, arg1 string) error
	extractFunc       func(ctx context.Context, input string) (*facility.ExtractionResult, error)
	extractToFileFunc func(ctx context.Context, input, output string) (*facility.ExtractionResult, error)

	runFunc func(ctx context.Context, args []string, w io.Writer) error
)

// Operation describes one dispatchable method.
type Operation struct {
	Name    string
	Arities []int
	Kind    Kind
	Summary string

	run runFunc
}

// Accepts reports whether n arguments are valid for the operation.
func (op *Operation) Accepts(n int) bool {
	for _, a := range op.Arities {
		if a == n {
			return true
		}
	}
	return false
}

// operationTable binds every method name to a facility method value.
func (d *Dispatcher) operationTable() []*Operation {
	f := d.facility
	return []*Operation{
		{
			Name:    MethodExtractXBRLFromOFD,
			Arities: []int{0, 1, 2},
			Kind:    KindFileExtraction,
			Summary: "<ofdFile> [outputFile]  extract the embedded XBRL instance from an OFD file",
			run:     d.extraction(MethodExtractXBRLFromOFD, f.ExtractXBRLFromOFD, f.ExtractXBRLFromOFDToFile),
		},
		{
			Name:    MethodExtractXBRLFromPDF,
			Arities: []int{0, 1, 2},
			Kind:    KindFileExtraction,
			Summary: "<pdfFile> [outputFile]  extract the embedded XBRL instance from a PDF file",
			run:     d.extraction(MethodExtractXBRLFromPDF, f.ExtractXBRLFromPDF, f.ExtractXBRLFromPDFToFile),
		},
		{
			Name:    MethodJSON2XBRL,
			Arities: []int{2},
			Kind:    KindTwoArgTransform,
			Summary: "<json> <configId>         convert voucher JSON to an XBRL instance",
			run:     d.binary(MethodJSON2XBRL, f.JSON2XBRL),
		},
		{
			Name:    MethodXBRL2JSON,
			Arities: []int{2},
			Kind:    KindTwoArgTransform,
			Summary: "<xbrl> <configId>         convert an XBRL instance to voucher JSON",
			run:     d.binary(MethodXBRL2JSON, f.XBRL2JSON),
		},
		{
			Name:    MethodXBRL2JSONFromFile,
			Arities: []int{2},
			Kind:    KindTwoArgTransform,
			Summary: "<xbrlFile> <configId>     like xbrl2Json, reading the instance from a file",
			run:     d.xbrl2JSONFromFile,
		},
		{
			Name:    MethodXML2JSON,
			Arities: []int{1},
			Kind:    KindSingleArgTransform,
			Summary: "<xml>                     convert an XML voucher to JSON",
			run:     d.unary(MethodXML2JSON, f.XML2JSON),
		},
		{
			Name:    MethodExtractAttachFromPDF,
			Arities: []int{2},
			Kind:    KindSideEffect,
			Summary: "<pdfFile> <outputDir>     write every PDF attachment into outputDir",
			run:     d.sideEffect(MethodExtractAttachFromPDF, f.ExtractAttachFromPDF),
		},
		{
			Name:    MethodExtractXMLFromPDF,
			Arities: []int{1},
			Kind:    KindSingleArgTransform,
			Summary: "<pdfFile>                 print the XML voucher embedded in a treasury payment PDF",
			run:     d.unary(MethodExtractXMLFromPDF, f.ExtractXMLFromPDF),
		},
		{
			Name:    MethodExtractXMLFromCEBPDF,
			Arities: []int{1},
			Kind:    KindSingleArgTransform,
			Summary: "<pdfFile>                 print the XML voucher carried by a CEB receipt PDF",
			run:     d.unary(MethodExtractXMLFromCEBPDF, f.ExtractXMLFromCEBPDF),
		},
	}
}
