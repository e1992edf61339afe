package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

// stubFacility records calls and returns canned results.
type stubFacility struct {
	calls []string

	extractResult *facility.ExtractionResult
	extractErr    error
	transform     string
	transformErr  error
	attachErr     error
	lastArgs      []string
}

func (s *stubFacility) record(name string, args ...string) {
	s.calls = append(s.calls, name)
	s.lastArgs = args
}

func (s *stubFacility) ExtractXBRLFromOFD(_ context.Context, ofdPath string) (*facility.ExtractionResult, error) {
	s.record("ExtractXBRLFromOFD", ofdPath)
	return s.extractResult, s.extractErr
}

func (s *stubFacility) ExtractXBRLFromOFDToFile(_ context.Context, ofdPath, outputFile string) (*facility.ExtractionResult, error) {
	s.record("ExtractXBRLFromOFDToFile", ofdPath, outputFile)
	return s.extractResult, s.extractErr
}

func (s *stubFacility) ExtractXBRLFromPDF(_ context.Context, pdfPath string) (*facility.ExtractionResult, error) {
	s.record("ExtractXBRLFromPDF", pdfPath)
	return s.extractResult, s.extractErr
}

func (s *stubFacility) ExtractXBRLFromPDFToFile(_ context.Context, pdfPath, outputFile string) (*facility.ExtractionResult, error) {
	s.record("ExtractXBRLFromPDFToFile", pdfPath, outputFile)
	return s.extractResult, s.extractErr
}

func (s *stubFacility) JSON2XBRL(_ context.Context, json, configID string) (string, error) {
	s.record("JSON2XBRL", json, configID)
	return s.transform, s.transformErr
}

func (s *stubFacility) XBRL2JSON(_ context.Context, xbrl, configID string) (string, error) {
	s.record("XBRL2JSON", xbrl, configID)
	return s.transform, s.transformErr
}

func (s *stubFacility) XML2JSON(_ context.Context, xml string) (string, error) {
	s.record("XML2JSON", xml)
	return s.transform, s.transformErr
}

func (s *stubFacility) ExtractAttachFromPDF(_ context.Context, pdfPath, outputDir string) error {
	s.record("ExtractAttachFromPDF", pdfPath, outputDir)
	return s.attachErr
}

func (s *stubFacility) ExtractXMLFromPDF(_ context.Context, pdfPath string) (string, error) {
	s.record("ExtractXMLFromPDF", pdfPath)
	return s.transform, s.transformErr
}

func (s *stubFacility) ExtractXMLFromCEBPDF(_ context.Context, pdfPath string) (string, error) {
	s.record("ExtractXMLFromCEBPDF", pdfPath)
	return s.transform, s.transformErr
}

func dispatch(t *testing.T, f facility.Facility, method string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := NewDispatcher(f).Dispatch(context.Background(), &Invocation{ID: "test", Method: method, Args: args}, &out)
	return out.String(), err
}

func decodeEnvelope(t *testing.T, line string) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("dispatcher:helpers_test - output is not a JSON object: %q: %v", line, err)
	}
	return m
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("dispatcher:helpers_test - write %s: %v", p, err)
	}
	return p
}

func strPtr(s string) *string {
	return &s
}
