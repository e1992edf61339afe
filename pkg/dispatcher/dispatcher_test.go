package dispatcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

// TestDispatch_UnknownMethod verifies that unknown methods are fatal and print nothing.
func TestDispatch_UnknownMethod(t *testing.T) {
	names := []string{"", "nonexistent", "ExtractXBRLFromOFD", "xbrl2json", "extractXBRLFromOFD ", "health"}
	for _, name := range names {
		stub := &stubFacility{}
		out, err := dispatch(t, stub, name, "a", "b")

		if err == nil {
			t.Fatalf("dispatcher:dispatcher_test - expected error for method %q", name)
		}
		if !IsDispatchError(err, CodeUnknownMethod) {
			t.Errorf("dispatcher:dispatcher_test - expected %s for %q, got %v", CodeUnknownMethod, name, err)
		}
		if out != "" {
			t.Errorf("dispatcher:dispatcher_test - expected empty stdout for %q, got %q", name, out)
		}
		if len(stub.calls) != 0 {
			t.Errorf("dispatcher:dispatcher_test - facility must not be called, got %v", stub.calls)
		}
	}
}

func TestDispatch_InvalidArity(t *testing.T) {
	tests := []struct {
		method string
		args   []string
	}{
		{MethodExtractXBRLFromOFD, []string{"a", "b", "c"}},
		{MethodExtractXBRLFromPDF, []string{"a", "b", "c", "d"}},
		{MethodJSON2XBRL, []string{"{}"}},
		{MethodJSON2XBRL, nil},
		{MethodXBRL2JSON, []string{"<xbrl/>", "cfg", "extra"}},
		{MethodXBRL2JSONFromFile, []string{"file.xbrl"}},
		{MethodXML2JSON, nil},
		{MethodXML2JSON, []string{"<a/>", "b"}},
		{MethodExtractAttachFromPDF, []string{"in.pdf"}},
		{MethodExtractXMLFromPDF, []string{"a", "b"}},
		{MethodExtractXMLFromCEBPDF, nil},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			stub := &stubFacility{}
			out, err := dispatch(t, stub, tt.method, tt.args...)

			if !IsDispatchError(err, CodeInvalidArguments) {
				t.Fatalf("dispatcher:dispatcher_test - expected %s, got %v", CodeInvalidArguments, err)
			}
			if out != "" {
				t.Errorf("dispatcher:dispatcher_test - expected empty stdout, got %q", out)
			}
			if len(stub.calls) != 0 {
				t.Errorf("dispatcher:dispatcher_test - facility must not be called, got %v", stub.calls)
			}
		})
	}
}

func TestDispatch_RawResultsPrintedVerbatim(t *testing.T) {
	tests := []struct {
		method   string
		args     []string
		wantCall string
	}{
		{MethodJSON2XBRL, []string{`{"a":1}`, "bker_issuer"}, "JSON2XBRL"},
		{MethodXBRL2JSON, []string{"<xbrl/>", "bker_issuer"}, "XBRL2JSON"},
		{MethodXML2JSON, []string{"<a>1</a>"}, "XML2JSON"},
		{MethodExtractXMLFromPDF, []string{"voucher.pdf"}, "ExtractXMLFromPDF"},
		{MethodExtractXMLFromCEBPDF, []string{"ceb.pdf"}, "ExtractXMLFromCEBPDF"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			stub := &stubFacility{transform: `raw "result" \ not escaped`}
			out, err := dispatch(t, stub, tt.method, tt.args...)
			if err != nil {
				t.Fatalf("dispatcher:dispatcher_test - unexpected error: %v", err)
			}
			if out != stub.transform+"\n" {
				t.Errorf("dispatcher:dispatcher_test - expected %q, got %q", stub.transform+"\n", out)
			}
			if len(stub.calls) != 1 || stub.calls[0] != tt.wantCall {
				t.Errorf("dispatcher:dispatcher_test - expected call %s, got %v", tt.wantCall, stub.calls)
			}
			for i, a := range tt.args {
				if stub.lastArgs[i] != a {
					t.Errorf("dispatcher:dispatcher_test - arg[%d]: expected %q, got %q", i, a, stub.lastArgs[i])
				}
			}
		})
	}
}

func TestDispatch_ExtractAttachFromPDF(t *testing.T) {
	stub := &stubFacility{}
	out, err := dispatch(t, stub, MethodExtractAttachFromPDF, "in.pdf", "attachments")
	if err != nil {
		t.Fatalf("dispatcher:dispatcher_test - unexpected error: %v", err)
	}

	want := `{"status":"success","message":"Attachments extracted successfully"}` + "\n"
	if out != want {
		t.Errorf("dispatcher:dispatcher_test - expected %q, got %q", want, out)
	}
	if stub.lastArgs[0] != "in.pdf" || stub.lastArgs[1] != "attachments" {
		t.Errorf("dispatcher:dispatcher_test - unexpected args %v", stub.lastArgs)
	}
}

func TestDispatch_FacilityErrorIsFatal(t *testing.T) {
	cause := facility.NewError("XML2JSON", facility.CodeInvalidInput, "not XML", nil)
	stub := &stubFacility{transformErr: cause, attachErr: cause}

	for _, method := range []string{MethodXML2JSON, MethodExtractAttachFromPDF} {
		args := []string{"x"}
		if method == MethodExtractAttachFromPDF {
			args = append(args, "dir")
		}
		out, err := dispatch(t, stub, method, args...)
		if err == nil {
			t.Fatalf("dispatcher:dispatcher_test - expected error for %s", method)
		}
		var fe *facility.Error
		if !errors.As(err, &fe) || fe.Code != facility.CodeInvalidInput {
			t.Errorf("dispatcher:dispatcher_test - expected wrapped facility error, got %v", err)
		}
		if out != "" {
			t.Errorf("dispatcher:dispatcher_test - expected empty stdout, got %q", out)
		}
	}
}

func TestDispatch_XBRL2JSONFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file becomes error envelope", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.xbrl")
		_, readErr := os.ReadFile(missing)

		stub := &stubFacility{}
		out, err := dispatch(t, stub, MethodXBRL2JSONFromFile, missing, "bker_issuer")
		if err != nil {
			t.Fatalf("dispatcher:dispatcher_test - expected nil error, got %v", err)
		}
		env := decodeEnvelope(t, out)
		if env["error"] != readErr.Error() {
			t.Errorf("dispatcher:dispatcher_test - expected error %q, got %q", readErr.Error(), env["error"])
		}
		if len(env) != 1 {
			t.Errorf("dispatcher:dispatcher_test - expected only the error key, got %v", env)
		}
		if len(stub.calls) != 0 {
			t.Errorf("dispatcher:dispatcher_test - facility must not be called, got %v", stub.calls)
		}
	})

	t.Run("conversion failure becomes error envelope", func(t *testing.T) {
		path := writeFile(t, dir, "bad.xbrl", "<xbrl>")
		stub := &stubFacility{transformErr: errors.New(`bad "xbrl"`)}

		out, err := dispatch(t, stub, MethodXBRL2JSONFromFile, path, "bker_issuer")
		if err != nil {
			t.Fatalf("dispatcher:dispatcher_test - expected nil error, got %v", err)
		}
		if out != `{"error":"bad \"xbrl\""}`+"\n" {
			t.Errorf("dispatcher:dispatcher_test - unexpected output %q", out)
		}
	})

	t.Run("file content is passed to xbrl2Json", func(t *testing.T) {
		path := writeFile(t, dir, "ok.xbrl", "<xbrl>1</xbrl>")
		stub := &stubFacility{transform: `{"facts":{}}`}

		out, err := dispatch(t, stub, MethodXBRL2JSONFromFile, path, "bker_issuer")
		if err != nil {
			t.Fatalf("dispatcher:dispatcher_test - unexpected error: %v", err)
		}
		if out != `{"facts":{}}`+"\n" {
			t.Errorf("dispatcher:dispatcher_test - unexpected output %q", out)
		}
		if stub.lastArgs[0] != "<xbrl>1</xbrl>" || stub.lastArgs[1] != "bker_issuer" {
			t.Errorf("dispatcher:dispatcher_test - unexpected args %v", stub.lastArgs)
		}
	})
}

func TestOperations_Table(t *testing.T) {
	disp := NewDispatcher(&stubFacility{})

	want := map[string]Kind{
		MethodExtractXBRLFromOFD:   KindFileExtraction,
		MethodExtractXBRLFromPDF:   KindFileExtraction,
		MethodJSON2XBRL:            KindTwoArgTransform,
		MethodXBRL2JSON:            KindTwoArgTransform,
		MethodXBRL2JSONFromFile:    KindTwoArgTransform,
		MethodXML2JSON:             KindSingleArgTransform,
		MethodExtractAttachFromPDF: KindSideEffect,
		MethodExtractXMLFromPDF:    KindSingleArgTransform,
		MethodExtractXMLFromCEBPDF: KindSingleArgTransform,
	}

	ops := disp.Operations()
	if len(ops) != len(want) {
		t.Fatalf("dispatcher:dispatcher_test - expected %d operations, got %d", len(want), len(ops))
	}
	for name, kind := range want {
		op, ok := disp.Lookup(name)
		if !ok {
			t.Errorf("dispatcher:dispatcher_test - missing operation %s", name)
			continue
		}
		if op.Kind != kind {
			t.Errorf("dispatcher:dispatcher_test - %s: expected kind %s, got %s", name, kind, op.Kind)
		}
	}
}

func TestOperation_Accepts(t *testing.T) {
	op := &Operation{Arities: []int{0, 1, 2}}
	for n, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, -1: false} {
		if got := op.Accepts(n); got != want {
			t.Errorf("dispatcher:dispatcher_test - Accepts(%d): expected %v, got %v", n, want, got)
		}
	}
}
