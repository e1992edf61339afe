package native

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/clbanning/mxj/v2"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

const xmlLogPrefix = "native:xml"

// XML2JSON converts an XML voucher to JSON. The argument is XML text, or the path of an
// XML file when it does not start with "<" and names an existing file.
// Attributes are keyed "-name" and mixed text "#text".
func (f *Facility) XML2JSON(ctx context.Context, xmlText string) (string, error) {
	const op = "xml2Json"
	if err := ctx.Err(); err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "cancelled", err)
	}

	data := []byte(xmlText)
	if trimmed := strings.TrimSpace(xmlText); trimmed != "" && !strings.HasPrefix(trimmed, "<") {
		if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
			raw, err := os.ReadFile(trimmed)
			if err != nil {
				return "", facility.NewError(op, facility.CodeInvalidInput, "read "+trimmed, err)
			}
			slog.Info(fmt.Sprintf("%s - read XML from %s (%d bytes)", xmlLogPrefix, trimmed, len(raw)))
			data = raw
		}
	}

	m, err := mxj.NewMapXml(data)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "parse XML", err)
	}
	out, err := m.Json()
	if err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "encode JSON", err)
	}
	return string(out), nil
}
