package native

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyg/voucher-invoker/pkg/facility"
)

const ofdMain = `<?xml version="1.0" encoding="UTF-8"?>
<ofd:OFD xmlns:ofd="http://www.ofdspec.org/2016" Version="1.1" DocType="OFD"><ofd:DocBody/></ofd:OFD>`

const receiptInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:bker="http://xbrl.mof.gov.cn/taxonomy/voucher/bker/2023">
  <link:schemaRef xlink:type="simple" xlink:href="bker_issuer_2023.xsd"/>
  <xbrli:context id="ctx">
    <xbrli:entity><xbrli:identifier scheme="http://www.mof.gov.cn/entity">91110000</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-01-31</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="CNY"><xbrli:measure>iso4217:CNY</xbrli:measure></xbrli:unit>
  <bker:PayerName contextRef="ctx">ACME Trading</bker:PayerName>
  <bker:Amount contextRef="ctx" unitRef="CNY" decimals="2">100.50</bker:Amount>
</xbrli:xbrl>`

const unknownInstance = `<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:x="urn:unknown"><x:Fact contextRef="c">1</x:Fact></xbrl>`

type fakeAttachments struct {
	atts []attachment
	err  error
}

func (f fakeAttachments) Attachments(context.Context, string) ([]attachment, error) {
	return f.atts, f.err
}

type fakePages struct {
	pages []string
	err   error
}

func (f fakePages) PageTexts(context.Context, string) ([]string, error) {
	return f.pages, f.err
}

func newTestFacility(t *testing.T) *Facility {
	t.Helper()
	return New(Options{OutputDir: t.TempDir()})
}

// writeOFD writes a ZIP container with the given entries, in order.
func writeOFD(t *testing.T, name string, entries [][2]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	out, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return p
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var fe *facility.Error
	require.True(t, errors.As(err, &fe), "expected facility.Error, got %T: %v", err, err)
	require.Equal(t, code, fe.Code)
}
