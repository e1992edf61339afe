package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Resolve(t *testing.T) {
	ix := NewIndex(DefaultTable())

	tests := []struct {
		ref         string
		wantID      string
		wantVersion string
		wantCode    string
	}{
		{ref: "bker_issuer", wantID: "bker_issuer", wantVersion: "1.1.0"},
		{ref: "bker_issuer@1.0.0", wantID: "bker_issuer", wantVersion: "1.0.0"},
		{ref: "bker_issuer@~1.0", wantID: "bker_issuer", wantVersion: "1.0.0"},
		{ref: "bker@^1", wantID: "bker_issuer", wantVersion: "1.1.0"},
		{ref: "evat_issuer", wantID: "evat_issuer", wantVersion: "1.0.0"},
		{ref: "bker_issuer@2", wantCode: CodeNoMatchingEntry},
		{ref: "unknown_cfg", wantCode: CodeUnknownConfig},
		{ref: "", wantCode: CodeInvalidRef},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			r, err := ix.Resolve(tt.ref)
			if tt.wantCode != "" {
				var le *LookupError
				require.True(t, errors.As(err, &le), "expected LookupError, got %v", err)
				assert.Equal(t, tt.wantCode, le.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, r.ConfigID)
			assert.Equal(t, tt.wantVersion, r.Version)
			assert.Equal(t, "CNY", r.Currency)
			assert.NotEmpty(t, r.EntityScheme)
		})
	}
}

func TestIndex_Classify(t *testing.T) {
	ix := NewIndex(DefaultTable())

	r, ok := ix.Classify("http://example.com/schemas/bker_receiver_2023.xsd", nil)
	require.True(t, ok)
	assert.Equal(t, "bker_receiver", r.ConfigID)
	assert.Equal(t, "bank_receipt", r.VoucherType)

	r, ok = ix.Classify("", []string{"http://www.xbrl.org/2003/instance", "http://xbrl.mof.gov.cn/taxonomy/voucher/evat/2023"})
	require.True(t, ok)
	assert.Equal(t, "evat_issuer", r.ConfigID)
	assert.Equal(t, "vat_invoice", r.VoucherType)

	r, ok = ix.Classify("", []string{"http://xbrl.mof.gov.cn/taxonomy/voucher/bker/2021"})
	require.True(t, ok)
	assert.Equal(t, "bker_issuer", r.ConfigID)
	assert.Equal(t, "1.0.0", r.Version)

	_, ok = ix.Classify("other.xsd", []string{"urn:unknown"})
	assert.False(t, ok)
}

func TestIndex_IDs(t *testing.T) {
	ix := NewIndex(DefaultTable())
	assert.Equal(t, []string{"bker_issuer", "bker_receiver", "bkrs_issuer", "evat_issuer"}, ix.IDs())
	assert.Equal(t, "voucher-taxonomies", ix.Name())
}

func TestIndex_PrefixDefaultsToIDStem(t *testing.T) {
	ix := NewIndex(&Table{Configs: map[string]ConfigSpec{
		"fsei_issuer": {Versions: []Entry{{Version: "1.0.0", Status: "active", Namespace: "urn:fsei"}}},
	}})

	r, err := ix.Resolve("fsei_issuer")
	require.NoError(t, err)
	assert.Equal(t, "fsei", r.Prefix)
}

func TestIndex_Resolve_ExactVersionMessage(t *testing.T) {
	_, err := NewIndex(DefaultTable()).Resolve("bker_issuer@9.9.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version 9.9.9 of bker_issuer not found")
}
