package native

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/hyg/voucher-invoker/pkg/facility"
	"github.com/hyg/voucher-invoker/pkg/taxonomy"
)

const xbrlLogPrefix = "native:xbrl"

const (
	nsXBRLI    = "http://www.xbrl.org/2003/instance"
	nsLink     = "http://www.xbrl.org/2003/linkbase"
	nsXLink    = "http://www.w3.org/1999/xlink"
	nsISO4217  = "http://www.xbrl.org/2003/iso4217"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	contextID  = "ctx"
	numDecimal = "2"
)

// Instance children that describe the report rather than carry facts.
var structuralElements = map[string]bool{
	"context":      true,
	"unit":         true,
	"schemaRef":    true,
	"linkbaseRef":  true,
	"roleRef":      true,
	"arcroleRef":   true,
	"footnoteLink": true,
}

// Voucher JSON keys that configure the generated instance instead of becoming facts.
var metaKeys = map[string]bool{
	"configId":        true,
	"taxonomyVersion": true,
	"voucherType":     true,
	"entity":          true,
	"period":          true,
}

var elementNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// instanceInfo is what classification needs from an XBRL instance.
type instanceInfo struct {
	Root       string
	SchemaRef  string
	Namespaces []string
}

// rootElement returns the first start element of an XML document.
func rootElement(data []byte) (*xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return &se, nil
		}
	}
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func isXBRLInstance(data []byte) bool {
	root, err := rootElement(data)
	return err == nil && root.Name.Local == "xbrl"
}

// inspectInstance collects the schemaRef and every namespace used or declared by an XBRL instance.
func inspectInstance(data []byte) (*instanceInfo, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	info := &instanceInfo{}
	seen := make(map[string]bool)
	addNS := func(ns string) {
		if ns != "" && !seen[ns] {
			seen[ns] = true
			info.Namespaces = append(info.Namespaces, ns)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if info.Root == "" {
			info.Root = se.Name.Local
		}
		addNS(se.Name.Space)
		for _, a := range se.Attr {
			if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
				addNS(a.Value)
			}
		}
		if se.Name.Local == "schemaRef" && info.SchemaRef == "" {
			info.SchemaRef = attrValue(se.Attr, "href")
		}
	}

	if info.Root != "xbrl" {
		return nil, fmt.Errorf("%s - root element is %q, not xbrl", xbrlLogPrefix, info.Root)
	}
	return info, nil
}

// XBRL2JSON converts an XBRL instance to voucher JSON:
// {"configId","taxonomyVersion","voucherType","facts":{...}}.
func (f *Facility) XBRL2JSON(ctx context.Context, xbrl, configID string) (string, error) {
	const op = "xbrl2Json"
	if err := ctx.Err(); err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "cancelled", err)
	}

	entry, err := f.opts.Taxonomy.Resolve(configID)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "resolve config "+configID, err)
	}

	m, err := mxj.NewMapXml([]byte(xbrl))
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "parse XBRL instance", err)
	}
	root, ok := m["xbrl"].(map[string]interface{})
	if !ok {
		return "", facility.NewError(op, facility.CodeInvalidInput, "root element is not xbrl", nil)
	}

	facts := make(map[string]interface{}, len(root))
	for k, v := range root {
		if strings.HasPrefix(k, "-") || structuralElements[k] {
			continue
		}
		facts[k] = factValue(v)
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "encode facts", err)
	}

	out := "{}"
	for _, kv := range [][2]string{
		{"configId", entry.ConfigID},
		{"taxonomyVersion", entry.Version},
		{"voucherType", entry.VoucherType},
	} {
		if out, err = sjson.Set(out, kv[0], kv[1]); err != nil {
			return "", facility.NewError(op, facility.CodeInternalError, "encode "+kv[0], err)
		}
	}
	if out, err = sjson.SetRaw(out, "facts", string(factsJSON)); err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "encode facts", err)
	}

	slog.Info(fmt.Sprintf("%s - converted %d facts for %s@%s", xbrlLogPrefix, len(facts), entry.ConfigID, entry.Version))
	return out, nil
}

// factValue drops attributes from an mxj node. Numeric facts (those with a unitRef)
// become JSON numbers; nil facts become null.
func factValue(v interface{}) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		if nilAttr, _ := n["-nil"].(string); nilAttr == "true" {
			return nil
		}
		text, hasText := n["#text"]
		children := make(map[string]interface{})
		for k, c := range n {
			if strings.HasPrefix(k, "-") || k == "#text" {
				continue
			}
			children[k] = factValue(c)
		}
		if len(children) > 0 {
			return children
		}
		s, _ := text.(string)
		if !hasText {
			s = ""
		}
		if _, numeric := n["-unitRef"]; numeric {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				return json.Number(s)
			}
		}
		return s
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, c := range n {
			out[i] = factValue(c)
		}
		return out
	default:
		return v
	}
}

// JSON2XBRL converts voucher JSON to a single-line XBRL instance for configID.
// Facts are read from the "facts" object when present, otherwise from the root object.
func (f *Facility) JSON2XBRL(ctx context.Context, jsonText, configID string) (string, error) {
	const op = "json2Xbrl"
	if err := ctx.Err(); err != nil {
		return "", facility.NewError(op, facility.CodeInternalError, "cancelled", err)
	}

	if !gjson.Valid(jsonText) {
		return "", facility.NewError(op, facility.CodeInvalidInput, "invalid JSON", nil)
	}
	doc := gjson.Parse(jsonText)
	if !doc.IsObject() {
		return "", facility.NewError(op, facility.CodeInvalidInput, "voucher JSON must be an object", nil)
	}

	entry, err := f.opts.Taxonomy.Resolve(configID)
	if err != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "resolve config "+configID, err)
	}

	facts := doc.Get("facts")
	skipMeta := false
	if !facts.IsObject() {
		facts = doc
		skipMeta = true
	}

	w := &instanceWriter{entry: entry}
	var walkErr error
	facts.ForEach(func(key, value gjson.Result) bool {
		if skipMeta && metaKeys[key.String()] {
			return true
		}
		walkErr = w.fact(key.String(), value)
		return walkErr == nil
	})
	if walkErr != nil {
		return "", facility.NewError(op, facility.CodeInvalidInput, "convert facts", walkErr)
	}

	entity := doc.Get("entity").String()
	if entity == "" {
		entity = "unknown"
	}
	period := doc.Get("period").String()
	if period == "" {
		period = time.Now().Format("2006-01-02")
	}

	out := w.document(entity, period)
	slog.Info(fmt.Sprintf("%s - generated %d facts for %s@%s", xbrlLogPrefix, w.count, entry.ConfigID, entry.Version))
	return out, nil
}

// instanceWriter renders facts of one taxonomy entry.
type instanceWriter struct {
	entry   *taxonomy.Resolved
	body    bytes.Buffer
	count   int
	numeric bool
	nils    bool
}

func (w *instanceWriter) fact(name string, value gjson.Result) error {
	if !elementNameRegex.MatchString(name) {
		return fmt.Errorf("%s - %q is not a valid element name", xbrlLogPrefix, name)
	}
	qname := w.entry.Prefix + ":" + name

	if value.IsArray() {
		var err error
		value.ForEach(func(_, item gjson.Result) bool {
			err = w.fact(name, item)
			return err == nil
		})
		return err
	}

	if value.IsObject() {
		w.body.WriteString("<" + qname + ">")
		var err error
		value.ForEach(func(key, child gjson.Result) bool {
			err = w.fact(key.String(), child)
			return err == nil
		})
		if err != nil {
			return err
		}
		w.body.WriteString("</" + qname + ">")
		return nil
	}

	w.count++
	w.body.WriteString("<" + qname + ` contextRef="` + contextID + `"`)
	switch value.Type {
	case gjson.Null:
		w.nils = true
		w.body.WriteString(` xsi:nil="true"/>`)
		return nil
	case gjson.Number:
		w.numeric = true
		w.body.WriteString(` unitRef="` + w.entry.Currency + `" decimals="` + numDecimal + `">`)
		w.body.WriteString(value.Raw)
	default:
		w.body.WriteString(">")
		if err := xml.EscapeText(&w.body, []byte(value.String())); err != nil {
			return err
		}
	}
	w.body.WriteString("</" + qname + ">")
	return nil
}

func (w *instanceWriter) document(entity, period string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<xbrli:xbrl`)
	ns := map[string]string{
		"xbrli":        nsXBRLI,
		"link":         nsLink,
		"xlink":        nsXLink,
		"iso4217":      nsISO4217,
		w.entry.Prefix: w.entry.Namespace,
	}
	if w.nils {
		ns["xsi"] = nsXSI
	}
	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		b.WriteString(` xmlns:` + p + `="` + escapeAttr(ns[p]) + `"`)
	}
	b.WriteString(">")

	if w.entry.SchemaRef != "" {
		b.WriteString(`<link:schemaRef xlink:type="simple" xlink:href="` + escapeAttr(w.entry.SchemaRef) + `"/>`)
	}
	b.WriteString(`<xbrli:context id="` + contextID + `"><xbrli:entity><xbrli:identifier scheme="` +
		escapeAttr(w.entry.EntityScheme) + `">` + escapeAttr(entity) + `</xbrli:identifier></xbrli:entity>`)
	b.WriteString(`<xbrli:period><xbrli:instant>` + escapeAttr(period) + `</xbrli:instant></xbrli:period></xbrli:context>`)
	if w.numeric {
		b.WriteString(`<xbrli:unit id="` + w.entry.Currency + `"><xbrli:measure>iso4217:` + w.entry.Currency +
			`</xbrli:measure></xbrli:unit>`)
	}
	b.WriteString(w.body.String())
	b.WriteString(`</xbrli:xbrl>`)
	return b.String()
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
