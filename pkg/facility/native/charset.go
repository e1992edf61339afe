package native

import (
	"fmt"
	"io"

	"github.com/clbanning/mxj/v2"
	"golang.org/x/text/encoding/htmlindex"
)

func init() {
	mxj.XmlCharsetReader = charsetReader
}

// charsetReader decodes XML declared in a non-UTF-8 encoding such as GBK or GB18030.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%s - unsupported XML encoding %q: %w", xmlLogPrefix, label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
