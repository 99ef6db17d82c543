// Package xmlfmt pretty-prints metadata and annotation payloads before they
// are written as localService copies. Payloads are formatted, never
// validated: content the tokenizer cannot handle is written as received.
package xmlfmt

import (
	"bytes"
	"encoding/xml"
	"io"
)

// Format re-indents an XML document with 4-space indentation. Malformed
// input is returned unchanged.
func Format(content []byte) []byte {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "    ")

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return content
		}
		// Inter-element whitespace would fight the indenter.
		if cd, ok := tok.(xml.CharData); ok && len(bytes.TrimSpace(cd)) == 0 {
			continue
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return content
		}
	}
	if err := enc.Flush(); err != nil {
		return content
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}
