// Package csvparse converts raw payloads into tabular record sets. It is
// the pipeline's opaque parser collaborator: callers hand it bytes plus an
// options bag and get back a RecordSet or a typed ParseError.
package csvparse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

// Parser implements pipeline.Parser over encoding/csv. The zero value is
// ready to use; Parser is stateless and safe for concurrent use.
type Parser struct{}

// New constructs a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse decodes raw according to opts and reads it as CSV. The first
// record becomes the header, the rest become data rows. Deterministic for
// a given payload+options pair.
func (p *Parser) Parse(raw []byte, opts pipeline.ParseOptions) (*pipeline.RecordSet, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	text, err := dec.Bytes(raw)
	if err != nil {
		return nil, &pipeline.ParseError{Kind: pipeline.ParseMalformed, Err: fmt.Errorf("decode %s: %w", opts.Encoding, err)}
	}

	r := csv.NewReader(bytes.NewReader(text))
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.LazyQuotes = opts.LazyQuotes
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &pipeline.ParseError{Kind: pipeline.ParseMalformed, Err: errors.New("empty payload")}
		}
		return nil, &pipeline.ParseError{Kind: pipeline.ParseMalformed, Err: fmt.Errorf("read header: %w", err)}
	}
	if opts.TrimHeader {
		for i, h := range header {
			header[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
		}
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &pipeline.ParseError{Kind: pipeline.ParseMalformed, Err: fmt.Errorf("read row %d: %w", len(rows)+1, err)}
		}
		rows = append(rows, record)
	}

	return &pipeline.RecordSet{Header: header, Rows: rows}, nil
}

// decoderFor maps an encoding name to a decoder. Unknown names are an
// options error, not a payload error.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, &pipeline.ParseError{
			Kind: pipeline.ParseUnsupportedOptions,
			Err:  fmt.Errorf("unsupported encoding %q", name),
		}
	}
}
