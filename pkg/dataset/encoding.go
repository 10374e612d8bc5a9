package dataset

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decoderFor resolves a configured encoding name
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "UTF-8", "UTF8", "":
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// decodingReader wraps r so that it yields UTF-8 text
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := decoderFor(name)
	if err != nil {
		return nil, err
	}

	return enc.NewDecoder().Reader(r), nil
}
