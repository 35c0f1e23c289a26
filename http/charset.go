package http

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ParseCharset extracts the charset parameter from a Content-Type value.
// The value is split on ';', each segment is trimmed, and the remainder of
// the first segment starting with "charset=" is returned in upper case.
// Anything unparseable simply yields ok == false.
func ParseCharset(contentType string) (charset string, ok bool) {
	for _, param := range strings.Split(contentType, ";") {
		param = strings.TrimSpace(param)
		if rest, found := strings.CutPrefix(param, "charset="); found {
			return strings.ToUpper(rest), true
		}
	}
	return "", false
}

// lookupEncoding resolves a charset name through the IANA registry first and
// the WHATWG label table second, so that both "ISO-8859-1" and browser
// aliases such as "x-gbk" resolve.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	return nil, &UnsupportedCharsetError{Name: name}
}

func decode(body []byte, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	return decodeWith(body, enc)
}

func decodeWith(body []byte, enc encoding.Encoding) (string, error) {
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// defaultEncoding is used when a response declares no charset.
var defaultEncoding encoding.Encoding = unicode.UTF8
