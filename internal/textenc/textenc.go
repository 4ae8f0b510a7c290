// Package textenc converts between Go strings and the process's local text
// encoding, as named by the POSIX locale environment (LC_ALL, LC_CTYPE, LANG).
//
// When the locale names no charset, or one golang.org/x/text does not know,
// UTF-8 is used. Characters the local encoding cannot represent are replaced
// rather than reported.
package textenc

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Local returns the encoding named by the locale environment, or UTF-8.
func Local() encoding.Encoding {
	return lookup(localeCharset(os.Getenv))
}

// localeCharset extracts the charset from the first non-empty locale variable,
// e.g. "en_US.ISO-8859-1@euro" -> "ISO-8859-1".
func localeCharset(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := getenv(key)
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, '@'); i >= 0 {
			v = v[:i]
		}
		if i := strings.IndexByte(v, '.'); i >= 0 {
			return v[i+1:]
		}
		return ""
	}
	return ""
}

func lookup(charset string) encoding.Encoding {
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return unicode.UTF8
	}
	return enc
}

// Encode converts s to the local encoding, substituting unrepresentable
// characters. If the local encoder fails outright, s is returned as UTF-8 with
// invalid sequences replaced by U+FFFD.
func Encode(s string) []byte {
	return encodeWith(Local(), s)
}

func encodeWith(enc encoding.Encoding, s string) []byte {
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).String(s)
	if err != nil {
		return []byte(strings.ToValidUTF8(s, string(utf8.RuneError)))
	}
	return []byte(out)
}

// Decode converts b from the local encoding to a string, falling back to UTF-8
// with replacement characters when b is not valid in the local encoding.
func Decode(b []byte) string {
	return decodeWith(Local(), b)
}

func decodeWith(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
