package rdsig

import (
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// EncodeURI percent-encodes s with the rules of ECMAScript encodeURI:
// ASCII letters, digits and -_.!~*'();/?:@&=+$,# are kept, every other
// byte of the UTF-8 encoding becomes %XX with upper-case hex.
//
// The result is the form sent on the wire; '|' is encoded as %7C.
func EncodeURI(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !keepInURI(s[i]) {
			n++
		}
	}

	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInURI(c) {
			b.WriteByte(c)
			continue
		}

		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}

	return b.String()
}

// SigningURL returns the form of rawURL covered by the nonce: EncodeURI
// output with the '|' filter separator left literal.
func SigningURL(rawURL string) string {
	return restorePipes(EncodeURI(rawURL))
}

// requestSigningURL derives the signed URL from a request already on the
// wire: its escaped path without prefix, plus the raw query, with %7C
// read back as '|'.
func requestSigningURL(u *url.URL, prefix string) string {
	p := u.EscapedPath()
	if prefix != "" {
		p = strings.TrimPrefix(p, strings.TrimSuffix(prefix, "/"))
	}

	if u.RawQuery != "" || u.ForceQuery {
		p += "?" + u.RawQuery
	}

	return restorePipes(p)
}

func restorePipes(s string) string {
	if !strings.Contains(s, "%7") {
		return s
	}

	return strings.NewReplacer("%7C", "|", "%7c", "|").Replace(s)
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')',
		';', '/', '?', ':', '@', '&', '=', '+', '$', ',', '#':
		return true
	}

	return false
}
