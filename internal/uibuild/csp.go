package uibuild

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// RewriteCSP replaces the document's Content-Security-Policy meta tag with a
// canonical tag carrying the given policy. The tag is matched through the
// HTML tokenizer, so any attribute quoting style and any casing of the tag
// or the http-equiv value are recognized. Every byte outside the matched
// tag is passed through unchanged. The second return reports whether a tag
// was replaced.
func RewriteCSP(doc []byte, policy string) ([]byte, bool) {
	tokenizer := html.NewTokenizer(bytes.NewReader(doc))
	var out bytes.Buffer
	out.Grow(len(doc))
	replaced := false

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			// io.EOF ends the document; on any tokenizer error the
			// remaining input has not been consumed, so flush it raw.
			out.Write(tokenizer.Raw())
			break
		}

		raw := append([]byte(nil), tokenizer.Raw()...)

		if !replaced && (tokenType == html.StartTagToken || tokenType == html.SelfClosingTagToken) && isCSPMetaTag(tokenizer) {
			fmt.Fprintf(&out, `<meta http-equiv="Content-Security-Policy" content="%s" />`, policy)
			replaced = true
			continue
		}

		out.Write(raw)
	}

	return out.Bytes(), replaced
}

// isCSPMetaTag reports whether the tokenizer's current tag is a meta tag
// with http-equiv "Content-Security-Policy", compared case-insensitively.
func isCSPMetaTag(tokenizer *html.Tokenizer) bool {
	name, hasAttr := tokenizer.TagName()
	if !strings.EqualFold(string(name), "meta") {
		return false
	}

	for hasAttr {
		var key, val []byte
		key, val, hasAttr = tokenizer.TagAttr()
		if strings.EqualFold(string(key), "http-equiv") &&
			strings.EqualFold(string(val), "content-security-policy") {
			return true
		}
	}
	return false
}

// versionToken is the placeholder the UI source uses for the build version.
const versionToken = "%APP_VERSION%"

// InjectVersion substitutes the version placeholder in a document.
func InjectVersion(doc []byte, version string) []byte {
	return bytes.ReplaceAll(doc, []byte(versionToken), []byte(version))
}
