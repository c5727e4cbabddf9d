package client

import (
	"strings"
)

const shareFooter = "Shared from Notes App"

func ShareLink(origin, noteID string) string {
	return strings.TrimRight(origin, "/") + "/notes/" + noteID
}

func ShareContent(n Note) string {
	return "**" + n.Title + "**\n\n" + n.Content + "\n\n*" + shareFooter + "*"
}

func MailtoURL(n Note) string {
	subject := encodeURIComponent("Note: " + n.Title)
	body := encodeURIComponent(n.Title + "\n\n" + n.Content + "\n\n" + shareFooter)
	return "mailto:?subject=" + subject + "&body=" + body
}

// encodeURIComponent percent-encodes every UTF-8 byte except
// A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
