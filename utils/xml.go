package utils

import (
	"fmt"
	"strings"
)

const (
	WSSpace byte = ' '
	WSNL    byte = '\n'
	WSCR    byte = '\r'
	WSTab   byte = '\t'

	Colon string = ":"
)

// IsWhiteSpace reports whether c is one of the four XML whitespace bytes.
func IsWhiteSpace(c byte) bool {
	return c == WSSpace || c == WSNL || c == WSCR || c == WSTab
}

// GetLeadingWhiteSpaces counts whitespace bytes at the start of ch[start:start+length].
func GetLeadingWhiteSpaces(ch []byte, start, length int) (int, error) {
	end := start + length
	if end > len(ch) {
		return -1, ErrorIndexOutOfBounds
	}

	count := 0
	for i := start; i < end && IsWhiteSpace(ch[i]); i++ {
		count++
	}
	return count, nil
}

// GetTrailingWhiteSpaces counts whitespace bytes at the end of ch[start:start+length].
func GetTrailingWhiteSpaces(ch []byte, start, length int) (int, error) {
	last := start + length - 1
	if last >= len(ch) {
		return -1, ErrorIndexOutOfBounds
	}

	count := 0
	for i := last; i >= start && IsWhiteSpace(ch[i]); i-- {
		count++
	}
	return count, nil
}

// IsWhiteSpaceOnly reports whether s is non-empty and consists solely of
// XML whitespace bytes.
func IsWhiteSpaceOnly(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsWhiteSpace(s[i]) {
			return false
		}
	}
	return true
}

// IsWhiteSpaceOnlyInRange reports whether ch[start:start+length] is
// non-empty and consists solely of XML whitespace bytes.
func IsWhiteSpaceOnlyInRange(ch []byte, start, length int) (bool, error) {
	end := start + length
	if start >= len(ch) || end > len(ch) {
		return false, ErrorIndexOutOfBounds
	}
	if length <= 0 {
		return false, nil
	}
	for i := start; i < end; i++ {
		if !IsWhiteSpace(ch[i]) {
			return false, nil
		}
	}
	return true, nil
}

// GetQualifiedName joins an optional prefix and a local name as "prefix:local",
// or returns localName unchanged when prefix is nil or empty.
func GetQualifiedName(localName string, prefix *string) string {
	if prefix == nil || *prefix == "" {
		return localName
	}
	return fmt.Sprintf("%s:%s", *prefix, localName)
}

// GetPrefixPart returns the portion of qname before the first colon, or ""
// if qname carries no prefix.
func GetPrefixPart(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[:i]
	}
	return ""
}

// GetLocalPart returns the portion of qname after the first colon, or
// qname unchanged if it carries no prefix.
func GetLocalPart(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}
