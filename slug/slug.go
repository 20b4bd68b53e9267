// Package slug derives the stable public URL identity for a job posting.
// Slugs are pure functions of (title, id, company); the trailing hash must
// reproduce the digit sequence of already published URLs exactly, so the
// hash keeps 32-bit signed wraparound semantics.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[\s_]+`)
)

// Slugify lowercases text and reduces it to a hyphen-separated URL segment.
// Total: empty or all-invalid input yields "".
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Hash computes the 31-multiplier rolling hash of text over UTF-16 code
// units with 32-bit signed wraparound, rendered as base-36 of the absolute
// value. Not cryptographic; it only has to be deterministic and match the
// hashes already baked into live URLs.
func Hash(text string) string {
	var h int32
	for _, cu := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(cu)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return strconv.FormatInt(n, 36)
}

// GenerateJobSlug returns the (companySlug, valueSlug) pair for a posting.
// valueSlug is the slugified title with the id hash appended, which keeps
// the path readable while the hash carries the identity.
func GenerateJobSlug(title, id, company string) (companySlug, valueSlug string) {
	companySlug = Slugify(company)
	titleSlug := Slugify(title)
	h := Hash(id)
	if titleSlug == "" {
		return companySlug, h
	}
	return companySlug, titleSlug + "-" + h
}

// JobPath renders the two-segment path "{companySlug}/{valueSlug}".
func JobPath(title, id, company string) string {
	companySlug, valueSlug := GenerateJobSlug(title, id, company)
	return companySlug + "/" + valueSlug
}

// ParseJobSlug recovers the trailing hash token from a value slug. It
// accepts both the current "{title}-{hash}" form and the legacy
// single-segment form where the whole slug is "title-hash". Returns "" when
// nothing usable is present; never errors.
func ParseJobSlug(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, "-")
	return parts[len(parts)-1]
}

// ParseJobPath splits a "{company}/{value}" path. For legacy single-segment
// paths the company is empty and the whole segment is the value. ok is false
// only when the path contains no usable segment.
func ParseJobPath(path string) (company, value string, ok bool) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return "", "", false
	}
	segs := strings.Split(path, "/")
	switch len(segs) {
	case 1:
		return "", segs[0], segs[0] != ""
	case 2:
		if segs[1] == "" {
			return "", "", false
		}
		return segs[0], segs[1], true
	default:
		return "", "", false
	}
}
