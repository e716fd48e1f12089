// Package sanitizer provides a fluent and composable interface for sanitizing
// strings based on configurable rules using bitwise filter flags and transforms.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable    uint64 = 1 << iota // Matches runes not classified as printable by strconv.IsPrint
	FilterControl                            // Matches control characters (unicode.IsControl)
	FilterWhitespace                         // Matches whitespace characters (unicode.IsSpace)
	FilterPathInvalid                        // Matches runes no platform accepts in a directory path
	FilterFileNameInvalid                    // Matches runes no platform accepts in a file name
	FilterFieldSeparator                     // Matches the '|' used to separate fields of a log line
)

// Transform flags for character transformation
const (
	TransformStrip     uint64 = 1 << iota // Removes the character
	TransformHexEncode                    // Encodes the character's UTF-8 bytes as "<XXYY>"
)

// PolicyPreset defines pre-configured sanitization policies
type PolicyPreset string

const (
	PolicyRaw      PolicyPreset = "raw"      // Raw is a no-op (passthrough)
	PolicyPath     PolicyPreset = "path"     // Policy for directory paths
	PolicyFileName PolicyPreset = "filename" // Policy for bare file names, separators removed
	PolicyOrigin   PolicyPreset = "origin"   // Policy for unit and member names of a call site
)

// rule represents a single sanitization rule
type rule struct {
	filter    uint64
	transform uint64
}

// policyRules contains pre-configured rules for each policy
var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:      {},
	PolicyPath:     {{filter: FilterPathInvalid, transform: TransformStrip}},
	PolicyFileName: {{filter: FilterFileNameInvalid, transform: TransformStrip}},
	PolicyOrigin:   {{filter: FilterControl | FilterWhitespace | FilterFieldSeparator, transform: TransformStrip}},
}

// filterCheckers maps individual filter flags to their check functions
var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) },
	FilterControl:      unicode.IsControl,
	FilterWhitespace:   unicode.IsSpace,
	FilterPathInvalid:  isInvalidPathRune,
	FilterFileNameInvalid: func(r rune) bool {
		if isInvalidPathRune(r) {
			return true
		}
		switch r {
		case ':', '*', '?', '\\', '/':
			return true
		}
		return false
	},
	FilterFieldSeparator: func(r rune) bool { return r == '|' },
}

// isInvalidPathRune reports runes rejected in paths on at least one supported
// platform: NUL, the C0 control range and the Windows reserved punctuation.
func isInvalidPathRune(r rune) bool {
	if r < 0x20 {
		return true
	}
	switch r {
	case '"', '<', '>', '|':
		return true
	}
	return false
}

// Sanitizer provides chainable text sanitization.
// Once configured, Sanitize is safe for concurrent use.
type Sanitizer struct {
	rules []rule
}

// New creates a new Sanitizer instance
func New() *Sanitizer {
	return &Sanitizer{
		rules: []rule{},
	}
}

// Rule adds a custom rule to the sanitizer (appended, earliest rule applies first)
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy applies a pre-configured policy to the sanitizer (appended)
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}

	buf := make([]byte, 0, len(data))
	for _, r := range data {
		matched := false
		// Check rules in order (first match wins)
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				buf = applyTransform(buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			buf = utf8.AppendRune(buf, r)
		}
	}

	return string(buf)
}

// matchesFilter checks if a rune matches any filter in the mask
func matchesFilter(r rune, filterMask uint64) bool {
	for flag, checker := range filterCheckers {
		if (filterMask&flag) != 0 && checker(r) {
			return true
		}
	}
	return false
}

// applyTransform applies the specified transform and returns the grown buffer
func applyTransform(buf []byte, r rune, transformMask uint64) []byte {
	switch {
	case (transformMask & TransformStrip) != 0:
		// Do nothing (strip)

	case (transformMask & TransformHexEncode) != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		buf = append(buf, '<')
		buf = append(buf, hex.EncodeToString(runeBytes[:n])...)
		buf = append(buf, '>')
	}
	return buf
}
