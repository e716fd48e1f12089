// Package formatter renders log entries as single text lines of the form
// "HH:mm:ss|LEVEL|unit.member >> message".
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/bootlog/sanitizer"
)

// TimestampFormat is the wall-clock layout of the leading field.
const TimestampFormat = "15:04:05"

// Field separators of a formatted line
const (
	fieldSeparator   = '|'
	messageSeparator = " >> "
)

// Formatter builds log lines. It holds no per-call state and is safe for
// concurrent use.
type Formatter struct {
	sanitizer *sanitizer.Sanitizer
	dumper    *spew.ConfigState
}

// New creates a formatter. The optional sanitizer is applied to origin
// tokens; the default strips whitespace, control runes and '|'.
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New().Policy(sanitizer.PolicyOrigin)
	}
	return &Formatter{
		sanitizer: san,
		dumper: &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

// Format renders one line without a trailing newline.
func (f *Formatter) Format(timestamp time.Time, level int64, unit, member string, args []any) string {
	var b strings.Builder
	b.Grow(64)

	b.WriteString(timestamp.Format(TimestampFormat))
	b.WriteByte(fieldSeparator)
	b.WriteString(LevelToString(level))
	b.WriteByte(fieldSeparator)
	b.WriteString(f.sanitizer.Sanitize(unit))
	b.WriteByte('.')
	b.WriteString(f.sanitizer.Sanitize(member))
	b.WriteString(messageSeparator)
	f.appendArgs(&b, args)

	return b.String()
}

// FormatArgs renders args as the message part of a line.
func (f *Formatter) FormatArgs(args ...any) string {
	var b strings.Builder
	f.appendArgs(&b, args)
	return b.String()
}

// LevelToString converts integer level values to their line token.
// The values mirror bootlog.LevelDebug through bootlog.LevelError.
func LevelToString(level int64) string {
	switch level {
	case -4:
		return "Debug"
	case 0:
		return "Info"
	case 4:
		return "Warning"
	case 8:
		return "Error"
	default:
		return fmt.Sprintf("Level(%d)", level)
	}
}

// appendArgs writes args space-separated
func (f *Formatter) appendArgs(b *strings.Builder, args []any) {
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		f.convertValue(b, arg)
	}
}

// convertValue provides unified type conversion. Errors are rendered with
// %+v so that wrapped context and stack-carrying errors keep their full text.
func (f *Formatter) convertValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		b.WriteString(val)

	case []byte:
		b.Write(val)

	case rune:
		var runeStr [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeStr[:], val)
		b.Write(runeStr[:n])

	case int:
		b.WriteString(strconv.Itoa(val))

	case int64:
		b.WriteString(strconv.FormatInt(val, 10))

	case uint:
		b.WriteString(strconv.FormatUint(uint64(val), 10))

	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))

	case float32:
		b.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 32))

	case float64:
		b.WriteString(strconv.FormatFloat(val, 'f', -1, 64))

	case bool:
		b.WriteString(strconv.FormatBool(val))

	case nil:
		b.WriteString("nil")

	case time.Time:
		b.WriteString(val.Format(time.RFC3339))

	case error:
		fmt.Fprintf(b, "%+v", val)

	case fmt.Stringer:
		b.WriteString(val.String())

	default:
		b.WriteString(f.dumper.Sprint(val))
	}
}
