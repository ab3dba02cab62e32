package sms

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the number of characters in a single SMS segment.
const MaxLength = 160

// Sender delivers one text message and returns the transport message id.
type Sender interface {
	SendSMS(ctx context.Context, to, message string) (string, error)
}

var (
	e164       = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
	phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// NormalizePhone strips common separators and validates the result as an
// E.164 number.
func NormalizePhone(phone string) (string, error) {
	p := phoneNoise.Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(p, "00") {
		p = "+" + p[2:]
	}
	if !e164.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}

// Truncate shortens s to limit characters, replacing the tail with "...".
func Truncate(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

// Fold removes combining marks: "Émile Zoë" becomes "Emile Zoe".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
