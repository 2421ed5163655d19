package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"tasklist/internal/models"
)

// Rejection reason codes, in the order the checks run.
type Reason string

const (
	ReasonEmpty               Reason = "EMPTY"
	ReasonTooShort            Reason = "TOO_SHORT"
	ReasonTooLong             Reason = "TOO_LONG"
	ReasonSymbolsOnly         Reason = "SYMBOLS_ONLY"
	ReasonExcessiveWhitespace Reason = "EXCESSIVE_WHITESPACE"
	ReasonDisallowedContent   Reason = "DISALLOWED_CONTENT"
)

const (
	DefaultMinLength = 3
	DefaultMaxLength = 200
)

// DefaultBlocklist holds placeholder descriptions that are rejected when the
// whole trimmed text matches one of them. Note this is a whole-string match,
// not a contains check; "spam" is rejected but "report spam folder" passes.
func DefaultBlocklist() []string {
	return []string{"spam", "test123", "dummy"}
}

var (
	symbolsOnly          = regexp.MustCompile(`^[^a-zA-Z0-9\s]+$`)
	excessiveWhitespace  = regexp.MustCompile(`\s{3,}`)
	nonWhitespaceControl = regexp.MustCompile("[\x00-\x08\x0e-\x1f\x7f]")
	whitespaceRun        = regexp.MustCompile(`[\t\n\v\f\r ]+`)
)

// Result reports whether a description was accepted, and if not, why.
type Result struct {
	OK      bool
	Reason  Reason
	Message string
}

func rejected(reason Reason, message string) Result {
	return Result{OK: false, Reason: reason, Message: message}
}

// Validator holds the configurable acceptance rules. The zero value is not
// usable; construct with New.
type Validator struct {
	MinLength int
	MaxLength int
	Blocklist []string
}

func New() *Validator {
	return &Validator{
		MinLength: DefaultMinLength,
		MaxLength: DefaultMaxLength,
		Blocklist: DefaultBlocklist(),
	}
}

// Validate classifies raw text as an acceptable task description. Checks run
// in a fixed order and stop at the first failure.
func (v *Validator) Validate(raw string) Result {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return rejected(ReasonEmpty, "Task description cannot be empty")
	}
	length := utf8.RuneCountInString(trimmed)
	if length < v.MinLength {
		return rejected(ReasonTooShort,
			fmt.Sprintf("Task must be at least %d characters long", v.MinLength))
	}
	if length > v.MaxLength {
		return rejected(ReasonTooLong,
			fmt.Sprintf("Task description too long (max %d characters)", v.MaxLength))
	}
	if symbolsOnly.MatchString(trimmed) {
		return rejected(ReasonSymbolsOnly, "Task must contain letters or numbers")
	}
	if excessiveWhitespace.MatchString(trimmed) {
		return rejected(ReasonExcessiveWhitespace, "Task contains excessive whitespace")
	}
	for _, blocked := range v.Blocklist {
		if strings.EqualFold(trimmed, blocked) {
			return rejected(ReasonDisallowedContent, "Please use a more descriptive task name")
		}
	}
	return Result{OK: true}
}

// Summary renders a human-readable checklist of the acceptance rules plus
// the first issue found, for display next to a rejected input.
func (v *Validator) Summary(raw string) string {
	var b strings.Builder
	b.WriteString("Task Validation Summary:\n\n")
	fmt.Fprintf(&b, "Length: %d characters\n", utf8.RuneCountInString(raw))
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Minimum %d characters\n", v.MinLength)
	fmt.Fprintf(&b, "- Maximum %d characters\n", v.MaxLength)
	b.WriteString("- Contains letters or numbers\n")
	b.WriteString("- No excessive whitespace\n")
	b.WriteString("- Descriptive content\n")

	if result := v.Validate(raw); !result.OK {
		fmt.Fprintf(&b, "\nIssue: %s", result.Message)
	}
	return b.String()
}

// Sanitize normalizes a description for storage and comparison: strips
// non-whitespace ASCII control characters, collapses whitespace runs to
// single spaces, and trims. Idempotent.
func Sanitize(raw string) string {
	s := nonWhitespaceControl.ReplaceAllString(raw, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsUnique reports whether candidate's sanitized description collides with
// no existing task, compared case-insensitively. An empty candidate or an
// empty list is vacuously unique.
func IsUnique(candidate string, existing []*models.Task) bool {
	if candidate == "" || len(existing) == 0 {
		return true
	}
	sanitized := Sanitize(candidate)
	for _, task := range existing {
		if task == nil {
			continue
		}
		if strings.EqualFold(Sanitize(task.Description), sanitized) {
			return false
		}
	}
	return true
}
