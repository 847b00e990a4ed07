// Package password holds the single password policy shared by the API (registration)
// and its clients (strength indicator), so the two can never drift apart.
package password

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/world-explorer/internal/errors"
)

const (
	MinLength = 8
	MaxLength = 128

	// SpecialCharacters is the set that satisfies the special-character rule.
	SpecialCharacters = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// Rule is one requirement of the policy.
type Rule string

const (
	RuleMinLength Rule = "min_length"
	RuleMaxLength Rule = "max_length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleNumber    Rule = "number"
	RuleSpecial   Rule = "special"
)

// Rules lists every rule in the order they are reported.
var Rules = []Rule{RuleMinLength, RuleMaxLength, RuleUppercase, RuleLowercase, RuleNumber, RuleSpecial}

var ruleMessages = map[Rule]string{
	RuleMinLength: "at least 8 characters",
	RuleMaxLength: "no more than 128 characters",
	RuleUppercase: "at least one uppercase letter",
	RuleLowercase: "at least one lowercase letter",
	RuleNumber:    "at least one number",
	RuleSpecial:   `at least one special character (!@#$%^&*()_+-=[]{}|;:'",.<>/?)`,
}

// Message is the phrase used for the rule inside a combined validation message.
func (r Rule) Message() string {
	return ruleMessages[r]
}

// Result is the outcome of checking a password against the policy.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Unmet   []Rule `json:"unmet,omitempty"`
}

type classes struct {
	upper, lower, digit, special bool
}

func scan(pw string) classes {
	var c classes
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= '0' && r <= '9':
			c.digit = true
		case strings.ContainsRune(SpecialCharacters, r):
			c.special = true
		}
	}
	return c
}

// Validate checks pw against every rule and names all the unmet ones.
func Validate(pw string) Result {
	if pw == "" {
		return Result{Valid: false, Message: "Password is required", Unmet: append([]Rule(nil), Rules[:1]...)}
	}

	length := utf8.RuneCountInString(pw)
	c := scan(pw)
	met := map[Rule]bool{
		RuleMinLength: length >= MinLength,
		RuleMaxLength: length <= MaxLength,
		RuleUppercase: c.upper,
		RuleLowercase: c.lower,
		RuleNumber:    c.digit,
		RuleSpecial:   c.special,
	}

	var unmet []Rule
	var phrases []string
	for _, r := range Rules {
		if !met[r] {
			unmet = append(unmet, r)
			phrases = append(phrases, r.Message())
		}
	}
	if len(unmet) == 0 {
		return Result{Valid: true, Message: "Password is valid"}
	}
	return Result{
		Valid:   false,
		Message: "Password must contain " + strings.Join(phrases, ", ") + ".",
		Unmet:   unmet,
	}
}

// Check returns a validation error when pw breaks the policy.
func Check(pw string) error {
	res := Validate(pw)
	if res.Valid {
		return nil
	}
	return apperrors.Validation("%s", res.Message)
}
