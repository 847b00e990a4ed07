package password

import "unicode/utf8"

// Level buckets the share of indicator requirements a password meets.
type Level string

const (
	LevelWeak   Level = "weak"
	LevelFair   Level = "fair"
	LevelGood   Level = "good"
	LevelStrong Level = "strong"
)

// Requirement is one line of a strength indicator.
type Requirement struct {
	Rule  Rule   `json:"rule"`
	Label string `json:"label"`
	Met   bool   `json:"met"`
}

// Strength is what a client shows while the user is typing.
type Strength struct {
	Requirements []Requirement `json:"requirements"`
	Percentage   int           `json:"percentage"`
	Level        Level         `json:"level"`
}

// MeetsAll reports whether every indicator requirement is met.
func (s Strength) MeetsAll() bool {
	for _, r := range s.Requirements {
		if !r.Met {
			return false
		}
	}
	return true
}

// Measure rates pw against the indicator requirements. The upper length bound is not
// part of the indicator; Validate still enforces it.
func Measure(pw string) Strength {
	c := scan(pw)
	reqs := []Requirement{
		{Rule: RuleMinLength, Label: "At least 8 characters", Met: utf8.RuneCountInString(pw) >= MinLength},
		{Rule: RuleUppercase, Label: "At least 1 uppercase letter", Met: c.upper},
		{Rule: RuleLowercase, Label: "At least 1 lowercase letter", Met: c.lower},
		{Rule: RuleNumber, Label: "At least 1 number", Met: c.digit},
		{Rule: RuleSpecial, Label: "At least 1 special character", Met: c.special},
	}

	met := 0
	for _, r := range reqs {
		if r.Met {
			met++
		}
	}
	pct := met * 100 / len(reqs)

	level := LevelWeak
	switch {
	case pct >= 80:
		level = LevelStrong
	case pct >= 60:
		level = LevelGood
	case pct >= 40:
		level = LevelFair
	}
	return Strength{Requirements: reqs, Percentage: pct, Level: level}
}
