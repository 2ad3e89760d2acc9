package password

import (
	"strings"
	"unicode"
)

// Strength is the result of evaluating a candidate password.
// Valid requires a score of at least MinValidScore and an empty Feedback list.
type Strength struct {
	Valid    bool
	Score    int
	Feedback []string
}

// MinValidScore is the minimum score a password must reach to be accepted.
const MinValidScore = 60

// Score weights. Four character classes at 15 points each plus 20 for base
// length yields 80; the 12- and 16-character bonuses top the scale out at 100.
const (
	lengthPoints      = 20
	charClassPoints   = 15
	lengthBonusPoints = 10
	patternPenalty    = 20

	minLength         = 8
	lengthBonusAt     = 12
	longLengthBonusAt = 16

	maxRepeatedRun = 2
)

// commonWords are dictionary prefixes that make an otherwise conforming
// password trivially guessable.
var commonWords = []string{
	"password", "qwerty", "admin", "letmein", "welcome", "monkey",
	"dragon", "master", "login", "abc123", "iloveyou", "sunshine",
	"princess", "football", "baseball", "shadow", "superman", "batman",
	"trustno1", "freedom", "whatever", "secret",
}

// ValidateStrength scores a candidate password from 0 to 100 and collects
// itemized feedback for every unmet requirement. Callers should present the
// feedback verbatim; it is written for end users.
func ValidateStrength(password string) Strength {
	var s Strength

	if len(password) >= minLength {
		s.Score += lengthPoints
	} else {
		s.Feedback = append(s.Feedback, "password must be at least 8 characters long")
	}
	if len(password) >= lengthBonusAt {
		s.Score += lengthBonusPoints
	}
	if len(password) >= longLengthBonusAt {
		s.Score += lengthBonusPoints
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if hasLower {
		s.Score += charClassPoints
	} else {
		s.Feedback = append(s.Feedback, "password must contain at least one lowercase letter")
	}
	if hasUpper {
		s.Score += charClassPoints
	} else {
		s.Feedback = append(s.Feedback, "password must contain at least one uppercase letter")
	}
	if hasDigit {
		s.Score += charClassPoints
	} else {
		s.Feedback = append(s.Feedback, "password must contain at least one digit")
	}
	if hasSpecial {
		s.Score += charClassPoints
	} else {
		s.Feedback = append(s.Feedback, "password must contain at least one special character")
	}

	if pattern, found := weakPattern(password); found {
		s.Score -= patternPenalty
		s.Feedback = append(s.Feedback, pattern)
	}

	if s.Score < 0 {
		s.Score = 0
	}

	s.Valid = s.Score >= MinValidScore && len(s.Feedback) == 0
	return s
}

// weakPattern reports the first known-weak pattern matched by the password.
func weakPattern(password string) (string, bool) {
	lower := strings.ToLower(password)

	for _, word := range commonWords {
		if strings.HasPrefix(lower, word) {
			return "password starts with a common word", true
		}
	}

	run := 1
	for i := 1; i < len(password); i++ {
		if password[i] == password[i-1] {
			run++
			if run > maxRepeatedRun {
				return "password contains repeated characters", true
			}
		} else {
			run = 1
		}
	}

	if len(password) > 0 {
		allDigits := true
		allAlpha := true
		for _, r := range password {
			if !unicode.IsDigit(r) {
				allDigits = false
			}
			if !unicode.IsLetter(r) {
				allAlpha = false
			}
		}
		if allDigits {
			return "password cannot be all digits", true
		}
		if allAlpha {
			return "password cannot be all letters", true
		}
	}

	return "", false
}
