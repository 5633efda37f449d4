// Package filter wraps the profanity classifier behind the single
// predicate the game needs for player display names.
package filter

import (
	goaway "github.com/TwiN/go-away"

	"quizler/internal/types"
)

// One detector per filtering level. Higher levels enable more of the
// evasion-detection sanitizers, so "f u c k" or leet-speak variants
// only trip the stricter settings.
var (
	lowDetector = goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(false).
			WithSanitizeSpecialCharacters(false).
			WithSanitizeAccents(false)

	mediumDetector = goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(false).
			WithSanitizeSpecialCharacters(true).
			WithSanitizeAccents(true)

	highDetector = goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(true).
			WithSanitizeSpecialCharacters(true).
			WithSanitizeAccents(true)
)

// IsInappropriate reports whether the name is disallowed at the
// provided filtering level.
func IsInappropriate(name string, level types.NameFiltering) bool {
	switch level {
	case types.FilteringLow:
		return lowDetector.IsProfane(name)
	case types.FilteringMedium:
		return mediumDetector.IsProfane(name)
	case types.FilteringHigh:
		return highDetector.IsProfane(name)
	default:
		return false
	}
}
