package types

import (
	"errors"
	"fmt"
	"strings"
)

// Limits enforced on uploaded quiz configurations and player input.
const (
	MaxConfigNameLength = 70
	MaxConfigTextLength = 300
	MinQuestions        = 1
	MaxQuestions        = 50
	MinQuestionText     = 1
	MaxQuestionText     = 400
	MinAnswers          = 1
	MaxAnswers          = 8
	MinAnswerText       = 1
	MaxAnswerText       = 150
	MinNameLength       = 1
	MaxNameLength       = 30
)

// Validation errors for uploaded configurations. These surface as
// HTTP 400 bodies, not wire error tags.
var (
	ErrStringTooLong  = errors.New("string exceeds maximum length")
	ErrStringTooShort = errors.New("string below minimum length")
	ErrInvalidRange   = errors.New("value out of valid range")
	ErrInvalidEnum    = errors.New("invalid enum value")
)

// validateStringLength validates string length in bytes.
func validateStringLength(value string, minLen, maxLen int, fieldName string) error {
	if len(value) < minLen {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrStringTooShort, fieldName, minLen)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrStringTooLong, fieldName, maxLen)
	}
	return nil
}

// ValidatePlayerName trims the provided name and checks the length
// bounds, returning the trimmed name. Length violations map to the
// InvalidNameLength wire error.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return "", ErrInvalidNameLength
	}
	return name, nil
}

// ValidateConfig checks an uploaded game configuration against the
// limits above, including every question.
func ValidateConfig(cfg *GameConfig) error {
	if err := validateStringLength(cfg.Name, 1, MaxConfigNameLength, "quiz name"); err != nil {
		return err
	}
	if err := validateStringLength(cfg.Text, 0, MaxConfigTextLength, "quiz text"); err != nil {
		return err
	}
	if cfg.MaxPlayers < 1 {
		return fmt.Errorf("%w: max players must be positive", ErrInvalidRange)
	}
	if !cfg.Filtering.Valid() {
		return fmt.Errorf("%w: filtering must be one of None, Low, Medium, High", ErrInvalidEnum)
	}
	if len(cfg.Questions) < MinQuestions || len(cfg.Questions) > MaxQuestions {
		return fmt.Errorf("%w: quiz must contain between %d and %d questions", ErrInvalidRange, MinQuestions, MaxQuestions)
	}

	for i, question := range cfg.Questions {
		if err := ValidateQuestion(question); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateQuestion checks a single question and its variant data.
func ValidateQuestion(q *Question) error {
	if err := validateStringLength(q.Text, MinQuestionText, MaxQuestionText, "question text"); err != nil {
		return err
	}
	if q.AnswerTime == 0 {
		return fmt.Errorf("%w: answer time must be positive", ErrInvalidRange)
	}
	if q.Scoring.MaxScore < q.Scoring.MinScore {
		return fmt.Errorf("%w: max score must not be below min score", ErrInvalidRange)
	}

	switch q.Data.Ty {
	case QuestionSingle:
		if err := validateAnswerValues(q.Data.Answers); err != nil {
			return err
		}
		if q.Data.CorrectCount() != 1 {
			return fmt.Errorf("%w: single choice questions require exactly one correct answer", ErrInvalidRange)
		}
	case QuestionMultiple:
		if err := validateAnswerValues(q.Data.Answers); err != nil {
			return err
		}
		if q.Data.CorrectCount() < 1 {
			return fmt.Errorf("%w: multiple choice questions require at least one correct answer", ErrInvalidRange)
		}
	case QuestionTrueFalse:
		// Nothing beyond the shared checks.
	case QuestionTyper:
		if len(q.Data.TyperAnswers) < MinAnswers || len(q.Data.TyperAnswers) > MaxAnswers {
			return fmt.Errorf("%w: questions must have between %d and %d answers", ErrInvalidRange, MinAnswers, MaxAnswers)
		}
		for _, value := range q.Data.TyperAnswers {
			if err := validateStringLength(value, MinAnswerText, MaxAnswerText, "answer text"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidEnum, q.Data.Ty)
	}

	return nil
}

func validateAnswerValues(answers []AnswerValue) error {
	if len(answers) < MinAnswers || len(answers) > MaxAnswers {
		return fmt.Errorf("%w: questions must have between %d and %d answers", ErrInvalidRange, MinAnswers, MaxAnswers)
	}
	for _, answer := range answers {
		if err := validateStringLength(answer.Value, MinAnswerText, MaxAnswerText, "answer text"); err != nil {
			return err
		}
	}
	return nil
}

// WireError extracts the stable wire tag from an error chain, falling
// back to Unexpected for anything that is not a GameError.
func WireError(err error) GameError {
	var ge GameError
	if errors.As(err, &ge) {
		return ge
	}
	return ErrUnexpected
}
