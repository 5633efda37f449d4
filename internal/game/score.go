package game

import (
	"math"
	"strings"

	"quizler/internal/types"
)

// markAnswer computes the score for one recorded answer. Pure and
// deterministic: the same record, question and elapsed time always
// produce the same score.
//
// The base score scales linearly from MaxScore at zero elapsed down to
// MinScore at the full answer time, with BonusScore added inside the
// bonus window.
func markAnswer(record *types.AnswerRecord, question *types.Question) types.Score {
	if record.Answer.Ty == "" {
		// Player never answered.
		return types.Incorrect()
	}

	elapsedMs := record.Elapsed.Milliseconds()

	timePct := 1 - float64(elapsedMs)/float64(question.AnswerTime)
	if timePct < 0 {
		timePct = 0
	}

	scoring := question.Scoring
	base := scoring.MinScore + uint32(math.Round(float64(scoring.MaxScore-scoring.MinScore)*timePct))
	if elapsedMs >= 0 && uint64(elapsedMs) <= uint64(question.BonusScoreTime) {
		base += scoring.BonusScore
	}

	answer := &record.Answer
	data := &question.Data

	if !answer.Matches(data) {
		// Shape mismatches should have been rejected on submission,
		// but marking never trusts that.
		return types.Incorrect()
	}

	switch data.Ty {
	case types.QuestionSingle:
		if answer.Index >= 0 && answer.Index < len(data.Answers) && data.Answers[answer.Index].Correct {
			return types.Correct(base)
		}
		return types.Incorrect()

	case types.QuestionMultiple:
		countChosen := len(answer.Indexes)
		countExpected := data.CorrectCount()
		if countChosen < 1 || countChosen > countExpected {
			return types.Incorrect()
		}

		countCorrect := 0
		for _, index := range answer.Indexes {
			if index >= 0 && index < len(data.Answers) && data.Answers[index].Correct {
				countCorrect++
			}
		}

		switch {
		case countCorrect < 1:
			return types.Incorrect()
		case countCorrect == countExpected:
			return types.Correct(base)
		default:
			percent := float64(countCorrect) / float64(countExpected)
			value := uint32(math.Round(float64(base) * percent))
			return types.Partial(value, uint32(countCorrect), uint32(countExpected))
		}

	case types.QuestionTrueFalse:
		if answer.Bool == data.Answer {
			return types.Correct(base)
		}
		return types.Incorrect()

	case types.QuestionTyper:
		text := strings.TrimSpace(answer.Text)
		for _, value := range data.TyperAnswers {
			if data.IgnoreCase {
				if strings.EqualFold(text, value) {
					return types.Correct(base)
				}
			} else if text == value {
				return types.Correct(base)
			}
		}
		return types.Incorrect()
	}

	return types.Incorrect()
}
