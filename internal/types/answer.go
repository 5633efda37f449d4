package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Answer is a client-submitted answer, one variant per question type.
type Answer struct {
	Ty QuestionType

	// Single: index of the chosen answer
	Index int
	// Multiple: indices of the chosen answers
	Indexes []int
	// TrueFalse
	Bool bool
	// Typer
	Text string
}

// answerWire is the JSON shape of an answer. The answer field is raw
// because it is an index, bool or string depending on the variant.
type answerWire struct {
	Ty      QuestionType    `json:"ty"`
	Answer  json.RawMessage `json:"answer,omitempty"`
	Answers []int           `json:"answers,omitempty"`
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var wire answerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*a = Answer{Ty: wire.Ty}

	switch wire.Ty {
	case QuestionSingle:
		return json.Unmarshal(wire.Answer, &a.Index)
	case QuestionMultiple:
		a.Indexes = wire.Answers
		return nil
	case QuestionTrueFalse:
		return json.Unmarshal(wire.Answer, &a.Bool)
	case QuestionTyper:
		return json.Unmarshal(wire.Answer, &a.Text)
	}

	return fmt.Errorf("unknown answer type %q", wire.Ty)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	wire := answerWire{Ty: a.Ty}

	var err error
	switch a.Ty {
	case QuestionSingle:
		wire.Answer, err = json.Marshal(a.Index)
	case QuestionMultiple:
		wire.Answers = a.Indexes
	case QuestionTrueFalse:
		wire.Answer, err = json.Marshal(a.Bool)
	case QuestionTyper:
		wire.Answer, err = json.Marshal(a.Text)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(wire)
}

// Matches reports whether this answer is the right variant for the
// provided question data.
func (a *Answer) Matches(data *QuestionData) bool {
	return a.Ty == data.Ty
}

// AnswerRecord stores a player's answer to one question along with the
// elapsed time since the question started and, once marked, the score.
type AnswerRecord struct {
	// Elapsed since the question entered the answering window.
	Elapsed time.Duration
	// Answer as submitted by the player.
	Answer Answer
	// Score assigned during marking, nil until marked.
	Score *Score
}

// PlayerAnswers holds one record per question for a single player.
// Records are zero-valued until the player answers.
type PlayerAnswers []AnswerRecord

// NewPlayerAnswers allocates one empty record per question.
func NewPlayerAnswers(questions int) PlayerAnswers {
	return make(PlayerAnswers, questions)
}

// Has reports whether an answer has been recorded at the index.
func (p PlayerAnswers) Has(index int) bool {
	return p[index].Answer.Ty != ""
}

// Set stores the answer data at the index.
func (p PlayerAnswers) Set(index int, elapsed time.Duration, answer Answer) {
	p[index] = AnswerRecord{Elapsed: elapsed, Answer: answer}
}

// Reset clears every record back to its empty state.
func (p PlayerAnswers) Reset() {
	for i := range p {
		p[i] = AnswerRecord{}
	}
}
