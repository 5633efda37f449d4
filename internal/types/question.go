package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Image holds the raw bytes of an uploaded image together with its
// declared mime type.
type Image struct {
	Mime string
	Data []byte
}

// ImageFit is the client-side fit mode for question images.
type ImageFit string

const (
	FitContain ImageFit = "Contain"
	FitCover   ImageFit = "Cover"
	FitWidth   ImageFit = "Width"
	FitHeight  ImageFit = "Height"
)

// QuestionImage references an uploaded image by UUID along with the
// fit mode clients should render it with.
type QuestionImage struct {
	UUID uuid.UUID `json:"uuid"`
	Fit  ImageFit  `json:"fit"`
}

// Scoring holds the per-question score range and bonus amount.
type Scoring struct {
	// MinScore is awarded for the slowest correct answer.
	MinScore uint32 `json:"min_score"`
	// MaxScore is awarded for an instant correct answer.
	MaxScore uint32 `json:"max_score"`
	// BonusScore is added when answering within the bonus window.
	BonusScore uint32 `json:"bonus_score"`
}

// QuestionType discriminates the question (and answer) variants.
type QuestionType string

const (
	QuestionSingle    QuestionType = "Single"
	QuestionMultiple  QuestionType = "Multiple"
	QuestionTrueFalse QuestionType = "TrueFalse"
	QuestionTyper     QuestionType = "Typer"
)

// AnswerValue is one selectable answer of a Single or Multiple
// question. The correct flag is accepted on upload but never
// serialized back to clients.
type AnswerValue struct {
	Value   string
	Correct bool
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	// Clients must not learn which answers are correct.
	return json.Marshal(struct {
		Value string `json:"value"`
	}{Value: a.Value})
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value   string `json:"value"`
		Correct bool   `json:"correct"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Value = raw.Value
	a.Correct = raw.Correct
	return nil
}

// QuestionData carries the variant-specific portion of a question.
// Exactly one variant's fields are meaningful, selected by Ty.
type QuestionData struct {
	Ty QuestionType

	// Single / Multiple
	Answers []AnswerValue

	// TrueFalse, hidden from clients
	Answer bool

	// Typer, hidden from clients
	TyperAnswers []string
	IgnoreCase   bool
}

// CorrectCount returns the number of answers flagged correct.
func (d *QuestionData) CorrectCount() int {
	count := 0
	for _, a := range d.Answers {
		if a.Correct {
			count++
		}
	}
	return count
}

// Question is a single quiz question. Its variant data is flattened
// into the question object on the wire, discriminated by "ty".
type Question struct {
	Data QuestionData
	// Text is the question prompt.
	Text string
	// Image optionally references an uploaded image.
	Image *QuestionImage
	// AnswerTime is the answering window in milliseconds.
	AnswerTime uint64
	// BonusScoreTime is the bonus window in milliseconds.
	BonusScoreTime uint32
	// Scoring is the score range for this question.
	Scoring Scoring
}

// questionWire is the flattened JSON shape of a question. The answers
// field is raw because its element type depends on the variant.
type questionWire struct {
	Ty             QuestionType    `json:"ty"`
	Answers        json.RawMessage `json:"answers,omitempty"`
	Answer         *bool           `json:"answer,omitempty"`
	IgnoreCase     *bool           `json:"ignore_case,omitempty"`
	Text           string          `json:"text"`
	Image          *QuestionImage  `json:"image,omitempty"`
	AnswerTime     uint64          `json:"answer_time"`
	BonusScoreTime uint32          `json:"bonus_score_time"`
	Scoring        Scoring         `json:"scoring"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	wire := questionWire{
		Ty:             q.Data.Ty,
		Text:           q.Text,
		Image:          q.Image,
		AnswerTime:     q.AnswerTime,
		BonusScoreTime: q.BonusScoreTime,
		Scoring:        q.Scoring,
	}

	switch q.Data.Ty {
	case QuestionSingle, QuestionMultiple:
		answers, err := json.Marshal(q.Data.Answers)
		if err != nil {
			return nil, err
		}
		wire.Answers = answers
	case QuestionTrueFalse, QuestionTyper:
		// Correct values are kept server-side only.
	}

	return json.Marshal(wire)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var wire questionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	q.Text = wire.Text
	q.Image = wire.Image
	q.AnswerTime = wire.AnswerTime
	q.BonusScoreTime = wire.BonusScoreTime
	q.Scoring = wire.Scoring
	q.Data = QuestionData{Ty: wire.Ty}

	switch wire.Ty {
	case QuestionSingle, QuestionMultiple:
		if err := json.Unmarshal(wire.Answers, &q.Data.Answers); err != nil {
			return err
		}
	case QuestionTrueFalse:
		if wire.Answer == nil {
			return fmt.Errorf("true/false question missing answer")
		}
		q.Data.Answer = *wire.Answer
	case QuestionTyper:
		if err := json.Unmarshal(wire.Answers, &q.Data.TyperAnswers); err != nil {
			return err
		}
		if wire.IgnoreCase != nil {
			q.Data.IgnoreCase = *wire.IgnoreCase
		}
	default:
		return fmt.Errorf("unknown question type %q", wire.Ty)
	}

	return nil
}

// GameConfig is the immutable configuration of one quiz. It is built
// once by the upload path and shared read-only by every session in the
// game. Only the public display fields are ever serialized to clients.
type GameConfig struct {
	Name       string
	Text       string
	MaxPlayers int
	Filtering  NameFiltering
	Questions  []*Question
	Images     map[uuid.UUID]Image
}

func (c *GameConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name       string `json:"name"`
		Text       string `json:"text"`
		MaxPlayers int    `json:"max_players"`
	}{
		Name:       c.Name,
		Text:       c.Text,
		MaxPlayers: c.MaxPlayers,
	})
}
