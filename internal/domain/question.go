package domain

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// QuestionKind tells whether a question comes with an image
type QuestionKind string

const (
	KindText   QuestionKind = "text"
	KindVisual QuestionKind = "visual"
)

// Difficulty of a generated question
type Difficulty string

const (
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// OptionCount is the number of answer options every question carries
const OptionCount = 4

// TriviaQuestion is a single multiple-choice question.
// Once issued to players it is treated as immutable.
type TriviaQuestion struct {
	Category      string       `json:"category" validate:"required"`
	Text          string       `json:"question" validate:"required"`
	Options       []string     `json:"options" validate:"len=4,unique,dive,required"`
	CorrectAnswer string       `json:"correctAnswer" validate:"required"`
	Kind          QuestionKind `json:"kind" validate:"oneof=text visual"`
	ImageRef      string       `json:"imageRef,omitempty" validate:"required_if=Kind visual"`
	Difficulty    Difficulty   `json:"difficulty,omitempty" validate:"omitempty,oneof=normal hard"`
}

// Validate checks the option set and that the correct answer is one of them
func (q TriviaQuestion) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	if !q.HasOption(q.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer %q not among options", ErrInvalidQuestion, q.CorrectAnswer)
	}
	return nil
}

// HasOption reports whether answer is one of the options
func (q TriviaQuestion) HasOption(answer string) bool {
	return slices.Contains(q.Options, answer)
}

// IsCorrect reports whether answer matches the correct answer
func (q TriviaQuestion) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// IncorrectOptions returns the options other than the correct answer
func (q TriviaQuestion) IncorrectOptions() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o != q.CorrectAnswer {
			out = append(out, o)
		}
	}
	return out
}

// Shuffled returns a copy with the options in uniformly random order
func (q TriviaQuestion) Shuffled(rng *rand.Rand) TriviaQuestion {
	opts := slices.Clone(q.Options)
	rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	q.Options = opts
	return q
}
