package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trivia/internal/domain"
)

// ErrNoStoredQuestions is returned when the question table has nothing for a theme
var ErrNoStoredQuestions = errors.New("no stored questions for theme")

// FetchThemeBatch returns up to count random stored questions for theme
func (g *Gorm) FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	var rows []StoredQuestion
	err := g.db.WithContext(ctx).
		Where("LOWER(theme) = LOWER(?)", theme).
		Order("random()").
		Limit(count).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toQuestions(rows)
}

// FetchSingle returns one random stored question for theme not in exclude
func (g *Gorm) FetchSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	query := g.db.WithContext(ctx).Where("LOWER(theme) = LOWER(?)", theme)
	if len(exclude) > 0 {
		query = query.Where("text NOT IN ?", exclude)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", string(difficulty))
	}

	var row StoredQuestion
	err := query.Order("random()").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TriviaQuestion{}, ErrNoStoredQuestions
	}
	if err != nil {
		return domain.TriviaQuestion{}, err
	}

	qs, err := toQuestions([]StoredQuestion{row})
	if err != nil {
		return domain.TriviaQuestion{}, err
	}
	if len(qs) == 0 {
		return domain.TriviaQuestion{}, ErrNoStoredQuestions
	}
	return qs[0], nil
}

// SaveQuestions stores questions under theme, skipping ones already present
func (g *Gorm) SaveQuestions(ctx context.Context, theme string, questions []domain.TriviaQuestion) error {
	rows, err := questionRows(theme, questions)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// questionRows builds the rows for questions. Visual questions are skipped.
func questionRows(theme string, questions []domain.TriviaQuestion) ([]StoredQuestion, error) {
	rows := make([]StoredQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Kind == domain.KindVisual {
			continue
		}
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return nil, err
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = domain.DifficultyNormal
		}
		rows = append(rows, StoredQuestion{
			Theme:         theme,
			Category:      q.Category,
			Text:          q.Text,
			Options:       datatypes.JSON(opts),
			CorrectAnswer: q.CorrectAnswer,
			Difficulty:    string(difficulty),
		})
	}
	return rows, nil
}

func toQuestions(rows []StoredQuestion) ([]domain.TriviaQuestion, error) {
	if len(rows) == 0 {
		return nil, ErrNoStoredQuestions
	}

	out := make([]domain.TriviaQuestion, 0, len(rows))
	for _, row := range rows {
		var opts []string
		if err := json.Unmarshal(row.Options, &opts); err != nil {
			return nil, fmt.Errorf("decode options of question %d: %w", row.ID, err)
		}
		q := domain.TriviaQuestion{
			Category:      row.Category,
			Text:          row.Text,
			Options:       opts,
			CorrectAnswer: row.CorrectAnswer,
			Kind:          domain.KindText,
			Difficulty:    domain.Difficulty(row.Difficulty),
		}
		if q.Validate() != nil {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}
