package questions

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"trivia/internal/domain"
)

// ErrBankExhausted is returned when every bank question has been excluded
var ErrBankExhausted = errors.New("question bank exhausted")

// BankThemes are the themes the offline bank hands out
var BankThemes = []string{
	"Cosmic Exploration", "World Capitals", "Transit Trivia", "Science Basics", "Music Legends", DefaultTheme,
}

func q(category, text, correct string, wrong ...string) domain.TriviaQuestion {
	return domain.TriviaQuestion{
		Category:      category,
		Text:          text,
		Options:       append([]string{correct}, wrong...),
		CorrectAnswer: correct,
		Kind:          domain.KindText,
	}
}

func hard(t domain.TriviaQuestion) domain.TriviaQuestion {
	t.Difficulty = domain.DifficultyHard
	return t
}

// bankQuestions is a curated offline set used when no model is configured
var bankQuestions = []domain.TriviaQuestion{
	// Space
	q("Space", "Which planet is known as the Red Planet?", "Mars", "Venus", "Jupiter", "Mercury"),
	q("Space", "What is the largest planet in our solar system?", "Jupiter", "Saturn", "Neptune", "Earth"),
	q("Space", "Who was the first person to walk on the Moon?", "Neil Armstrong", "Buzz Aldrin", "Yuri Gagarin", "Michael Collins"),
	q("Space", "What galaxy contains our solar system?", "Milky Way", "Andromeda", "Triangulum", "Sombrero"),
	hard(q("Space", "What is the name of the boundary around a black hole beyond which nothing escapes?", "Event horizon", "Photon sphere", "Ergosphere", "Accretion disk")),
	hard(q("Space", "Which moon of Saturn has a thick nitrogen atmosphere?", "Titan", "Enceladus", "Rhea", "Iapetus")),

	// Geography
	q("Geography", "What is the capital of Australia?", "Canberra", "Sydney", "Melbourne", "Perth"),
	q("Geography", "Which river flows through Cairo?", "Nile", "Tigris", "Euphrates", "Jordan"),
	q("Geography", "What is the capital of Canada?", "Ottawa", "Toronto", "Vancouver", "Montreal"),
	hard(q("Geography", "Which country has the most time zones including overseas territories?", "France", "Russia", "United States", "United Kingdom")),

	// Transit
	q("Transit", "Which city opened the world's first underground railway in 1863?", "London", "Paris", "New York", "Budapest"),
	q("Transit", "What does the 'TGV' in French rail stand for?", "Train à Grande Vitesse", "Transport Général Voyageurs", "Train Grand Volume", "Tracé Grande Voie"),
	q("Transit", "Which city's metro system is famous for its chandeliers and mosaics?", "Moscow", "Tokyo", "Berlin", "Madrid"),
	hard(q("Transit", "In which year did the Shinkansen bullet train first enter service?", "1964", "1958", "1972", "1981")),

	// Science
	q("Science", "What is the chemical symbol for gold?", "Au", "Ag", "Gd", "Go"),
	q("Science", "What gas do plants absorb from the atmosphere?", "Carbon dioxide", "Oxygen", "Nitrogen", "Helium"),
	q("Science", "How many bones are in the adult human body?", "206", "198", "212", "187"),
	hard(q("Science", "What is the most abundant protein in the human body?", "Collagen", "Keratin", "Hemoglobin", "Actin")),

	// Music
	q("Music", "Which band released the album 'Abbey Road'?", "The Beatles", "The Rolling Stones", "Pink Floyd", "The Who"),
	q("Music", "How many keys are on a standard piano?", "88", "76", "92", "64"),
	hard(q("Music", "Which composer wrote 'The Rite of Spring'?", "Igor Stravinsky", "Sergei Prokofiev", "Maurice Ravel", "Claude Debussy")),
}

// Bank is an offline Source and ThemeGenerator backed by a fixed question set
type Bank struct {
	questions []domain.TriviaQuestion
	themes    []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBank creates a bank over the built-in questions
func NewBank(rng *rand.Rand) *Bank {
	return NewBankWith(bankQuestions, BankThemes, rng)
}

// NewBankWith creates a bank over the given questions and themes
func NewBankWith(questions []domain.TriviaQuestion, themes []string, rng *rand.Rand) *Bank {
	return &Bank{questions: questions, themes: themes, rng: rng}
}

// FetchTheme returns a random bank theme
func (b *Bank) FetchTheme(ctx context.Context) (string, error) {
	if len(b.themes) == 0 {
		return "", errors.New("no bank themes")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.themes[b.rng.Intn(len(b.themes))], nil
}

// FetchThemeBatch returns up to count bank questions in random order
func (b *Bank) FetchThemeBatch(ctx context.Context, theme string, count int) ([]domain.TriviaQuestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.TriviaQuestion, 0, min(count, len(b.questions)))
	for _, i := range b.rng.Perm(len(b.questions)) {
		if len(out) == count {
			break
		}
		out = append(out, b.questions[i])
	}
	return out, nil
}

// FetchSingle returns a random question not in exclude, preferring the requested difficulty
func (b *Bank) FetchSingle(ctx context.Context, theme string, exclude []string, difficulty domain.Difficulty) (domain.TriviaQuestion, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, text := range exclude {
		excluded[text] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var fallback *domain.TriviaQuestion
	for _, i := range b.rng.Perm(len(b.questions)) {
		cand := b.questions[i]
		if excluded[cand.Text] {
			continue
		}
		if difficulty != domain.DifficultyHard || cand.Difficulty == domain.DifficultyHard {
			return cand, nil
		}
		if fallback == nil {
			fallback = &cand
		}
	}

	if fallback != nil {
		return *fallback, nil
	}
	return domain.TriviaQuestion{}, ErrBankExhausted
}
