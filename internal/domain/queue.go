package domain

// QuestionQueue holds the question on screen and the ones still to come
type QuestionQueue struct {
	current   *TriviaQuestion
	remaining []TriviaQuestion
	asked     []string
}

// NewQuestionQueue makes the first question current and queues the rest
func NewQuestionQueue(questions []TriviaQuestion) *QuestionQueue {
	q := &QuestionQueue{}
	if len(questions) == 0 {
		return q
	}

	first := questions[0]
	q.current = &first
	q.asked = append(q.asked, first.Text)
	q.remaining = append(q.remaining, questions[1:]...)
	return q
}

// Current returns the question on screen
func (q *QuestionQueue) Current() (TriviaQuestion, bool) {
	if q.current == nil {
		return TriviaQuestion{}, false
	}
	return *q.current, true
}

// Remaining returns how many questions are queued behind the current one
func (q *QuestionQueue) Remaining() int {
	return len(q.remaining)
}

// Advance pops the head of the queue into the current slot.
// On an empty queue it clears the current question and returns ErrQueueExhausted.
func (q *QuestionQueue) Advance() (TriviaQuestion, error) {
	if len(q.remaining) == 0 {
		q.current = nil
		return TriviaQuestion{}, ErrQueueExhausted
	}

	next := q.remaining[0]
	q.remaining = q.remaining[1:]
	q.current = &next
	q.asked = append(q.asked, next.Text)
	return next, nil
}

// Asked returns the text of every question issued so far
func (q *QuestionQueue) Asked() []string {
	out := make([]string, len(q.asked))
	copy(out, q.asked)
	return out
}
