package quiz

import (
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
)

// QuizAnsweredEvent is raised every time a user submits or re-submits an
// answer. Downstream handlers recompute pass status from scratch, since a
// retry can change which answer is current for an already-answered question.
type QuizAnsweredEvent struct {
	shared.BaseEvent
	Answer *QuizAnswer
}

// Payload implements shared.Event.
func (e QuizAnsweredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.Answer.UserID,
		"daily_read_id": e.Answer.DailyReadID,
		"question_seq":  e.Answer.QuestionSeq,
		"retry_seq":     e.Answer.RetrySeq,
	}
}

// NewQuizAnsweredEvent creates a new QuizAnsweredEvent.
func NewQuizAnsweredEvent(answer *QuizAnswer) QuizAnsweredEvent {
	return QuizAnsweredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventQuizAnswered, answer.ID),
		Answer:    answer,
	}
}
