package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readhabit/readhabit-hub/internal/domain/quiz"
	"github.com/readhabit/readhabit-hub/internal/domain/reading"
	"github.com/readhabit/readhabit-hub/internal/domain/shared"
	"github.com/readhabit/readhabit-hub/pkg/timeutil"
)

func seedDailyReadWithQuiz(t *testing.T, store *memStore, id string, minCorrect int, correctAnswers ...string) {
	t.Helper()

	d, err := reading.NewDailyRead(id, "title", "content", "Fiction", minCorrect, timeutil.NewClock().Today())
	require.NoError(t, err)
	d.PullEvents()
	store.dailyReads[id] = d

	for i, correct := range correctAnswers {
		store.questions[id] = append(store.questions[id], &quiz.QuizQuestion{
			DailyReadID: id, QuestionSeq: i + 1, Question: "q", CorrectAnswer: correct,
		})
	}
}

func TestSubmitQuizAnswer_FirstSubmission(t *testing.T) {
	store := newMemStore()
	seedDailyReadWithQuiz(t, store, "dr1", 2, "alpha", "beta")

	h := NewSubmitQuizAnswerHandler(&memUOW{store: store}, testLogger())

	result, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 1, Answer: "alpha",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AnswerID)
	assert.Equal(t, 1, result.RetrySeq)
	assert.Equal(t, 1, result.Result.CorrectCount)
	assert.False(t, result.Passed)
}

func TestSubmitQuizAnswer_RetryIncrementsSeq(t *testing.T) {
	store := newMemStore()
	seedDailyReadWithQuiz(t, store, "dr1", 1, "alpha")

	h := NewSubmitQuizAnswerHandler(&memUOW{store: store}, testLogger())

	first, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 1, Answer: "wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.RetrySeq)
	assert.False(t, first.Passed)

	second, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 1, Answer: "alpha",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.RetrySeq)
	assert.True(t, second.Passed)

	// Both submissions are kept; history is append-only.
	assert.Len(t, store.answers, 2)
}

func TestSubmitQuizAnswer_PassReflectsThreshold(t *testing.T) {
	store := newMemStore()
	seedDailyReadWithQuiz(t, store, "dr1", 2, "alpha", "beta", "gamma")

	h := NewSubmitQuizAnswerHandler(&memUOW{store: store}, testLogger())

	_, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 1, Answer: "alpha",
	})
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 2, Answer: "BETA",
	})
	require.NoError(t, err)

	// 2 of 3 correct meets the threshold of 2.
	assert.True(t, result.Passed)
}

func TestSubmitQuizAnswer_UnknownDailyRead(t *testing.T) {
	h := NewSubmitQuizAnswerHandler(&memUOW{store: newMemStore()}, testLogger())

	_, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "missing", QuestionSeq: 1, Answer: "alpha",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitQuizAnswer_QuestionSeqOutOfRange(t *testing.T) {
	store := newMemStore()
	seedDailyReadWithQuiz(t, store, "dr1", 1, "alpha")

	h := NewSubmitQuizAnswerHandler(&memUOW{store: store}, testLogger())

	_, err := h.Handle(context.Background(), SubmitQuizAnswerCommand{
		UserID: "user1", DailyReadID: "dr1", QuestionSeq: 2, Answer: "alpha",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSubmitQuizAnswer_Validation(t *testing.T) {
	h := NewSubmitQuizAnswerHandler(&memUOW{store: newMemStore()}, testLogger())

	cases := []SubmitQuizAnswerCommand{
		{DailyReadID: "dr1", QuestionSeq: 1, Answer: "a"},
		{UserID: "user1", QuestionSeq: 1, Answer: "a"},
		{UserID: "user1", DailyReadID: "dr1", QuestionSeq: 0, Answer: "a"},
	}
	for _, cmd := range cases {
		_, err := h.Handle(context.Background(), cmd)
		assert.Error(t, err)
	}
}
