package brain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chat-brain/backend/internal/brain"
	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/chat-brain/backend/internal/storage"
)

// Mocks

type MockTrainingStore struct {
	mock.Mock
}

func (m *MockTrainingStore) ListPairs(ctx context.Context, scope string) ([]knowledge.TrainingPair, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]knowledge.TrainingPair), args.Error(1)
}

func (m *MockTrainingStore) InsertPair(ctx context.Context, pair knowledge.TrainingPair) error {
	args := m.Called(ctx, pair)
	return args.Error(0)
}

func (m *MockTrainingStore) PairExists(ctx context.Context, scope, question string) (bool, error) {
	args := m.Called(ctx, scope, question)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrainingStore) CountPairs(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockTrainingStore) RecordUpdate(ctx context.Context, scope, updateType, source string, added int) error {
	args := m.Called(ctx, scope, updateType, source, added)
	return args.Error(0)
}

func (m *MockTrainingStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockConversationLog struct {
	mock.Mock
}

func (m *MockConversationLog) RecentExchanges(ctx context.Context, scope string, since time.Time) ([]knowledge.Exchange, error) {
	args := m.Called(ctx, scope, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]knowledge.Exchange), args.Error(1)
}

func (m *MockConversationLog) AppendExchange(ctx context.Context, scope string, ex knowledge.Exchange) error {
	args := m.Called(ctx, scope, ex)
	return args.Error(0)
}

// Teach

func TestTeachStoresManualPair(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{}, store, store, testLogger())
	ctx := context.Background()

	require.NoError(t, engine.Teach(ctx, "bot-1", "как дела", "Хорошо, спасибо!"))

	pairs, err := store.ListPairs(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, knowledge.CategoryManual, pairs[0].Category)
	assert.NotEmpty(t, pairs[0].ID)
}

func TestTeachRejectsEmptyInput(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{}, store, store, testLogger())

	err := engine.Teach(context.Background(), "bot-1", "   ", "answer")
	assert.ErrorIs(t, err, brain.ErrEmptyInput)
}

func TestTeachNeverDeduplicates(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{}, store, store, testLogger())
	ctx := context.Background()

	require.NoError(t, engine.Teach(ctx, "bot-1", "как дела", "Хорошо"))
	require.NoError(t, engine.Teach(ctx, "bot-1", "как дела", "Отлично"))

	pairs, err := store.ListPairs(ctx, "bot-1")
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

// AutoLearn

func TestAutoLearnPromotesRecurringExchanges(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2}, store, store, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "как дела", Answer: "Хорошо",
		}))
	}
	require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
		Question: "спасибо", Answer: "Пожалуйста",
	}))

	learned := engine.AutoLearn(ctx, "bot-1")
	assert.Equal(t, 1, learned)

	pairs, err := store.ListPairs(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "как дела", pairs[0].Question)
	assert.Equal(t, knowledge.CategoryAutoLearned, pairs[0].Category)
}

func TestAutoLearnSecondPassIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2}, store, store, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "как дела", Answer: "Хорошо",
		}))
	}

	assert.Equal(t, 1, engine.AutoLearn(ctx, "bot-1"))
	assert.Equal(t, 0, engine.AutoLearn(ctx, "bot-1"))
}

func TestAutoLearnFirstAnswerWins(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2}, store, store, testLogger())
	ctx := context.Background()

	require.NoError(t, store.InsertPair(ctx, knowledge.TrainingPair{
		Scope: "bot-1", Question: "как дела", Answer: "Первый ответ",
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "как дела", Answer: "Другой ответ",
		}))
	}

	assert.Equal(t, 0, engine.AutoLearn(ctx, "bot-1"))

	pairs, err := store.ListPairs(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Первый ответ", pairs[0].Answer)
}

func TestAutoLearnSkipsShortEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2}, store, store, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "да", Answer: "ок",
		}))
	}

	assert.Equal(t, 0, engine.AutoLearn(ctx, "bot-1"))
}

func TestAutoLearnCapsBatch(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2, MaxLearnBatch: 3}, store, store, testLogger())
	ctx := context.Background()

	for n := 0; n < 10; n++ {
		question := fmt.Sprintf("вопрос номер %d", n)
		for i := 0; i < 2; i++ {
			require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
				Question: question, Answer: "Типовой ответ",
			}))
		}
	}

	assert.Equal(t, 3, engine.AutoLearn(ctx, "bot-1"))
}

func TestAutoLearnRanksByFrequency(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{MinRepeat: 2, MaxLearnBatch: 1}, store, store, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "редкий вопрос", Answer: "Редкий ответ",
		}))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, store.AppendExchange(ctx, "bot-1", knowledge.Exchange{
			Question: "частый вопрос", Answer: "Частый ответ",
		}))
	}

	require.Equal(t, 1, engine.AutoLearn(ctx, "bot-1"))

	pairs, err := store.ListPairs(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "частый вопрос", pairs[0].Question)
}

func TestAutoLearnLogUnavailableReturnsZero(t *testing.T) {
	store := new(MockTrainingStore)
	convo := new(MockConversationLog)
	convo.On("RecentExchanges", mock.Anything, "bot-1", mock.Anything).
		Return(nil, errors.New("connection refused"))

	engine := brain.New(brain.Config{}, store, convo, testLogger())

	assert.Equal(t, 0, engine.AutoLearn(context.Background(), "bot-1"))
	store.AssertNotCalled(t, "InsertPair", mock.Anything, mock.Anything)
}

func TestAutoLearnStoreFailureDegrades(t *testing.T) {
	store := new(MockTrainingStore)
	convo := new(MockConversationLog)
	convo.On("RecentExchanges", mock.Anything, "bot-1", mock.Anything).
		Return([]knowledge.Exchange{
			{Question: "как дела", Answer: "Хорошо"},
			{Question: "как дела", Answer: "Хорошо"},
		}, nil)
	store.On("PairExists", mock.Anything, "bot-1", "как дела").Return(false, nil)
	store.On("InsertPair", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	engine := brain.New(brain.Config{}, store, convo, testLogger())

	assert.Equal(t, 0, engine.AutoLearn(context.Background(), "bot-1"))
}

// BulkUpdate

func TestBulkUpdateRejectsOversizedBatch(t *testing.T) {
	store := new(MockTrainingStore)
	engine := brain.New(brain.Config{MaxBulkEntries: 100}, store, nil, testLogger())

	entries := make([]knowledge.Entry, 150)
	for i := range entries {
		entries[i] = knowledge.Entry{Question: "вопрос достаточной длины", Answer: "ответ достаточной длины"}
	}

	added, err := engine.BulkUpdate(context.Background(), "bot-1", entries)
	assert.ErrorIs(t, err, brain.ErrBatchTooLarge)
	assert.Zero(t, added)
	store.AssertNotCalled(t, "InsertPair", mock.Anything, mock.Anything)
}

func TestBulkUpdateSkipsTrivialEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{}, store, store, testLogger())

	added, err := engine.BulkUpdate(context.Background(), "bot-1", []knowledge.Entry{
		{Question: "как оплатить заказ", Answer: "Картой или наличными"},
		{Question: "да", Answer: "нет"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestBulkUpdateRecordsAudit(t *testing.T) {
	store := storage.NewMemoryStore()
	engine := brain.New(brain.Config{}, store, store, testLogger())

	_, err := engine.BulkUpdate(context.Background(), "bot-1", []knowledge.Entry{
		{Question: "как оплатить заказ", Answer: "Картой или наличными", Category: "billing"},
	})
	require.NoError(t, err)

	updates := store.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "bulk_update", updates[0].UpdateType)
	assert.Equal(t, 1, updates[0].Added)
}
