package conversation_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwenbin0122/goal-planner/internal/conversation"
	"github.com/wuwenbin0122/goal-planner/internal/llm"
	"github.com/wuwenbin0122/goal-planner/internal/models"
	"github.com/wuwenbin0122/goal-planner/internal/planner"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 5, 0, 0, time.UTC)

type recordingResponder struct {
	mu        sync.Mutex
	histories [][]models.Turn
	contexts  []planner.StrategyContext
	err       error
	delay     time.Duration
}

func (r *recordingResponder) ContinueConversation(_ context.Context, history []models.Turn, sc planner.StrategyContext) (string, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories = append(r.histories, append([]models.Turn(nil), history...))
	r.contexts = append(r.contexts, sc)
	if r.err != nil {
		return "", r.err
	}
	last := history[len(history)-1]
	return "reply to " + last.Content, nil
}

func newService(t *testing.T, responder conversation.Responder) (*conversation.Service, *conversation.MemoryStore) {
	t.Helper()
	store, err := conversation.NewMemoryStore(64)
	require.NoError(t, err)
	return conversation.NewService(store, responder, nil, conversation.WithClock(func() time.Time { return fixedNow })), store
}

func TestChatRecordsTurnsInOrder(t *testing.T) {
	responder := &recordingResponder{}
	svc, store := newService(t, responder)
	ctx := context.Background()
	sc := planner.StrategyContext{Strategy: "plan", Goal: "Run"}

	first, err := svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", Message: "hello", Context: sc})
	require.NoError(t, err)
	assert.Equal(t, "reply to [Current time: March 10, 2025 at 09:05 AM] hello", first)

	_, err = svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", Message: "again", Context: sc})
	require.NoError(t, err)

	require.Len(t, responder.histories, 2)
	second := responder.histories[1]
	require.Len(t, second, 3)
	assert.Equal(t, models.RoleUser, second[0].Role)
	assert.Equal(t, "[Current time: March 10, 2025 at 09:05 AM] hello", second[0].Content)
	assert.Equal(t, models.RoleAssistant, second[1].Role)
	assert.Equal(t, first, second[1].Content)
	assert.Equal(t, models.RoleUser, second[2].Role)
	assert.Equal(t, sc, responder.contexts[1])

	stored, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestChatKeepsUserTurnOnFailure(t *testing.T) {
	responder := &recordingResponder{err: llm.ErrUnauthorized}
	svc, store := newService(t, responder)

	_, err := svc.Chat(context.Background(), conversation.ChatInput{SessionID: "s1", Message: "hello"})
	require.ErrorIs(t, err, llm.ErrUnauthorized)

	stored, err := store.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.RoleUser, stored[0].Role)
}

func TestChatValidatesInput(t *testing.T) {
	svc, _ := newService(t, &recordingResponder{})

	_, err := svc.Chat(context.Background(), conversation.ChatInput{SessionID: " ", Message: "hi"})
	assert.ErrorIs(t, err, conversation.ErrEmptySessionID)

	_, err = svc.Chat(context.Background(), conversation.ChatInput{SessionID: "s1", Message: ""})
	assert.ErrorIs(t, err, conversation.ErrEmptyMessage)
}

type failingStore struct{}

func (failingStore) GetOrCreate(context.Context, string) ([]models.Turn, error) {
	return nil, errors.New("store down")
}

func (failingStore) Append(context.Context, string, models.Turn) error { return nil }

func TestChatWrapsStoreErrors(t *testing.T) {
	svc := conversation.NewService(failingStore{}, &recordingResponder{}, nil)

	_, err := svc.Chat(context.Background(), conversation.ChatInput{SessionID: "s1", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
	assert.Equal(t, llm.KindUnknown, llm.KindOf(err))
}

func TestConcurrentChatsOnOneSessionDoNotInterleave(t *testing.T) {
	responder := &recordingResponder{delay: 2 * time.Millisecond}
	svc, store := newService(t, responder)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Chat(ctx, conversation.ChatInput{SessionID: "shared", Message: fmt.Sprintf("msg-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := store.GetOrCreate(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, turns, 2*n)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, models.RoleUser, turns[i].Role)
		assert.Equal(t, models.RoleAssistant, turns[i+1].Role)
		assert.Equal(t, "reply to "+turns[i].Content, turns[i+1].Content)
	}

	for i, history := range responder.histories {
		assert.Len(t, history, 2*i+1, "call %d should see every earlier exchange", i)
	}
}

func TestChatThroughGatewaySendsPriorTurns(t *testing.T) {
	var (
		mu       sync.Mutex
		requests [][]llm.Message
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []llm.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		requests = append(requests, body.Messages)
		n := len(requests)
		mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": fmt.Sprintf("answer %d", n)}}},
		})
	}))
	defer srv.Close()

	client := llm.NewClient(llm.Config{Endpoint: srv.URL, APIKey: "sk-test"}, nil, llm.WithClock(func() time.Time { return fixedNow }))
	svc, _ := newService(t, client)
	ctx := context.Background()

	_, err := svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", Message: "first"})
	require.NoError(t, err)
	_, err = svc.Chat(ctx, conversation.ChatInput{SessionID: "s1", Message: "second"})
	require.NoError(t, err)

	require.Len(t, requests, 2)
	msgs := requests[1]
	require.Len(t, msgs, 4)

	systemCount := 0
	for _, m := range msgs {
		if m.Role == "system" {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "first")
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "answer 1", msgs[2].Content)
	assert.Equal(t, "user", msgs[3].Role)
	assert.Contains(t, msgs[3].Content, "second")
	assert.NotContains(t, msgs[0].Content, "Generated Strategy")
}
