package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatStub(t *testing.T, handler func(model string, messages []map[string]string) (string, int)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		var req struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		content, status := handler(req.Model, req.Messages)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestQueryOne(t *testing.T) {
	srv := chatStub(t, func(model string, messages []map[string]string) (string, int) {
		assert.Equal(t, "test-model", model)
		require.Len(t, messages, 1)
		assert.Equal(t, "hello", messages[0]["content"])
		return "hi back", http.StatusOK
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	res := c.QueryOne(context.Background(), "test-model", "hello", 5*time.Second)
	require.NotNil(t, res)
	assert.Equal(t, "hi back", res.Content)
	assert.GreaterOrEqual(t, res.ResponseTimeMS, int64(0))
}

func TestQueryOneNon2xxIsNil(t *testing.T) {
	srv := chatStub(t, func(string, []map[string]string) (string, int) {
		return "", http.StatusTooManyRequests
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	assert.Nil(t, c.QueryOne(context.Background(), "m", "q", time.Second))
}

func TestQueryOneEmptyContentIsNil(t *testing.T) {
	srv := chatStub(t, func(string, []map[string]string) (string, int) {
		return "   ", http.StatusOK
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	assert.Nil(t, c.QueryOne(context.Background(), "m", "q", time.Second))
}

func TestQueryOneTimeoutIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	assert.Nil(t, c.QueryOne(context.Background(), "m", "q", 20*time.Millisecond))
}

func TestQueryManyIsolatesFailures(t *testing.T) {
	var calls atomic.Int32
	srv := chatStub(t, func(model string, _ []map[string]string) (string, int) {
		calls.Add(1)
		if model == "bad" {
			return "", http.StatusInternalServerError
		}
		return "answer from " + model, http.StatusOK
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	results := c.QueryMany(context.Background(), []string{"good1", "bad", "good2"}, "q", 5*time.Second)

	require.Len(t, results, 3)
	assert.Equal(t, int32(3), calls.Load())
	assert.Nil(t, results["bad"])
	require.NotNil(t, results["good1"])
	assert.Equal(t, "answer from good1", results["good1"].Content)
	require.NotNil(t, results["good2"])
}

func TestQueryEachDistinctPrompts(t *testing.T) {
	srv := chatStub(t, func(model string, messages []map[string]string) (string, int) {
		return fmt.Sprintf("%s saw %s", model, messages[0]["content"]), http.StatusOK
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	results := c.QueryEach(context.Background(), map[string]string{
		"m1": "p1",
		"m2": "p2",
	}, 5*time.Second)

	require.NotNil(t, results["m1"])
	assert.Equal(t, "m1 saw p1", results["m1"].Content)
	require.NotNil(t, results["m2"])
	assert.Equal(t, "m2 saw p2", results["m2"].Content)
}

func TestQueryManyWithMessagesPassesHistory(t *testing.T) {
	srv := chatStub(t, func(_ string, messages []map[string]string) (string, int) {
		require.Len(t, messages, 3)
		assert.Equal(t, "user", messages[0]["role"])
		assert.Equal(t, "assistant", messages[1]["role"])
		return "ok", http.StatusOK
	})
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	turns := []Turn{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "second"},
	}
	results := c.QueryManyWithMessages(context.Background(), []string{"m"}, turns, 5*time.Second)
	require.NotNil(t, results["m"])
}
