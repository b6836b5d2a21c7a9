package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/saviour/internal/patient"
)

func samplePatient() patient.Input {
	in := patient.Defaults()
	in.Symptoms = "chest pain, dyspnea"
	in.MedicalHistory = "COPD"
	return in
}

// fakeCompletions serves the OpenAI chat completion wire format.
func fakeCompletions(t *testing.T, handler func(w http.ResponseWriter, req openai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Bad credentials","type":"invalid_request_error"}}`))
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func newTestClient(t *testing.T, url, token string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url, Model: "gpt-4o-mini", Token: token, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestRecommendPassesContentThrough(t *testing.T) {
	content := "  **Differential**: tension pneumothorax\n\n1. Needle decompression\n\t"
	var got openai.ChatCompletionRequest

	srv := fakeCompletions(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		got = req
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completion(content))
	})

	out, err := newTestClient(t, srv.URL, "test-token").Recommend(context.Background(), samplePatient())
	require.NoError(t, err)
	assert.Equal(t, content, out)

	wantPrompt, err := BuildPrompt(samplePatient())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, SystemInstruction, got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, wantPrompt, got.Messages[1].Content)
}

func TestRecommendSurfacesAuthFailure(t *testing.T) {
	srv := fakeCompletions(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		t.Error("handler must not run with a bad token")
	})

	_, err := newTestClient(t, srv.URL, "wrong-token").Recommend(context.Background(), samplePatient())
	var terr *TransportError
	require.True(t, errors.As(err, &terr), "expected TransportError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, terr.StatusCode)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestRecommendSurfacesServerError(t *testing.T) {
	calls := 0
	srv := fakeCompletions(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	})

	_, err := newTestClient(t, srv.URL, "test-token").Recommend(context.Background(), samplePatient())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, 1, calls, "failures are not retried")
}

func TestRecommendSurfacesNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, "test-token").Recommend(context.Background(), samplePatient())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
	assert.Contains(t, err.Error(), "connect")
}

func TestRecommendNoChoices(t *testing.T) {
	srv := fakeCompletions(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "empty"})
	})

	_, err := newTestClient(t, srv.URL, "test-token").Recommend(context.Background(), samplePatient())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, err.Error(), "no choices")
}

func TestRecommendHonoursTimeout(t *testing.T) {
	srv := fakeCompletions(t, func(w http.ResponseWriter, req openai.ChatCompletionRequest) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(completion("late"))
	})

	c, err := New(Config{BaseURL: srv.URL, Model: "gpt-4o-mini", Token: "test-token", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Recommend(context.Background(), samplePatient())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
}

func TestNewRequiresConfiguration(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing token", Config{BaseURL: "http://llm.local", Model: "m"}},
		{"blank token", Config{BaseURL: "http://llm.local", Model: "m", Token: "   "}},
		{"missing base url", Config{Model: "m", Token: "t"}},
		{"missing model", Config{BaseURL: "http://llm.local", Token: "t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.cfg)
			assert.Nil(t, c)
			var cerr *ConfigurationError
			assert.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
		})
	}
}

func TestUnavailableReturnsItsError(t *testing.T) {
	cause := &ConfigurationError{Setting: "API token", Reason: "is not set"}
	_, err := Unavailable{Err: cause}.Recommend(context.Background(), samplePatient())
	assert.Same(t, cause, err)
}
