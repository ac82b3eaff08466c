//go:build !integration

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"telegram-chat-stats/internal/config"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/infra/logging"
)

// wordCounter charges one token per whitespace separated word.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestBuildPrompt(t *testing.T) {
	msgs := []string{"newest one", "middle one", "oldest one"}

	t.Run("everything fits", func(t *testing.T) {
		got := BuildPrompt(wordCounter{}, "Describe:", msgs, 0)
		if got != "Describe:\nnewest one\nmiddle one\noldest one" {
			t.Errorf("unexpected prompt %q", got)
		}
	})

	t.Run("budget keeps newest messages", func(t *testing.T) {
		got := BuildPrompt(wordCounter{}, "Describe:", msgs, 5)
		if got != "Describe:\nnewest one\nmiddle one" {
			t.Errorf("unexpected prompt %q", got)
		}
	})

	t.Run("at least one message is sent", func(t *testing.T) {
		got := BuildPrompt(wordCounter{}, "Describe:", msgs, 1)
		if got != "Describe:\nnewest one" {
			t.Errorf("unexpected prompt %q", got)
		}
	})
}

func TestRuneCounter(t *testing.T) {
	if got := (runeCounter{}).Count("привет мир!"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

type slowSummarizer struct {
	active, peak int32
}

func (s *slowSummarizer) Provider() string { return "slow" }

func (s *slowSummarizer) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	n := atomic.AddInt32(&s.active, 1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&s.active, -1)
	return "ok", nil
}

func TestLimitedAI(t *testing.T) {
	inner := &slowSummarizer{}
	l := NewLimitedAI(inner, 2)
	if l.Provider() != "slow" {
		t.Errorf("provider should pass through, got %q", l.Provider())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Summarize(context.Background(), "", []string{"x"})
		}()
	}
	wg.Wait()
	if peak := atomic.LoadInt32(&inner.peak); peak > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", peak)
	}
}

func TestLimitedAI_ContextCancelled(t *testing.T) {
	l := NewLimitedAI(&slowSummarizer{}, 1).(*limitedAI)
	l.sem <- struct{}{} // occupy the only slot
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Summarize(ctx, "", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewSummarizer_MissingCredential(t *testing.T) {
	s, err := NewSummarizer(context.Background(), config.AIConfig{ConcurrentLimit: 1}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Summarize(context.Background(), "x", []string{"y"}); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestOpenAIAdapter(t *testing.T) {
	var gotPrompt string
	var fail bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(body, &req)
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"` + req.Model + `",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" concise summary "}}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenAIAdapter("test-key", srv.URL+"/", "gpt-4o-mini", wordCounter{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if o.Provider() != ProviderOpenAI {
		t.Errorf("unexpected provider %q", o.Provider())
	}

	got, err := o.Summarize(context.Background(), "Describe:", []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "concise summary" {
		t.Errorf("unexpected summary %q", got)
	}
	if gotPrompt != "Describe:\nhello\nworld" {
		t.Errorf("unexpected prompt %q", gotPrompt)
	}

	fail = true
	if _, err := o.Summarize(context.Background(), "Describe:", []string{"hello"}); err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("expected a 503 error, got %v", err)
	}
}

func TestConstructorsRejectEmptyKeys(t *testing.T) {
	if _, err := NewOpenAIAdapter("", "", "", wordCounter{}, 0); err == nil {
		t.Error("expected error for empty openai key")
	}
	if _, err := NewGeminiAdapter(context.Background(), "", "", "", wordCounter{}, 0); err == nil {
		t.Error("expected error for empty gemini key")
	}
}
