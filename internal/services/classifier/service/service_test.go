package service

import (
	"context"
	"errors"
	"testing"

	"modguard/internal/platform/logger"

	perr "modguard/internal/platform/errors"

	openai "github.com/sashabaranov/go-openai"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) CreateChatCompletion(
	_ context.Context,
	_ openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func newSvc(cc Completer, cacheSize int) *Service {
	return New(*logger.Get(), Config{Model: "test", CacheSize: cacheSize}, cc)
}

func TestAnalyzeCachesRepeats(t *testing.T) {
	fc := &fakeCompleter{reply: "OK"}
	s := newSvc(fc, 8)

	res, err := s.Analyze(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Inappropriate || res.Source != "model" {
		t.Fatalf("unexpected first result: %+v", res)
	}

	res, err = s.Analyze(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("analyze repeat: %v", err)
	}
	if res.Source != "cache" {
		t.Fatalf("expected cache hit, got source %q", res.Source)
	}
	if fc.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", fc.calls)
	}

	st := s.Stats()
	if st.Requests != 2 || st.CacheHits != 1 || st.CacheMisses != 1 || st.Failures != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestAnalyzeParsesFlag(t *testing.T) {
	fc := &fakeCompleter{reply: "INAPPROPRIATE: targeted harassment"}
	s := newSvc(fc, 8)

	res, err := s.Analyze(context.Background(), "some text")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.Inappropriate {
		t.Fatal("expected flagged result")
	}
	if res.Reason != "targeted harassment" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestAnalyzeBackendErrorIsUnavailable(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	s := newSvc(fc, 8)

	_, err := s.Analyze(context.Background(), "text")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if s.Stats().Failures != 1 {
		t.Fatalf("expected failure counted, got %+v", s.Stats())
	}
}

func TestAnalyzeTimeoutMapsToTimeout(t *testing.T) {
	fc := &fakeCompleter{err: context.DeadlineExceeded}
	s := newSvc(fc, 8)

	_, err := s.Analyze(context.Background(), "text")
	if !perr.IsCode(err, perr.ErrorCodeTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAnalyzeNoBackend(t *testing.T) {
	s := newSvc(nil, 8)
	_, err := s.Analyze(context.Background(), "text")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	fc := &fakeCompleter{reply: "OK"}
	s := newSvc(fc, 2)

	ctx := context.Background()
	for _, txt := range []string{"a", "b", "c"} {
		if _, err := s.Analyze(ctx, txt); err != nil {
			t.Fatalf("analyze %q: %v", txt, err)
		}
	}

	// "a" was evicted, "c" is still cached
	if _, err := s.Analyze(ctx, "c"); err != nil {
		t.Fatalf("analyze c: %v", err)
	}
	if _, err := s.Analyze(ctx, "a"); err != nil {
		t.Fatalf("analyze a: %v", err)
	}
	if fc.calls != 4 {
		t.Fatalf("expected 4 backend calls, got %d", fc.calls)
	}
}
