// Package service implements the external content classifier with a
// bounded result cache
package service

import (
	"container/list"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"modguard/internal/services/classifier/domain"

	perr "modguard/internal/platform/errors"
	"modguard/internal/platform/logger"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a strict content moderator for group chats. ` +
	`Reply with exactly "OK" if the message is acceptable, or ` +
	`"INAPPROPRIATE: <short reason>" if it is not.`

// Completer is the slice of the OpenAI client the service uses
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config tunes the classifier
type Config struct {
	Model     string
	Timeout   time.Duration
	CacheSize int
}

type cacheEntry struct {
	key string
	res domain.Analysis
}

// Service calls the model and memoizes verdicts per exact text
type Service struct {
	log logger.Logger
	cfg Config
	cc  Completer

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List

	requests uint64
	hits     uint64
	misses   uint64
	failures uint64
}

// New builds the classifier service. A nil completer yields a service
// whose Analyze always fails, which the pipeline degrades around
func New(log logger.Logger, cfg Config, cc Completer) *Service {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	return &Service{
		log:   log.With().Str("component", "classifier").Logger(),
		cfg:   cfg,
		cc:    cc,
		items: make(map[string]*list.Element, cfg.CacheSize),
		order: list.New(),
	}
}

// Analyze classifies text, serving repeats from the cache
func (s *Service) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	s.mu.Lock()
	s.requests++
	if el, ok := s.items[text]; ok {
		s.hits++
		s.order.MoveToFront(el)
		res := el.Value.(*cacheEntry).res
		s.mu.Unlock()
		res.Source = "cache"
		return res, nil
	}
	s.misses++
	s.mu.Unlock()

	if s.cc == nil {
		s.fail()
		return domain.Analysis{}, perr.Unavailablef("classifier not configured")
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.cc.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: 0,
		MaxTokens:   64,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		s.fail()
		s.log.Warn().Err(err).Msg("chat completion failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return domain.Analysis{}, perr.Timeoutf("classifier timed out: %v", err)
		}
		return domain.Analysis{}, perr.Unavailablef("classifier call failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		s.fail()
		return domain.Analysis{}, perr.Unavailablef("classifier returned no choices")
	}

	res := parseReply(resp.Choices[0].Message.Content)
	s.store(text, res)
	return res, nil
}

// Stats returns a copy of the counters
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Stats{
		Requests:    s.requests,
		CacheHits:   s.hits,
		CacheMisses: s.misses,
		Failures:    s.failures,
	}
}

func (s *Service) fail() {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
}

func (s *Service) store(key string, res domain.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		el.Value.(*cacheEntry).res = res
		s.order.MoveToFront(el)
		return
	}
	s.items[key] = s.order.PushFront(&cacheEntry{key: key, res: res})
	for s.order.Len() > s.cfg.CacheSize {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*cacheEntry).key)
	}
}

func parseReply(raw string) domain.Analysis {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	upper := strings.ToUpper(line)
	if strings.HasPrefix(upper, "INAPPROPRIATE") {
		reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len("INAPPROPRIATE"):]), ":"))
		if reason == "" {
			reason = "flagged by classifier"
		}
		return domain.Analysis{Inappropriate: true, Reason: reason, Source: "model"}
	}
	// anything that is not an explicit flag counts as clean
	return domain.Analysis{Source: "model"}
}
