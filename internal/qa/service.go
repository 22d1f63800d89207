// Package qa answers free-text questions about a stored video transcript via an
// external chat-completion model.
package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Manoranjanhere/EDUUB/internal/models"
)

var (
	// ErrVideoNotFound reports an unknown video id. The model is never contacted
	// in this case.
	ErrVideoNotFound = errors.New("video not found")
	// ErrModel reports a failed call to the generative-model endpoint.
	ErrModel = errors.New("model request failed")
)

const cacheTTL = time.Hour

// Answer is the fixed answer shape. The generative model reports no confidence or
// span, so Score is pinned to 1 and Start/End to 0 for interface compatibility
// with extraction-style QA.
type Answer struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// VideoLookup resolves a video record by id (nil when absent).
type VideoLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
}

// AnswerCache caches answers per video and question. Optional; nil disables caching.
type AnswerCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service builds a prompt from a stored transcript and forwards it to the model.
type Service struct {
	repo   VideoLookup
	client *openai.Client
	model  string
	cache  AnswerCache
	logger *zap.Logger
}

// NewService creates a QA service. cache may be nil.
func NewService(repo VideoLookup, client *openai.Client, model string, cache AnswerCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, client: client, model: model, cache: cache, logger: logger}
}

// NewChatClient creates a chat-completion client. baseURL may point at any
// OpenAI-compatible endpoint; empty means the default OpenAI API.
func NewChatClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Ask answers a question about a stored video's transcript.
func (s *Service) Ask(ctx context.Context, videoID uuid.UUID, question string) (*Answer, error) {
	v, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	if v == nil {
		return nil, ErrVideoNotFound
	}

	key := cacheKey(videoID, question)
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("answer cache get failed", zap.Error(err))
		} else if ok {
			var a Answer
			if err := json.Unmarshal([]byte(raw), &a); err == nil {
				return &a, nil
			}
		}
	}

	prompt := buildPrompt(v.Transcript, question)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}

	// A missing or empty completion yields an empty answer, not an error.
	answer := ""
	if len(resp.Choices) > 0 {
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	a := &Answer{Answer: answer, Score: 1, Start: 0, End: 0}

	if s.cache != nil {
		if raw, err := json.Marshal(a); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), cacheTTL); err != nil {
				s.logger.Warn("answer cache set failed", zap.Error(err))
			}
		}
	}
	return a, nil
}

func buildPrompt(transcript, question string) string {
	return fmt.Sprintf(`You are an authority on the content of this video. Answer the question using only the transcript below.

Transcript:
%s

Question: %s`, transcript, question)
}

func cacheKey(videoID uuid.UUID, question string) string {
	sum := sha256.Sum256([]byte(question))
	return "qa:" + videoID.String() + ":" + hex.EncodeToString(sum[:8])
}
