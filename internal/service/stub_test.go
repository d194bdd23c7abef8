package service

import (
	"context"
	"errors"
)

// stubAI is a canned AIClient for pipeline tests
type stubAI struct {
	enabled      bool
	completeFn   func(prompt string) (string, error)
	completeJSON func(prompt string) (string, error)
	embedFn      func(texts []string) ([][]float32, error)
}

func (s *stubAI) IsEnabled() bool { return s.enabled }

func (s *stubAI) Complete(_ context.Context, prompt string) (string, error) {
	if s.completeFn == nil {
		return "", errors.New("no complete stub")
	}
	return s.completeFn(prompt)
}

func (s *stubAI) CompleteJSON(_ context.Context, prompt string) (string, error) {
	if s.completeJSON == nil {
		return "", errors.New("no completeJSON stub")
	}
	return s.completeJSON(prompt)
}

func (s *stubAI) CompleteStream(ctx context.Context, prompt string, callback StreamCallback) (string, error) {
	out, err := s.CompleteJSON(ctx, prompt)
	if err != nil {
		return "", err
	}
	if callback != nil {
		if err := callback(&StreamChunk{Content: out}); err != nil {
			return "", err
		}
		if err := callback(&StreamChunk{Done: true}); err != nil {
			return "", err
		}
	}
	return out, nil
}

func (s *stubAI) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if s.embedFn == nil {
		return nil, errors.New("no embedding stub")
	}
	return s.embedFn(texts)
}

var _ AIClient = (*stubAI)(nil)
