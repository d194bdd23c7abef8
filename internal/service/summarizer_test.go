package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSummarizeShortTextUnchanged(t *testing.T) {
	s := NewSummarizer(&stubAI{enabled: true}, 10)

	text := "bright flat with three rooms"
	if got := s.Summarize(context.Background(), text); got != text {
		t.Errorf("Summarize() = %q, want unchanged input", got)
	}
}

func TestSummarizeTruncatesOnError(t *testing.T) {
	s := NewSummarizer(&stubAI{
		enabled:    true,
		completeFn: func(string) (string, error) { return "", errors.New("upstream down") },
	}, 3)

	got := s.Summarize(context.Background(), "one two three four five six")
	if got != "one two three..." {
		t.Errorf("Summarize() = %q, want truncation fallback", got)
	}
}

func TestSummarizeTruncatesWhenDisabled(t *testing.T) {
	s := NewSummarizer(&stubAI{enabled: false}, 3)

	got := s.Summarize(context.Background(), "one two three four five six")
	if got != "one two three..." {
		t.Errorf("Summarize() = %q, want truncation fallback", got)
	}
}

func TestSummarizeEnforcesWordCap(t *testing.T) {
	s := NewSummarizer(&stubAI{
		enabled: true,
		completeFn: func(string) (string, error) {
			return "this summary is much longer than the configured cap allows it to be", nil
		},
	}, 4)

	got := s.Summarize(context.Background(),
		"a very long listing description that clearly exceeds four words in total")
	if len(strings.Fields(strings.TrimSuffix(got, "..."))) > 4 {
		t.Errorf("Summarize() = %q, exceeds word cap", got)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := NewSummarizer(&stubAI{enabled: true}, 5)

	if got := s.Summarize(context.Background(), "   "); got != "" {
		t.Errorf("Summarize() = %q, want empty", got)
	}
}
