package service

import (
	"context"
	"log"
	"strconv"
	"strings"

	"roommatch/internal/utils"
)

// Summarizer compresses long apartment descriptions before they enter the
// scoring prompt. Summarization is best-effort: on any failure the original
// text is truncated instead, and the pipeline continues.
type Summarizer struct {
	client   AIClient
	maxWords int
}

// NewSummarizer creates a summarizer capped at maxWords
func NewSummarizer(client AIClient, maxWords int) *Summarizer {
	if maxWords <= 0 {
		maxWords = 50
	}
	return &Summarizer{client: client, maxWords: maxWords}
}

const summarizePrompt = `You will receive a long real estate listing description.

Your task:
- Summarize it into 1-2 extremely concise sentences.
- Keep ONLY factual info explicitly mentioned.
- NO creativity.
- NO invented features.
- NO marketing fluff.
- MAX %WORDS% words.

Return ONLY plain text with no introduction. No markdown, no JSON.

Description:
`

// Summarize returns a short factual summary of text, or a fixed-length
// truncation when the LLM call fails or produces nothing usable.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if len(strings.Fields(text)) <= s.maxWords {
		return text
	}

	truncated := utils.TruncateWords(text, s.maxWords)
	if s.client == nil || !s.client.IsEnabled() {
		return truncated
	}

	prompt := strings.Replace(summarizePrompt, "%WORDS%", strconv.Itoa(s.maxWords), 1) + text
	out, err := s.client.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Summarization failed, using truncation: %v", err)
		return truncated
	}

	out = strings.TrimSpace(strings.ReplaceAll(out, "```", ""))
	if out == "" {
		return truncated
	}
	// Small models sometimes ignore the limit; enforce it locally
	return utils.TruncateWords(out, s.maxWords)
}
