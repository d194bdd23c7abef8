package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"roommatch/internal/config"
	"roommatch/internal/model"
	"roommatch/internal/repository"
	"roommatch/internal/utils"
)

// ErrEmptyQuery is returned when a recommendation is requested for blank
// input. Rejected before any network call.
var ErrEmptyQuery = errors.New("query text is empty")

// ScoreParseError reports LLM scoring output that could not be parsed into
// the expected shape. It carries the raw offending output for diagnosis and
// is surfaced to the caller instead of crashing or retrying.
type ScoreParseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *ScoreParseError) Error() string {
	return fmt.Sprintf("%s scoring output could not be parsed: %v (raw output: %s)",
		e.Stage, e.Err, utils.TruncateString(e.Raw, 300))
}

func (e *ScoreParseError) Unwrap() error { return e.Err }

// StageCallback receives pipeline progress events during streaming runs
type StageCallback func(event string, data any) error

// Matcher sequences the recommendation pipeline: parse, retrieve, filter,
// format, score, rank, render. It holds no per-call state; every dependency
// is injected so tests can stub the external services.
type Matcher struct {
	store        repository.VectorStore
	embedder     *Embedder
	client       AIClient
	disambiguate *Disambiguator
	summarizer   *Summarizer
	filter       *RoommateFilter
	cfg          config.MatchConfig
}

// NewMatcher creates a matcher with explicit dependencies
func NewMatcher(
	store repository.VectorStore,
	embedder *Embedder,
	client AIClient,
	disambiguator *Disambiguator,
	summarizer *Summarizer,
	filter *RoommateFilter,
	cfg config.MatchConfig,
) *Matcher {
	return &Matcher{
		store:        store,
		embedder:     embedder,
		client:       client,
		disambiguate: disambiguator,
		summarizer:   summarizer,
		filter:       filter,
		cfg:          cfg,
	}
}

// RecommendApartments runs the apartment flow: disambiguate the raw query,
// retrieve nearest listings, summarize descriptions, have the LLM score them
// against the rubric, then rank and render the top_k.
func (m *Matcher) RecommendApartments(ctx context.Context, query string, topK int) (*model.Recommendation, error) {
	return m.recommendApartments(ctx, query, topK, nil)
}

// RecommendApartmentsStream is RecommendApartments with stage progress events
// delivered through the callback (parsing, retrieving, summarizing, scoring,
// plus thinking/content deltas from the scoring call).
func (m *Matcher) RecommendApartmentsStream(ctx context.Context, query string, topK int, callback StageCallback) (*model.Recommendation, error) {
	return m.recommendApartments(ctx, query, topK, callback)
}

func (m *Matcher) recommendApartments(ctx context.Context, query string, topK int, callback StageCallback) (*model.Recommendation, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	topK = m.clampTopK(topK)

	// 1. Parse
	if err := emit(callback, "parsing", map[string]any{"query": query}); err != nil {
		return nil, err
	}
	parsed := m.disambiguate.Parse(ctx, query)
	if err := emit(callback, "parsed", parsed); err != nil {
		return nil, err
	}

	// 2. Retrieve
	if err := emit(callback, "retrieving", map[string]any{"collection": m.cfg.ApartmentsCollection}); err != nil {
		return nil, err
	}
	vec, err := m.embedder.EmbedQuery(ctx, parsed.ApartmentQuery)
	if err != nil {
		return nil, fmt.Errorf("apartment query embedding failed: %w", err)
	}
	hits, err := m.store.Query(ctx, m.cfg.ApartmentsCollection, vec, m.cfg.RetrieveApartments)
	if err != nil {
		return nil, fmt.Errorf("apartment retrieval failed: %w", err)
	}
	if len(hits) == 0 {
		return &model.Recommendation{
			Outcome: model.OutcomeNoCandidates,
			Summary: "No apartments found in the database.",
			Parsed:  parsed,
			Took:    time.Since(start).Milliseconds(),
		}, nil
	}

	// 3. Summarize descriptions to keep the scoring prompt small
	var descriptions []string
	if m.cfg.SummarizeDescriptions {
		if err := emit(callback, "summarizing", map[string]any{"count": len(hits)}); err != nil {
			return nil, err
		}
		descriptions = make([]string, len(hits))
		for i, hit := range hits {
			descriptions[i] = m.summarizer.Summarize(ctx, hit.Document)
		}
	}

	// 4-5. Format context and score
	if err := emit(callback, "scoring", map[string]any{"candidates": len(hits)}); err != nil {
		return nil, err
	}
	prompt := m.apartmentScorePrompt(parsed, FormatApartmentContext(hits, descriptions))

	var raw string
	if callback != nil {
		raw, err = m.client.CompleteStream(ctx, prompt, func(chunk *StreamChunk) error {
			if chunk.ThinkingContent != "" {
				return callback("thinking", map[string]any{"content": chunk.ThinkingContent})
			}
			if chunk.Content != "" {
				return callback("content", map[string]any{"content": chunk.Content})
			}
			return nil
		})
	} else {
		raw, err = m.client.CompleteJSON(ctx, prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("apartment scoring failed: %w", err)
	}

	var sheet model.ApartmentScoreSheet
	if err := utils.ParseAIJSON(raw, &sheet); err != nil {
		return nil, &ScoreParseError{Stage: "apartment", Raw: raw, Err: err}
	}
	if len(sheet.Apartments) == 0 {
		return nil, &ScoreParseError{Stage: "apartment", Raw: raw, Err: errors.New("no apartment scores returned")}
	}

	// 6. Rank and truncate. Stable sort keeps the LLM-returned order on ties.
	sort.SliceStable(sheet.Apartments, func(i, j int) bool {
		return sheet.Apartments[i].TotalScore > sheet.Apartments[j].TotalScore
	})
	top := sheet.Apartments
	if topK < len(top) {
		top = top[:topK]
	}

	// 7. Render
	rec := &model.Recommendation{
		Outcome:    model.OutcomeRanked,
		Summary:    renderApartments(top, hits),
		Apartments: top,
		Parsed:     parsed,
		Took:       time.Since(start).Milliseconds(),
	}
	if err := emit(callback, "results", rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RecommendRoommates runs the roommate flow: retrieve profile-similar
// candidates, pre-filter definite mismatches, have the LLM score the rest,
// then rank and render the top_k. The raw profile text is used directly; no
// disambiguation step.
func (m *Matcher) RecommendRoommates(ctx context.Context, profile string, topK int) (*model.Recommendation, error) {
	start := time.Now()
	if strings.TrimSpace(profile) == "" {
		return nil, ErrEmptyQuery
	}
	topK = m.clampTopK(topK)

	// 2. Retrieve
	vec, err := m.embedder.EmbedQuery(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("profile embedding failed: %w", err)
	}
	hits, err := m.store.Query(ctx, m.cfg.RoommatesCollection, vec, m.cfg.RetrieveRoommates)
	if err != nil {
		return nil, fmt.Errorf("roommate retrieval failed: %w", err)
	}
	if len(hits) == 0 {
		return &model.Recommendation{
			Outcome: model.OutcomeNoCandidates,
			Summary: "No roommate candidates found in the database.",
			Took:    time.Since(start).Milliseconds(),
		}, nil
	}

	// 3. Deterministic pre-filter
	kept := m.filter.Filter(profile, hits)
	if len(kept) == 0 {
		return &model.Recommendation{
			Outcome: model.OutcomeNoCompatible,
			Summary: "No compatible roommate candidates after basic filtering.",
			Took:    time.Since(start).Milliseconds(),
		}, nil
	}

	// 4-5. Format context and score
	raw, err := m.client.Complete(ctx, m.roommateScorePrompt(profile, FormatRoommateContext(kept)))
	if err != nil {
		return nil, fmt.Errorf("roommate scoring failed: %w", err)
	}

	scores := parseRoommateScores(raw)
	if len(scores) == 0 {
		return nil, &ScoreParseError{Stage: "roommate", Raw: raw, Err: errors.New("no parseable score lines")}
	}

	// 6. Rank and truncate
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if topK < len(scores) {
		scores = scores[:topK]
	}

	// 7. Render
	return &model.Recommendation{
		Outcome:   model.OutcomeRanked,
		Summary:   renderRoommates(scores),
		Roommates: scores,
		Took:      time.Since(start).Milliseconds(),
	}, nil
}

func (m *Matcher) clampTopK(topK int) int {
	if topK <= 0 {
		topK = m.cfg.TopK
	}
	if m.cfg.MaxTopK > 0 && topK > m.cfg.MaxTopK {
		topK = m.cfg.MaxTopK
	}
	return topK
}

// apartmentScorePrompt builds the rubric prompt. The weights are a fixed
// contract: the LLM returns total_score directly and nothing recomputes the
// arithmetic locally.
func (m *Matcher) apartmentScorePrompt(parsed *model.ParsedQuery, context string) string {
	var constraints []string

	if eb := parsed.EffectiveBudget(); eb != nil {
		constraints = append(constraints, fmt.Sprintf("- Max total budget: EUR %.0f", *eb))
	} else {
		constraints = append(constraints, "- Max total budget: none specified")
	}
	if f := parsed.StructuredFilters; f != nil {
		if f.Neighborhood != nil && *f.Neighborhood != "" {
			constraints = append(constraints, "- Preferred neighborhoods: "+strings.ToLower(*f.Neighborhood))
		}
		if f.District != nil && *f.District != "" {
			constraints = append(constraints, "- Preferred district: "+strings.ToLower(*f.District))
		}
		if f.MinRooms != nil {
			constraints = append(constraints, fmt.Sprintf("- Minimum rooms: %d", *f.MinRooms))
		}
		if f.MinBathrooms != nil {
			constraints = append(constraints, fmt.Sprintf("- Minimum bathrooms: %d", *f.MinBathrooms))
		}
		if f.MinSize != nil {
			constraints = append(constraints, fmt.Sprintf("- Minimum size: %.0f m2", *f.MinSize))
		}
		if f.MustBeExterior != nil && *f.MustBeExterior {
			constraints = append(constraints, "- Must be exterior")
		}
		if f.MustHaveLift != nil && *f.MustHaveLift {
			constraints = append(constraints, "- Must have lift")
		}
	}

	soft := "none"
	if len(parsed.SoftPreferences) > 0 {
		soft = strings.Join(parsed.SoftPreferences, ", ")
	}

	return fmt.Sprintf(`You are evaluating a list of apartments for the user.

USER REQUIREMENTS:
Structured:
%s

Unstructured preferences (soft filters, never treat as hard constraints):
- %s

INSTRUCTIONS:
You MUST:
- Only use the apartments listed below.
- Score each apartment strictly from its provided metadata and description.
- NEVER assume missing features.
- NEVER add features that are not explicitly written.
- If an attribute is unknown, treat it as "not specified" and penalize missing information instead of inventing.
- Output only valid JSON following the required schema.

SCORING RULES (0-10):

NEIGHBORHOOD MATCHING:
- The user may specify one or multiple neighborhoods/districts.
- +2 if the apartment's neighborhood matches ANY of them (case-insensitive).
- +1 if the district matches but the neighborhood does not explicitly match.
- 0 if unrelated.

OTHER RULES:
- +2 fits budget
- +2 exterior / good light / views
- +2 lift if requested
- +2 if the description contains any soft preferences ("quiet", "nice views", etc.)

OUTPUT FORMAT (strict JSON):
Return an object with a key "apartments" containing an array of objects.
Each object must have:
- "property_code" (string, exactly as shown in the context)
- "total_score" (number)
- "reasoning" (short explanation, 1-2 sentences)

APARTMENTS TO EVALUATE:
%s`, strings.Join(constraints, "\n"), soft, context)
}

// roommateScorePrompt encodes the fixed compatibility weights. Whether the
// model honors them exactly is a known fidelity limitation of delegating the
// arithmetic; there is no local recomputation fallback.
func (m *Matcher) roommateScorePrompt(profile, context string) string {
	return fmt.Sprintf(`You are matching roommates.

User profile:
"""%s"""

Below are candidate students with their traits and lifestyles.

Score each candidate from 0 to 10 as a weighted compatibility average using EXACTLY these weights:
- cleanliness & tidiness: 15%%
- noise tolerance: 15%%
- sleep-schedule compatibility: 15%%
- boundary clarity: 15%%
- pet-friendliness: 10%%
- social-habit fit: 10%%
- study-habit fit: 10%%
- daily routine alignment: 5%%
- conflict-avoidance ability: 5%%

If the user profile does not specify a constraint (e.g., doesn't mention pets),
ignore that dimension (do not penalize or reward).
Only use information from the candidate descriptions. If a detail is unknown,
treat it as "not specified" and never invent it.

OUTPUT FORMAT (PLAIN TEXT, NO JSON):

Write ONE line per candidate exactly as follows:
NAME | SCORE | REASON

Where:
- NAME is the candidate's name exactly as shown
- SCORE is a number from 0 to 10
- REASON is a short justification (1 sentence)

Example:
Alex | 9 | Very compatible lifestyle, social schedule aligns.
Maria | 5.5 | Some compatibility but more structured than user.

Do NOT add headers.
Do NOT wrap in JSON.
Do NOT add extra text.

CANDIDATES:
%s`, profile, context)
}

// parseRoommateScores extracts "NAME | SCORE | REASON" lines. Lines that do
// not fit the shape are skipped; the caller decides whether zero parsed lines
// is a parse failure.
func parseRoommateScores(text string) []model.RoommateScore {
	var results []model.RoommateScore
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "|") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) < 3 {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		results = append(results, model.RoommateScore{
			Name:      strings.TrimSpace(parts[0]),
			Score:     score,
			Reasoning: strings.TrimSpace(parts[2]),
		})
	}
	return results
}

// renderApartments produces the human-readable summary, resolving each scored
// property code back to its retrieved metadata.
func renderApartments(top []model.ApartmentScore, hits []model.Retrieved) string {
	metaByCode := make(map[string]model.Retrieved, len(hits))
	for _, hit := range hits {
		code := utils.MetaStringAny(hit.Metadata, "propertyCode", "property_code")
		if code == "" {
			code = hit.ID
		}
		metaByCode[code] = hit
	}

	lines := make([]string, 0, len(top))
	for _, item := range top {
		hit, ok := metaByCode[item.PropertyCode]
		if !ok {
			// The model referenced a code outside the context; keep the score
			// visible but flag the miss instead of inventing metadata
			log.Printf("Warning: scored property %q not among retrieved candidates", item.PropertyCode)
			lines = append(lines, fmt.Sprintf(
				"- PROPERTY_CODE: %s (not among retrieved candidates)\n  Score: %.2f | Reason: %s",
				item.PropertyCode, item.TotalScore, item.Reasoning))
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"- PROPERTY_CODE: %s | District: %s | Neighborhood: %s | Price: EUR %s | URL: %s\n"+
				"  Score: %.2f | Reason: %s",
			item.PropertyCode,
			utils.MetaString(hit.Metadata, "district"),
			utils.MetaStringAny(hit.Metadata, "neighborhood", "Neighborhood"),
			utils.MetaStringOr(hit.Metadata, "price", "N/A"),
			utils.MetaStringOr(hit.Metadata, "url", "None"),
			item.TotalScore,
			item.Reasoning,
		))
	}
	return "Top apartment matches:\n" + strings.Join(lines, "\n\n")
}

func renderRoommates(top []model.RoommateScore) string {
	lines := make([]string, 0, len(top))
	for _, s := range top {
		lines = append(lines, fmt.Sprintf("- Name: %s | Score: %.2f\n  Reason: %s",
			s.Name, s.Score, s.Reasoning))
	}
	return "Top roommate matches:\n" + strings.Join(lines, "\n\n")
}

func emit(callback StageCallback, event string, data any) error {
	if callback == nil {
		return nil
	}
	return callback(event, data)
}
