package model

// Outcome distinguishes a ranked result from the two empty-result conditions.
// Empty results are not errors; callers must be able to tell "nothing
// retrieved" and "everything filtered out" apart from a real ranking.
type Outcome string

const (
	OutcomeRanked       Outcome = "ranked"
	OutcomeNoCandidates Outcome = "no_candidates"
	OutcomeNoCompatible Outcome = "no_compatible_candidates"
)

// ApartmentScore is one LLM-scored apartment. TotalScore comes straight from
// the model per the scoring rubric; it is not recomputed locally.
type ApartmentScore struct {
	PropertyCode string  `json:"property_code"`
	TotalScore   float64 `json:"total_score"`
	Reasoning    string  `json:"reasoning"`
}

// ApartmentScoreSheet is the JSON document the scoring prompt demands
type ApartmentScoreSheet struct {
	Apartments []ApartmentScore `json:"apartments"`
}

// RoommateScore is one scored roommate candidate, parsed from the
// "NAME | SCORE | REASON" lines the scoring prompt demands.
type RoommateScore struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Recommendation is the result of one orchestrated recommend call
type Recommendation struct {
	Outcome    Outcome          `json:"outcome"`
	Summary    string           `json:"summary"`
	Apartments []ApartmentScore `json:"apartments,omitempty"`
	Roommates  []RoommateScore  `json:"roommates,omitempty"`
	Parsed     *ParsedQuery     `json:"parsed,omitempty"`
	Took       int64            `json:"took_ms"`
}

// UpsertRequest is the ingestion payload: pre-extracted text blocks plus
// metadata. Embeddings are computed server-side so the collection invariant
// (one embedding model per collection) cannot be violated by callers.
type UpsertRequest struct {
	Records []UpsertRecord `json:"records" binding:"required"`
}

// UpsertRecord is a single document to index
type UpsertRecord struct {
	ID       string  `json:"id" binding:"required"`
	Document string  `json:"document" binding:"required"`
	Metadata JSONMap `json:"metadata,omitempty"`
}

// UpsertResponse reports best-effort ingestion results
type UpsertResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
