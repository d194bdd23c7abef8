package model

// RecommendRequest is the body for both recommendation endpoints
type RecommendRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// StructuredFilters are the hard-ish constraints the disambiguator extracts
// from a free-text apartment request. All fields are optional; absent means
// "not specified", never zero.
type StructuredFilters struct {
	District       *string  `json:"district,omitempty"`
	Neighborhood   *string  `json:"neighborhood,omitempty"`
	MinRooms       *int     `json:"min_rooms,omitempty"`
	MinBathrooms   *int     `json:"min_bathrooms,omitempty"`
	MinSize        *float64 `json:"min_size,omitempty"`
	MustBeExterior *bool    `json:"must_be_exterior,omitempty"`
	MustHaveLift   *bool    `json:"must_have_lift,omitempty"`
}

// ParsedQuery is the LLM decomposition of one raw matching request. It exists
// only for the duration of a single recommendation call.
type ParsedQuery struct {
	ApartmentQuery    string             `json:"apartment_query"`
	UserProfile       string             `json:"user_profile"`
	StructuredFilters *StructuredFilters `json:"structured_filters,omitempty"`
	SoftPreferences   []string           `json:"unstructured_preferences,omitempty"`
	Roommates         *int               `json:"roommates,omitempty"`
	Budget            *float64           `json:"budget,omitempty"`
}

// EffectiveBudget returns the total budget for the whole flat:
// budget_per_person * (roommates + 1). When either part is missing the result
// is nil, meaning "no budget constraint", never zero.
func (p *ParsedQuery) EffectiveBudget() *float64 {
	if p == nil || p.Budget == nil || p.Roommates == nil || *p.Roommates <= 0 {
		return nil
	}
	total := *p.Budget * float64(*p.Roommates+1)
	return &total
}
