package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"roommatch/internal/model"
	"roommatch/internal/utils"
)

// Disambiguator decomposes one raw free-text request into a cleaned apartment
// query, a cleaned user profile, and optional structured constraints. It never
// hard-fails: when the LLM call or the JSON parse misses, the raw text is used
// as both sub-queries and the pipeline continues.
type Disambiguator struct {
	client AIClient
}

// NewDisambiguator creates a disambiguator on the given client
func NewDisambiguator(client AIClient) *Disambiguator {
	return &Disambiguator{client: client}
}

const parsePromptTemplate = `You are given a user request about finding an apartment and roommates.

Extract:
1. apartment_query: short cleaned version of their apartment request.

2. user_profile: short cleaned description of the user's own personality,
   habits and roommate preferences (not the apartment wishes).

3. structured_filters:
   - Only include fields that appear explicitly in the user request.
   - Valid fields: district, neighborhood, min_rooms, min_bathrooms, min_size, must_be_exterior, must_have_lift.
   - If the user names multiple neighborhoods or districts (e.g., Salamanca, Retiro, Chamberi), include ALL inside "neighborhood" as a single comma-separated string.

4. unstructured_preferences:
   - Soft wishes like "quiet", "sunset views", "nice views", "quiet street".
   - Do NOT place neighborhoods here.

5. roommates: number of roommates (not counting the user).
6. budget: monthly budget per person.

If the user does NOT specify something, omit the field.
Do NOT invent constraints.
Respond ONLY with valid JSON.

User message:
"""%s"""`

// Parse decomposes a raw query. The returned ParsedQuery always has non-empty
// ApartmentQuery and UserProfile.
func (d *Disambiguator) Parse(ctx context.Context, raw string) *model.ParsedQuery {
	raw = strings.TrimSpace(raw)
	fallback := &model.ParsedQuery{ApartmentQuery: raw, UserProfile: raw}

	if d.client == nil || !d.client.IsEnabled() {
		log.Printf("LLM is not enabled, using raw query for both retrieval paths")
		return fallback
	}

	content, err := d.client.CompleteJSON(ctx, fmt.Sprintf(parsePromptTemplate, raw))
	if err != nil {
		log.Printf("Query disambiguation failed: %v, falling back to raw query", err)
		return fallback
	}

	var parsed model.ParsedQuery
	if err := utils.ParseAIJSON(content, &parsed); err != nil {
		log.Printf("Query disambiguation returned unparseable JSON: %v, falling back to raw query", err)
		return fallback
	}

	if strings.TrimSpace(parsed.ApartmentQuery) == "" {
		parsed.ApartmentQuery = raw
	}
	if strings.TrimSpace(parsed.UserProfile) == "" {
		parsed.UserProfile = raw
	}
	return &parsed
}
