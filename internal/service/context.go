package service

import (
	"fmt"
	"strings"

	"roommatch/internal/model"
	"roommatch/internal/utils"
)

// Context formatters render retrieved records into the text blocks the
// scoring prompts consume. They are pure functions: only fields relevant to
// scoring are exposed, plus the stable identifier needed to look the record
// up again after the LLM answers.

// FormatApartmentContext renders retrieved apartments, one block per listing.
// descriptions must be parallel to hits (usually the summarized documents);
// pass nil to use each hit's raw document.
func FormatApartmentContext(hits []model.Retrieved, descriptions []string) string {
	if len(hits) == 0 {
		return "No apartments retrieved."
	}

	blocks := make([]string, 0, len(hits))
	for i, hit := range hits {
		meta := hit.Metadata
		code := utils.MetaStringAny(meta, "propertyCode", "property_code")
		if code == "" {
			code = hit.ID
		}

		header := fmt.Sprintf(
			"PROPERTY_CODE: %s | %s | District: %s | Neighborhood: %s | "+
				"Rooms: %s | Bathrooms: %s | Size: %s m2 | "+
				"Exterior: %s | Lift: %s | Price: EUR %s | Type: %s | URL: %s",
			code,
			utils.ExtractTitle(meta, code),
			utils.MetaString(meta, "district"),
			utils.MetaStringAny(meta, "neighborhood", "Neighborhood"),
			utils.MetaString(meta, "rooms"),
			utils.MetaString(meta, "bathrooms"),
			utils.MetaString(meta, "size"),
			utils.MetaString(meta, "exterior"),
			utils.MetaString(meta, "hasLift"),
			utils.MetaStringAny(meta, "price", "Price"),
			utils.MetaStringAny(meta, "propertyType", "type"),
			utils.MetaString(meta, "url"),
		)

		desc := hit.Document
		if descriptions != nil && i < len(descriptions) {
			desc = descriptions[i]
		}
		blocks = append(blocks, fmt.Sprintf("- %s\n  Description: %s", header, desc))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatRoommateContext renders filtered roommate candidates. Unknown fields
// read "not specified" so the scoring model reports them instead of guessing.
func FormatRoommateContext(candidates []FilteredCandidate) string {
	if len(candidates) == 0 {
		return "No candidates after filtering."
	}

	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		meta := c.Metadata
		blocks = append(blocks, fmt.Sprintf(
			"- Name: %s\n"+
				"  Personality: %s\n"+
				"  Lifestyle: %s\n"+
				"  Sleep schedule: %s\n"+
				"  Noise tolerance: %s\n"+
				"  Pet friendliness: %s\n"+
				"  Cleanliness: %s\n"+
				"  Study habits: %s\n"+
				"  Raw text: %s",
			c.Name,
			utils.MetaStringOr(meta, "personality", "not specified"),
			utils.MetaStringOr(meta, "lifestyle_summary", "not specified"),
			utils.MetaStringOr(meta, "sleep_schedule", "not specified"),
			utils.MetaStringOr(meta, "noise_tolerance", "not specified"),
			metaPetOr(meta, "not specified"),
			utils.MetaStringOr(meta, "cleanliness", "not specified"),
			utils.MetaStringOr(meta, "study_habits", "not specified"),
			utils.TruncateString(c.Document, 200),
		))
	}
	return strings.Join(blocks, "\n\n")
}

func metaPetOr(meta model.JSONMap, fallback string) string {
	if s := utils.MetaStringAny(meta, "pet_friendliness", "dog_friendliness"); s != "" {
		return s
	}
	return fallback
}
