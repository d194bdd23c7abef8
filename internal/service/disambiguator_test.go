package service

import (
	"context"
	"errors"
	"testing"
)

func TestParseFallsBackWhenDisabled(t *testing.T) {
	d := NewDisambiguator(&stubAI{enabled: false})

	parsed := d.Parse(context.Background(), "  quiet flat in chamberi  ")
	if parsed.ApartmentQuery != "quiet flat in chamberi" {
		t.Errorf("ApartmentQuery = %q, want raw query", parsed.ApartmentQuery)
	}
	if parsed.UserProfile != "quiet flat in chamberi" {
		t.Errorf("UserProfile = %q, want raw query", parsed.UserProfile)
	}
	if parsed.StructuredFilters != nil {
		t.Errorf("StructuredFilters = %v, want nil", parsed.StructuredFilters)
	}
}

func TestParseFallsBackOnLLMError(t *testing.T) {
	d := NewDisambiguator(&stubAI{
		enabled:      true,
		completeJSON: func(string) (string, error) { return "", errors.New("upstream down") },
	})

	parsed := d.Parse(context.Background(), "flat near campus")
	if parsed.ApartmentQuery != "flat near campus" || parsed.UserProfile != "flat near campus" {
		t.Errorf("Parse() did not fall back to raw query: %+v", parsed)
	}
}

func TestParseFallsBackOnBadJSON(t *testing.T) {
	d := NewDisambiguator(&stubAI{
		enabled:      true,
		completeJSON: func(string) (string, error) { return "sorry, I cannot do that", nil },
	})

	parsed := d.Parse(context.Background(), "flat near campus")
	if parsed.ApartmentQuery != "flat near campus" {
		t.Errorf("Parse() did not fall back on unparseable output: %+v", parsed)
	}
}

func TestParseExtractsStructuredFields(t *testing.T) {
	d := NewDisambiguator(&stubAI{
		enabled: true,
		completeJSON: func(string) (string, error) {
			return `{
				"apartment_query": "3-room exterior flat in chamberi",
				"user_profile": "tidy early riser",
				"structured_filters": {"district": "chamberi", "min_rooms": 3, "must_be_exterior": true},
				"unstructured_preferences": ["quiet", "nice views"],
				"roommates": 2,
				"budget": 600
			}`, nil
		},
	})

	parsed := d.Parse(context.Background(), "whatever the user wrote")
	if parsed.ApartmentQuery != "3-room exterior flat in chamberi" {
		t.Errorf("ApartmentQuery = %q", parsed.ApartmentQuery)
	}
	if parsed.StructuredFilters == nil || parsed.StructuredFilters.District == nil || *parsed.StructuredFilters.District != "chamberi" {
		t.Errorf("StructuredFilters = %+v, want district chamberi", parsed.StructuredFilters)
	}
	if parsed.StructuredFilters.MinRooms == nil || *parsed.StructuredFilters.MinRooms != 3 {
		t.Errorf("MinRooms = %v, want 3", parsed.StructuredFilters.MinRooms)
	}
	if len(parsed.SoftPreferences) != 2 {
		t.Errorf("SoftPreferences = %v, want 2 entries", parsed.SoftPreferences)
	}
	if parsed.Roommates == nil || *parsed.Roommates != 2 {
		t.Errorf("Roommates = %v, want 2", parsed.Roommates)
	}
	eb := parsed.EffectiveBudget()
	if eb == nil || *eb != 1800 {
		t.Errorf("EffectiveBudget() = %v, want 1800", eb)
	}
}

func TestParseBackfillsEmptyFields(t *testing.T) {
	d := NewDisambiguator(&stubAI{
		enabled: true,
		completeJSON: func(string) (string, error) {
			return `{"apartment_query": "", "user_profile": "social night owl"}`, nil
		},
	})

	parsed := d.Parse(context.Background(), "raw request")
	if parsed.ApartmentQuery != "raw request" {
		t.Errorf("ApartmentQuery = %q, want backfilled raw query", parsed.ApartmentQuery)
	}
	if parsed.UserProfile != "social night owl" {
		t.Errorf("UserProfile = %q, want LLM value kept", parsed.UserProfile)
	}
}
