package service

import (
	"testing"

	"roommatch/internal/config"
	"roommatch/internal/model"
)

func testFilterConfig() config.FilterConfig {
	return config.FilterConfig{
		RigidRoutinePatterns: []string{
			`\bhighly conscientious\b`,
			`\bstrict routine\b`,
			`\bregimented\b`,
		},
		PetAllergyTerms:     []string{"allergic", "no dogs", "no pets"},
		NoiseSensitiveTerms: []string{"noise sensitive", "noise-sensitive"},
		EarlySleepTokens:    []string{"9:", "9pm", "10:", "10pm"},
		PetDemandTerms:      []string{"dog", "dogs", "cat", "cats", "pet", "pets"},
	}
}

func candidate(name string, meta map[string]interface{}) model.Retrieved {
	m := model.JSONMap{}
	for k, v := range meta {
		m[k] = v
	}
	if name != "" {
		m["name"] = name
	}
	return model.Retrieved{
		CandidateRecord: model.CandidateRecord{
			ID:       name,
			Document: "profile text for " + name,
			Metadata: m,
		},
	}
}

func keptNames(kept []FilteredCandidate) []string {
	names := make([]string, len(kept))
	for i, k := range kept {
		names[i] = k.Name
	}
	return names
}

func TestFilterPetAllergy(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	candidates := []model.Retrieved{
		candidate("Alex", map[string]interface{}{"pet_friendliness": "Allergic to dogs"}),
		candidate("Maria", map[string]interface{}{"pet_friendliness": "Loves dogs"}),
	}

	// Pet rule fires only when the profile demands pet tolerance
	kept := f.Filter("I have a dog and need early space", candidates)
	if len(kept) != 1 || kept[0].Name != "Maria" {
		t.Errorf("Filter() with pet demand kept %v, want [Maria]", keptNames(kept))
	}

	kept = f.Filter("I am a quiet student", candidates)
	if len(kept) != 2 {
		t.Errorf("Filter() without pet demand kept %v, want both", keptNames(kept))
	}
}

func TestFilterPetDemandWordBoundaries(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	candidates := []model.Retrieved{
		candidate("Alex", map[string]interface{}{"pet_friendliness": "allergic"}),
	}

	// "category" and "dogma" must not trigger the pet rule
	kept := f.Filter("I study category theory and dogmatics", candidates)
	if len(kept) != 1 {
		t.Errorf("Filter() kept %v, substring should not count as a pet demand", keptNames(kept))
	}

	kept = f.Filter("Moving in with my cat.", candidates)
	if len(kept) != 0 {
		t.Errorf("Filter() kept %v, punctuation-adjacent pet word should count", keptNames(kept))
	}
}

func TestFilterRigidRoutine(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	candidates := []model.Retrieved{
		candidate("Alex", map[string]interface{}{"lifestyle_summary": "Highly conscientious, keeps a strict routine"}),
		candidate("Maria", map[string]interface{}{"lifestyle_summary": "Relaxed and flexible"}),
	}

	kept := f.Filter("easy going student", candidates)
	if len(kept) != 1 || kept[0].Name != "Maria" {
		t.Errorf("Filter() kept %v, want [Maria]", keptNames(kept))
	}
}

func TestFilterNoiseAndEarlySleep(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	tests := []struct {
		name string
		meta map[string]interface{}
		kept bool
	}{
		{
			name: "Noise sensitive and early sleeper",
			meta: map[string]interface{}{
				"noise_tolerance": "noise sensitive",
				"sleep_schedule":  "in bed by 10pm",
			},
			kept: false,
		},
		{
			name: "Noise sensitive but late sleeper",
			meta: map[string]interface{}{
				"noise_tolerance": "noise sensitive",
				"sleep_schedule":  "sleeps after midnight",
			},
			kept: true,
		},
		{
			name: "Early sleeper but noise tolerant",
			meta: map[string]interface{}{
				"noise_tolerance": "fine with noise",
				"sleep_schedule":  "asleep by 9pm",
			},
			kept: true,
		},
		{
			name: "Noise sensitivity in lifestyle summary",
			meta: map[string]interface{}{
				"lifestyle_summary": "quiet, noise-sensitive person",
				"sleep_schedule":    "lights out at 9:30",
			},
			kept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := f.Filter("any profile", []model.Retrieved{candidate("X", tt.meta)})
			if (len(kept) == 1) != tt.kept {
				t.Errorf("Filter() kept=%v, want kept=%v", len(kept) == 1, tt.kept)
			}
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	candidates := []model.Retrieved{
		candidate("Alex", map[string]interface{}{"lifestyle_summary": "regimented schedule"}),
		candidate("Maria", map[string]interface{}{"lifestyle_summary": "flexible"}),
		candidate("Jonas", map[string]interface{}{"sleep_schedule": "by 10pm", "noise_tolerance": "noise sensitive"}),
		candidate("Lena", map[string]interface{}{}),
	}

	profile := "student with a dog"
	first := f.Filter(profile, candidates)

	survivors := make([]model.Retrieved, len(first))
	for i, k := range first {
		survivors[i] = k.Retrieved
	}
	second := f.Filter(profile, survivors)

	if len(first) != len(second) {
		t.Fatalf("second pass kept %d, first pass kept %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("candidate %d: first pass %q, second pass %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestFilterDisplayNameFallbacks(t *testing.T) {
	f := NewRoommateFilter(testFilterConfig())

	candidates := []model.Retrieved{
		candidate("", map[string]interface{}{"chunk_index": float64(4)}),
		candidate("", map[string]interface{}{}),
		candidate("Marta", map[string]interface{}{}),
	}

	kept := f.Filter("any", candidates)
	if len(kept) != 3 {
		t.Fatalf("Filter() kept %d, want 3", len(kept))
	}
	want := []string{"Candidate_4", "Candidate_1", "Marta"}
	for i, w := range want {
		if kept[i].Name != w {
			t.Errorf("name %d = %q, want %q", i, kept[i].Name, w)
		}
	}
}
