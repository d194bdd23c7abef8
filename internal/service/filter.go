package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"roommatch/internal/config"
	"roommatch/internal/model"
	"roommatch/internal/utils"
)

// RoommateFilter excludes clearly incompatible roommate candidates before any
// LLM scoring spend. It is a coarse, explainable keyword filter, intentionally
// conservative: the lists are matched literally, not semantically, so it can
// both over-exclude (a candidate who "used to be allergic") and under-exclude
// (an allergy phrased in words outside the list). That tradeoff is accepted;
// the lists live in configuration so deployments can tune them.
type RoommateFilter struct {
	rigidPatterns  []*regexp.Regexp
	petAllergy     []string
	noiseSensitive []string
	earlyTokens    []string
	petDemand      []string
}

// FilteredCandidate is a surviving candidate annotated with a display name
type FilteredCandidate struct {
	Name string
	model.Retrieved
}

// NewRoommateFilter compiles the configured keyword lists. Invalid regex
// patterns are skipped with a warning rather than failing startup.
func NewRoommateFilter(cfg config.FilterConfig) *RoommateFilter {
	f := &RoommateFilter{
		petAllergy:     lowerAll(cfg.PetAllergyTerms),
		noiseSensitive: lowerAll(cfg.NoiseSensitiveTerms),
		earlyTokens:    lowerAll(cfg.EarlySleepTokens),
		petDemand:      lowerAll(cfg.PetDemandTerms),
	}
	for _, p := range cfg.RigidRoutinePatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			log.Printf("Warning: invalid rigid-routine pattern %q: %v", p, err)
			continue
		}
		f.rigidPatterns = append(f.rigidPatterns, re)
	}
	return f
}

// Filter applies the exclusion rules to retrieved roommate candidates. Rules
// are evaluated independently; any match excludes. The pet rule only fires
// when the user's profile demands pet tolerance. Filtering is idempotent:
// re-running it on its own output changes nothing.
func (f *RoommateFilter) Filter(profile string, candidates []model.Retrieved) []FilteredCandidate {
	wantsPets := f.demandsPetTolerance(profile)

	kept := make([]FilteredCandidate, 0, len(candidates))
	for i, cand := range candidates {
		pet := strings.ToLower(utils.MetaStringAny(cand.Metadata, "pet_friendliness", "dog_friendliness"))
		lifestyle := strings.ToLower(utils.MetaString(cand.Metadata, "lifestyle_summary"))
		sleep := strings.ToLower(utils.MetaString(cand.Metadata, "sleep_schedule"))
		noise := strings.ToLower(utils.MetaString(cand.Metadata, "noise_tolerance"))

		if wantsPets && containsAny(pet, f.petAllergy) {
			continue
		}
		if f.matchesRigidRoutine(lifestyle) {
			continue
		}
		if (containsAny(lifestyle, f.noiseSensitive) || containsAny(noise, f.noiseSensitive)) &&
			containsAny(sleep, f.earlyTokens) {
			continue
		}

		kept = append(kept, FilteredCandidate{
			Name:      displayName(cand, i),
			Retrieved: cand,
		})
	}
	return kept
}

// demandsPetTolerance checks whether the user's stated requirements mention
// living with a pet. Same keyword coarseness as the rest of the filter.
func (f *RoommateFilter) demandsPetTolerance(profile string) bool {
	words := strings.Fields(strings.ToLower(profile))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()\"'")
		for _, term := range f.petDemand {
			if w == term {
				return true
			}
		}
	}
	return false
}

func (f *RoommateFilter) matchesRigidRoutine(lifestyle string) bool {
	if lifestyle == "" {
		return false
	}
	for _, re := range f.rigidPatterns {
		if re.MatchString(lifestyle) {
			return true
		}
	}
	return false
}

// displayName prefers name metadata, then the source chunk index, then the
// candidate's position in the retrieval order.
func displayName(cand model.Retrieved, index int) string {
	name := utils.MetaString(cand.Metadata, "name")
	if name != "" && !strings.EqualFold(name, "not specified") {
		return name
	}
	if chunk := utils.MetaString(cand.Metadata, "chunk_index"); chunk != "" {
		return fmt.Sprintf("Candidate_%s", chunk)
	}
	return fmt.Sprintf("Candidate_%d", index)
}

func containsAny(haystack string, needles []string) bool {
	if haystack == "" {
		return false
	}
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return out
}
