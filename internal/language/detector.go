//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package language

// Detector guesses the language of free text from stopword overlap.
type Detector struct {
	profiles []*Profile
	fallback string
}

// NewDetector creates a detector over the given profiles. Ambiguous text
// resolves to the fallback language; if fallback is empty the first
// profile is used.
func NewDetector(profiles []*Profile, fallback string) *Detector {
	if fallback == "" && len(profiles) > 0 {
		fallback = profiles[0].Name()
	}
	return &Detector{profiles: profiles, fallback: fallback}
}

// Scores returns the stopword overlap of text with every profile.
func (d *Detector) Scores(text string) map[string]int {
	tokens := make(map[string]struct{})
	for _, t := range LowerTokens(WordPunct(text)) {
		tokens[t] = struct{}{}
	}

	scores := make(map[string]int, len(d.profiles))
	for _, p := range d.profiles {
		scores[p.Name()] = p.StopwordOverlap(tokens)
	}
	return scores
}

// Detect returns the name of the most likely language. A language other
// than the fallback wins only if its overlap is strictly greater than the
// fallback's, so ties and stopword-free text resolve to the fallback.
func (d *Detector) Detect(text string) string {
	scores := d.Scores(text)

	best := d.fallback
	bestScore := scores[d.fallback]
	for _, p := range d.profiles {
		if s := scores[p.Name()]; s > bestScore {
			best = p.Name()
			bestScore = s
		}
	}
	return best
}
