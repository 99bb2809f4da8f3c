package detection

import (
	"sort"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

// Consolidate removes duplicate candidates and orders the rest.
//
// Candidates are visited in input order. A candidate whose IoU with an already
// kept box exceeds t.DedupIoU is a duplicate of the first such box; with
// t.PreferSmaller the smaller-area one of the pair is kept (the replacement
// moves to the end of the kept list), otherwise the earlier one stays. The
// kept list is then stably sorted by ascending area, so the tightest box comes
// first.
//
// An empty input yields an empty output; callers substitute Fallback.
func Consolidate(candidates []Candidate, t config.DetectionTuning) []Candidate {
	var unique []Candidate

	for _, c := range candidates {
		duplicate := false
		for i, u := range unique {
			if c.Bounds.IoU(u.Bounds) <= t.DedupIoU {
				continue
			}
			duplicate = true
			if t.PreferSmaller && c.Area < u.Area {
				unique = append(unique[:i], unique[i+1:]...)
				unique = append(unique, c)
			}
			break
		}
		if !duplicate {
			unique = append(unique, c)
		}
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Area < unique[j].Area
	})
	return unique
}

// ConsolidateOrFallback is Consolidate with the whole-image fallback applied
// when nothing survives.
func ConsolidateOrFallback(candidates []Candidate, width, height int, t config.DetectionTuning) []Candidate {
	out := Consolidate(candidates, t)
	if len(out) == 0 {
		out = []Candidate{Fallback(width, height, t)}
	}
	return out
}
