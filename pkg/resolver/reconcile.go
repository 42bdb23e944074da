package resolver

import (
	"github.com/caravel-cli/caravel/pkg/maven"
)

// Reconcile collapses the walked graph to one artifact per
// "groupId:artifactId". Starting from the roots, it collects every
// reachable artifact in BFS order and keeps the one whose version is
// maximal under the Maven total order; version ties go to the
// first-seen occurrence.
//
// Artifacts that never resolved (no bound repository or no concrete
// version) are dropped from the output: the returned list is the
// best-effort closure, and every entry in it is downloadable.
func Reconcile(roots []*maven.Artifact) []*maven.Artifact {
	winners := make(map[string]*maven.Artifact)
	var order []string

	seen := make(map[*maven.Artifact]struct{})
	queue := make([]*maven.Artifact, 0, len(roots))
	for _, r := range roots {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		queue = append(queue, r)
	}

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]

		if w, ok := winners[a.GA()]; !ok {
			winners[a.GA()] = a
			order = append(order, a.GA())
		} else if maven.IsHigherThan(a.Version, w.Version) {
			winners[a.GA()] = a
		}

		for _, child := range a.Dependencies {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			queue = append(queue, child)
		}
	}

	out := make([]*maven.Artifact, 0, len(order))
	for _, ga := range order {
		w := winners[ga]
		if w.Repository == nil || w.Version == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}
