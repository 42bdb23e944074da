// Package resolver implements the transitive dependency resolution engine.
//
// The entry point is [Resolver]: it detects the project manifest (pom.xml
// or build.gradle), extracts direct dependencies, walks the transitive
// graph across the configured remote repositories, and collapses the
// result to one artifact per groupId:artifactId.
//
// # Pipeline
//
//	Resolve(projectDir)
//	  manifest adapter -> direct artifacts
//	  Walker           -> level-synchronous BFS, bounded fan-out
//	    Fetcher        -> host probing, effective POM, direct deps
//	    Cache          -> single-flight memoization per groupId:artifactId
//	  Reconcile        -> newest-wins per GA, first-seen tie break
//
// # Conflict policy
//
// Version conflicts resolve newest-wins globally, which deviates from
// Maven's own nearest-wins rule: if the graph contains several versions
// of one groupId:artifactId, the highest version under the Maven total
// order is returned regardless of its depth.
//
// No failure inside the walk aborts it; unresolvable coordinates degrade
// to "no dependencies", are cached as such, and the returned list is the
// best-effort reconciled closure. Only a malformed root manifest or
// cancellation of the context makes Resolve return an error.
package resolver
