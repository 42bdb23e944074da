package maven

import (
	"regexp"
	"strings"
)

// gradleScopes maps Gradle configuration names to their Maven scope
// treatment. Configurations mapping to false are dropped, mirroring the
// test/provided/optional filters of POM extraction.
var gradleScopes = map[string]bool{
	"implementation":     true,
	"api":                true,
	"runtimeOnly":        true,
	"compileOnly":        false, // provided
	"testImplementation": false,
}

var gradleDepRe = regexp.MustCompile(
	`^\s*(implementation|api|compileOnly|runtimeOnly|testImplementation)\s*\(?\s*["']([^"']+)["']`)

// ParseGradle extracts direct dependencies from a build.gradle or
// build.gradle.kts script. Only single-string declarations of the form
// "group:name:version[:classifier][@ext]" inside dependencies { } blocks
// are recognized; plugin blocks, variant notation, and version catalogs
// are ignored.
func ParseGradle(data []byte) []*Artifact {
	var out []*Artifact
	seen := make(map[string]struct{})

	for _, block := range gradleDependencyBlocks(string(data)) {
		for _, line := range strings.Split(block, "\n") {
			m := gradleDepRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if !gradleScopes[m[1]] {
				continue
			}
			a, err := ParseCoordinate(m[2])
			if err != nil || a.Version == "" {
				continue
			}
			if _, dup := seen[a.ID()]; dup {
				continue
			}
			seen[a.ID()] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// gradleDependencyBlocks returns the body of every dependencies { ... }
// block at any nesting depth (for example inside allprojects { }),
// tracking brace nesting to find where each block ends.
func gradleDependencyBlocks(script string) []string {
	var blocks []string
	rest := script

	for {
		idx := dependenciesKeyword(rest)
		if idx < 0 {
			return blocks
		}
		open := strings.Index(rest[idx:], "{")
		if open < 0 {
			return blocks
		}
		start := idx + open + 1

		depth := 1
		i := start
		for ; i < len(rest) && depth > 0; i++ {
			switch rest[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth != 0 {
			return blocks
		}
		blocks = append(blocks, rest[start:i-1])
		rest = rest[i:]
	}
}

// dependenciesKeyword finds the "dependencies" keyword at a word
// boundary, skipping identifiers like "projectDependencies".
func dependenciesKeyword(s string) int {
	offset := 0
	for {
		idx := strings.Index(s[offset:], "dependencies")
		if idx < 0 {
			return -1
		}
		idx += offset
		before := byte(' ')
		if idx > 0 {
			before = s[idx-1]
		}
		afterIdx := idx + len("dependencies")
		after := byte(' ')
		if afterIdx < len(s) {
			after = s[afterIdx]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return idx
		}
		offset = afterIdx
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
