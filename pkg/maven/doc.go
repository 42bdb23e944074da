// Package maven models Maven coordinates, versions, POMs, and remote
// repositories.
//
// It contains the pure data layer of caravel: artifact identity and URL
// construction, the Maven version total order and range matching, POM
// parsing with parent merging and property interpolation, repository
// metadata, and the manifest adapters that turn a pom.xml or
// build.gradle(.kts) into a direct dependency list.
//
// Network traffic lives elsewhere: the resolver package drives fetching
// and hands raw POM bytes to this package for interpretation. The one
// exception is [Registry], which probes remote repositories to bind an
// artifact to the host that serves it.
package maven
