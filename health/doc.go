// Package health runs the environment checks behind the doctor command.
//
// Each Check reports whether one prerequisite of credential resolution is in
// place: the credential provider can be located, the feed host is on the
// allowlist, and the feed endpoint answers. A Suite runs them concurrently
// and returns a Report in the order the checks were added.
package health
