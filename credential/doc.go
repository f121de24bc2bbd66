// Package credential resolves Azure Artifacts credentials for a feed URL.
//
// A Resolver runs the probe/helper state machine: probe without credentials,
// ask the credential provider, validate what it returned, and ask again with
// IsRetry set if the feed rejected it. A Backend sits in front of the
// Resolver, filtering requests to supported hosts and optionally memoizing
// results for the life of the process.
package credential
