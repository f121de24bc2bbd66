// Package probe classifies package-feed endpoints by issuing a single GET.
//
// A probe answers one question: does this endpoint accept the request as
// presented? It never looks at response bodies and never retries. Status 401
// and 403 mean rejected; every other status, server errors included, means
// accepted. Transport failures are returned as errors, not as rejections.
package probe
