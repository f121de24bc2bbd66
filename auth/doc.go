// Package auth inspects session tokens returned by the credential provider.
//
// Azure Artifacts session tokens are JWTs. Their claims are read without
// verifying the signature: the feed is the authority on validity, and this
// package only reports what the token says about itself (expiry, subject)
// so callers can log it and bound how long a token is reused.
package auth
