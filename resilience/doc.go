// Package resilience bounds how long a credential resolution may run.
//
// Resolution deliberately has no retry or circuit breaking: a failed probe or
// helper call is fatal. The only knob is an optional overall deadline, which
// is off by default so an interactive login can take as long as the user
// needs.
package resilience
