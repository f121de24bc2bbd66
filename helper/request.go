package helper

// Credential is a username/password pair produced by the helper.
// The zero value is the absent pair.
type Credential struct {
	Username string
	Password string
}

// Present reports whether both fields are set.
func (c Credential) Present() bool {
	return c.Username != "" && c.Password != ""
}

// Request is one helper invocation.
type Request struct {
	URI            string
	IsRetry        bool
	NonInteractive bool
	CanShowDialog  bool
}

// NewRequest builds a Request. The non-interactive toggle drives both
// -NonInteractive and -CanShowDialog.
func NewRequest(uri string, isRetry, nonInteractive bool) Request {
	return Request{
		URI:            uri,
		IsRetry:        isRetry,
		NonInteractive: nonInteractive,
		CanShowDialog:  nonInteractive,
	}
}

// Args renders the request as helper command-line flags.
func (r Request) Args() []string {
	return []string{
		"-Uri", r.URI,
		"-IsRetry", formatBool(r.IsRetry),
		"-NonInteractive", formatBool(r.NonInteractive),
		"-CanShowDialog", formatBool(r.CanShowDialog),
		"-OutputFormat", "Json",
	}
}

// formatBool matches the .NET bool.ToString spelling the helper's argument
// parser was written against.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
