package helper

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	errNotObject    = errors.New("payload is not a JSON object")
	errMissingField = errors.New("missing required field")
)

// DecodePayload decodes the helper's stdout.
//
// The bytes must be valid UTF-8 and a JSON object containing both
// "Username" and "Password". A JSON null for either field decodes to an
// empty string, which the caller treats as an absent credential.
func DecodePayload(raw []byte) (Credential, error) {
	if _, _, err := transform.Bytes(encoding.UTF8Validator, raw); err != nil {
		return Credential{}, &Error{Kind: KindEncoding, Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Credential{}, &Error{Kind: KindMalformedPayload, Err: err}
	}
	if fields == nil {
		return Credential{}, &Error{Kind: KindMalformedPayload, Err: errNotObject}
	}

	username, err := stringField(fields, "Username")
	if err != nil {
		return Credential{}, &Error{Kind: KindMalformedPayload, Err: err}
	}
	password, err := stringField(fields, "Password")
	if err != nil {
		return Credential{}, &Error{Kind: KindMalformedPayload, Err: err}
	}

	return Credential{Username: username, Password: password}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w %q", errMissingField, name)
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("field %q: %w", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}
