// Package envelope decodes the JSON request conda writes to a credential
// helper's stdin.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingChannelAlias is returned when the envelope has no usable
// channel_alias.
var ErrMissingChannelAlias = errors.New("envelope: missing channel_alias scheme or location")

// maxEnvelopeSize bounds how much of stdin is read.
const maxEnvelopeSize = 1 << 20

// ChannelAlias is the channel_alias section of the envelope.
type ChannelAlias struct {
	Scheme   string `json:"scheme"`
	Location string `json:"location"`
	Auth     string `json:"auth,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Request is a decoded envelope. Unknown fields are ignored.
type Request struct {
	ChannelAlias *ChannelAlias `json:"channel_alias"`
}

// Decode reads one envelope from r.
func Decode(r io.Reader) (Request, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxEnvelopeSize+1))
	if err != nil {
		return Request{}, fmt.Errorf("envelope: read: %w", err)
	}
	if len(raw) > maxEnvelopeSize {
		return Request{}, fmt.Errorf("envelope: request exceeds %d bytes", maxEnvelopeSize)
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("envelope: decode: %w", err)
	}
	if _, err := req.ServiceURL(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ServiceURL joins the channel alias into "<scheme>://<location>".
func (r Request) ServiceURL() (string, error) {
	ca := r.ChannelAlias
	if ca == nil || strings.TrimSpace(ca.Scheme) == "" || strings.TrimSpace(ca.Location) == "" {
		return "", ErrMissingChannelAlias
	}
	return ca.Scheme + "://" + ca.Location, nil
}
