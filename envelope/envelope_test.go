package envelope

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	in := `{
		"channel_alias": {"scheme": "https", "location": "pkgs.dev.azure.com/org/_packaging/feed/conda", "auth": null, "token": null},
		"channel_name": "feed",
		"platform": "linux-64"
	}`
	req, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, err := req.ServiceURL()
	if err != nil {
		t.Fatalf("ServiceURL() error = %v", err)
	}
	if want := "https://pkgs.dev.azure.com/org/_packaging/feed/conda"; got != want {
		t.Fatalf("ServiceURL() = %q, want %q", got, want)
	}
}

func TestDecode_MissingChannelAlias(t *testing.T) {
	tests := []string{
		`{}`,
		`{"channel_alias": null}`,
		`{"channel_alias": {"scheme": "https"}}`,
		`{"channel_alias": {"location": "pkgs.dev.azure.com/x"}}`,
		`{"channel_alias": {"scheme": " ", "location": "x"}}`,
	}
	for _, in := range tests {
		if _, err := Decode(strings.NewReader(in)); !errors.Is(err, ErrMissingChannelAlias) {
			t.Errorf("Decode(%s) error = %v, want ErrMissingChannelAlias", in, err)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{``, `not json`, `{"channel_alias": "https://x"}`, `[1,2]`} {
		_, err := Decode(strings.NewReader(in))
		if err == nil || errors.Is(err, ErrMissingChannelAlias) {
			t.Errorf("Decode(%q) error = %v, want a decode error", in, err)
		}
	}
}

func TestDecode_TooLarge(t *testing.T) {
	in := `{"channel_alias":{"scheme":"https","location":"x"},"pad":"` + strings.Repeat("a", maxEnvelopeSize) + `"}`
	if _, err := Decode(strings.NewReader(in)); err == nil {
		t.Fatal("expected size error")
	}
}
