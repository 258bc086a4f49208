package checkin

import (
	"errors"
	"net/url"
	"testing"

	"github.com/iliyamo/church-check-in/internal/model"
)

func TestParsePayload(t *testing.T) {
	plain := "Jane|Doe|Parent"
	link := "http://localhost:8080/check-in?data=" + url.QueryEscape(plain)

	tests := []struct {
		name     string
		raw      string
		wantName string
		wantRole model.Role
	}{
		{"plain", plain, "Jane Doe", model.RoleParent},
		{"encoded once", url.QueryEscape(plain), "Jane Doe", model.RoleParent},
		{"encoded twice", url.QueryEscape(url.QueryEscape(plain)), "Jane Doe", model.RoleParent},
		{"wrapped in full url", link, "Jane Doe", model.RoleParent},
		{"wrapped and encoded", url.QueryEscape(link), "Jane Doe", model.RoleParent},
		{"stray data= prefix", "data=" + url.QueryEscape(plain), "Jane Doe", model.RoleParent},
		{"encoded stray data= prefix", url.QueryEscape("data=" + url.QueryEscape(plain)), "Jane Doe", model.RoleParent},
		{"role with trailing junk", "Tom|Doe|Child,extra,stuff", "Tom Doe", model.RoleChild},
		{"messy casing", "jane|DOE|Adult", "Jane Doe", model.RoleAdult},
		{"unknown role falls back to adult", "Jane|Doe|Visitor", "Jane Doe", model.RoleAdult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParsePayload(tt.raw)
			if err != nil {
				t.Fatalf("ParsePayload(%q): %v", tt.raw, err)
			}
			if id.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", id.Name, tt.wantName)
			}
			if id.Role != tt.wantRole {
				t.Fatalf("role = %q, want %q", id.Role, tt.wantRole)
			}
		})
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"two parts", "Jane|Doe"},
		{"no separator", "JaneDoe"},
		{"url without data param", "http://localhost:8080/check-in"},
		{"blank name parts", url.QueryEscape(" | | Adult")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePayload(tt.raw); !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("ParsePayload(%q) error = %v, want ErrMalformedPayload", tt.raw, err)
			}
		})
	}
}

func TestParsePayloadKeepsCleanPayload(t *testing.T) {
	id, err := ParsePayload(url.QueryEscape("Jane|Doe|Parent"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Payload != "Jane|Doe|Parent" {
		t.Fatalf("payload = %q, want cleaned pipe form", id.Payload)
	}
}
