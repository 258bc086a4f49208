package utils

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "jane doe", "Jane Doe"},
		{"uppercase", "JANE DOE", "Jane Doe"},
		{"extra spaces", "  jane   doe ", "Jane Doe"},
		{"single part", "jane", "Jane"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"three parts", "mary jane doe", "Mary Jane Doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Fatalf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"plain", "Jane", true},
		{"hyphenated", "Anne-Marie", true},
		{"digit", "Jane2", false},
		{"pipe", "Jane|Doe", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidName(tt.in); got != tt.want {
				t.Fatalf("ValidName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeManualName(t *testing.T) {
	got := SanitizeManualName("=Jane,Doe;+-@\t\r\n")
	if got != "JaneDoe" {
		t.Fatalf("SanitizeManualName = %q, want %q", got, "JaneDoe")
	}
}
