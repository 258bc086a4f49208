package validator

import (
	"strings"
	"testing"
)

type registrationForm struct {
	FirstName string `validate:"required,personname"`
	LastName  string `validate:"required,personname"`
	Email     string `validate:"required,email"`
	Role      string `validate:"required,role"`
}

func validForm() registrationForm {
	return registrationForm{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Role:      "Parent",
	}
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	if err := Validate(validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*registrationForm)
		wantMsg string
	}{
		{
			"missing first name",
			func(f *registrationForm) { f.FirstName = "" },
			ErrFieldRequired,
		},
		{
			"digit in name",
			func(f *registrationForm) { f.FirstName = "J4ne" },
			"numbers",
		},
		{
			"pipe in name",
			func(f *registrationForm) { f.LastName = "Do|e" },
			"numbers",
		},
		{
			"bad email",
			func(f *registrationForm) { f.Email = "not-an-email" },
			ErrInvalidFormat,
		},
		{
			"unknown role",
			func(f *registrationForm) { f.Role = "Guardian" },
			"Role must be",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := Validate(f)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestPersonNameAllowsApostrophesAndHyphens(t *testing.T) {
	for _, name := range []string{"O'Brien", "Smith-Jones", "Anne Marie"} {
		f := validForm()
		f.LastName = name
		if err := Validate(f); err != nil {
			t.Fatalf("%q rejected: %v", name, err)
		}
	}
}
