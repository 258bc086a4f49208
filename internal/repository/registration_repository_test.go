package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/store"
)

func testLink(first, last string, role model.Role) string {
	return "http://localhost:8080/check-in?data=" + first + "%7C" + last + "%7C" + string(role)
}

func newTestRepo(t *testing.T) *RegistrationRepo {
	t.Helper()
	tbl := store.NewTable(filepath.Join(t.TempDir(), "registrations.csv"), RegistrationHeader)
	return NewRegistrationRepo(tbl)
}

func adultInput(first, last, email, phone string) RegisterInput {
	return RegisterInput{
		FirstName: first, LastName: last, Email: email, Phone: phone,
		Role: model.RoleAdult,
	}
}

func TestRegisterNormalizesAndPersists(t *testing.T) {
	r := newTestRepo(t)
	reg, err := r.Register(RegisterInput{
		FirstName: "  jane ", LastName: "DOE", Email: "J@X.com", Phone: " 555 ",
		Role: model.RoleParent, ChildrenRaw: "ann doe, bob doe",
	}, testLink)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.FullName() != "Jane Doe" {
		t.Fatalf("name = %q, want normalized", reg.FullName())
	}
	if reg.Email != "j@x.com" {
		t.Fatalf("email = %q, want lower-cased", reg.Email)
	}
	if reg.ParentName != "Jane Doe" {
		t.Fatalf("parent must self-reference, got %q", reg.ParentName)
	}
	if len(reg.Children) != 2 || reg.Children[0] != "Ann Doe" || reg.Children[1] != "Bob Doe" {
		t.Fatalf("children = %v, want normalized list", reg.Children)
	}
	if reg.Minor {
		t.Fatal("parent must not be flagged minor")
	}

	got, _, err := r.Find("jane doe")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.QRLink == "" {
		t.Fatal("expected stored QR link")
	}
}

func TestRegisterValidationOrderAndRules(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(adultInput("Jane", "Doe", "j@x.com", "555"), testLink); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"digit in name", adultInput("J4ne", "Doe", "a@x.com", "1"), ErrInvalidName},
		{"pipe in name", adultInput("Jane", "D|oe", "a@x.com", "1"), ErrInvalidName},
		{"duplicate full name", adultInput("JANE", "doe", "other@x.com", "1"), ErrAlreadyRegistered},
		{"duplicate email", adultInput("Mary", "Smith", "J@X.COM", "1"), ErrEmailExists},
		{"duplicate phone", adultInput("Mary", "Smith", "m@x.com", "555"), ErrPhoneExists},
		{
			"child without parents",
			RegisterInput{FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "1", Role: model.RoleChild},
			ErrParentRequired,
		},
		{
			"child with three parents",
			RegisterInput{
				FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "1",
				Role: model.RoleChild, Parents: []string{"A B", "C D", "E F"},
			},
			ErrTooManyParents,
		},
		{
			"child with unregistered parent",
			RegisterInput{
				FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "1",
				Role: model.RoleChild, Parents: []string{"Nobody Here"},
			},
			ErrParentNotRegistered,
		},
		{
			"child listing own children",
			RegisterInput{
				FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "1",
				Role: model.RoleChild, Parents: []string{"Jane Doe"}, ChildrenRaw: "Someone Else",
			},
			ErrChildWithChildren,
		},
		{
			"parent with invalid child name",
			RegisterInput{
				FirstName: "Mary", LastName: "Smith", Email: "m@x.com", Phone: "2",
				Role: model.RoleParent, ChildrenRaw: "An9 Smith",
			},
			ErrInvalidName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Register(tt.in, testLink); !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}

	// None of the rejected submissions may have been persisted.
	regs, err := r.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("expected only the seed row, got %d", len(regs))
	}
}

func TestChildRegistrationLinksParents(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(RegisterInput{
		FirstName: "Jane", LastName: "Doe", Email: "j@x.com", Phone: "555",
		Role: model.RoleParent, ChildrenRaw: "Tom Doe",
	}, testLink); err != nil {
		t.Fatalf("register parent: %v", err)
	}
	if _, err := r.Register(adultInput("Al", "Doe", "al@x.com", "556"), testLink); err != nil {
		t.Fatalf("register adult: %v", err)
	}

	reg, err := r.Register(RegisterInput{
		FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "557",
		Role: model.RoleChild, Parents: []string{"Jane Doe", "Al Doe"},
	}, testLink)
	if err != nil {
		t.Fatalf("register child: %v", err)
	}
	if !reg.Minor {
		t.Fatal("child must be flagged minor")
	}
	if reg.ParentName != "Jane Doe, Al Doe" {
		t.Fatalf("parent link = %q", reg.ParentName)
	}
	if got := reg.Parents(); len(got) != 2 {
		t.Fatalf("parents = %v", got)
	}
}

func TestRegisteredParentsListsGuardians(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(RegisterInput{
		FirstName: "Jane", LastName: "Doe", Email: "j@x.com", Phone: "1", Role: model.RoleParent,
	}, testLink); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Register(adultInput("Al", "Smith", "al@x.com", "2"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Register(RegisterInput{
		FirstName: "Tom", LastName: "Doe", Email: "t@x.com", Phone: "3",
		Role: model.RoleChild, Parents: []string{"Jane Doe"},
	}, testLink); err != nil {
		t.Fatalf("register: %v", err)
	}

	parents, err := r.RegisteredParents()
	if err != nil {
		t.Fatalf("registered parents: %v", err)
	}
	if len(parents) != 2 || parents[0] != "Al Smith" || parents[1] != "Jane Doe" {
		t.Fatalf("parents = %v, want sorted guardians without the child", parents)
	}
}

func TestMinorChildrenReadsParentRow(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(RegisterInput{
		FirstName: "Jane", LastName: "Doe", Email: "j@x.com", Phone: "1",
		Role: model.RoleParent, ChildrenRaw: "Ann Doe, Bob Doe",
	}, testLink); err != nil {
		t.Fatalf("register: %v", err)
	}

	children, err := r.MinorChildren("jane doe")
	if err != nil {
		t.Fatalf("minor children: %v", err)
	}
	if len(children) != 2 || children[0] != "Ann Doe" || children[1] != "Bob Doe" {
		t.Fatalf("children = %v", children)
	}

	children, err = r.MinorChildren("Nobody Here")
	if err != nil || children != nil {
		t.Fatalf("expected no children for unknown parent, got %v, %v", children, err)
	}
}

func TestSearchMatchesNameEmailPhone(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(adultInput("Jane", "Doe", "jane@example.com", "07700900123"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Register(adultInput("Al", "Smith", "al@other.org", "555"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by partial name", "jane", 1},
		{"by email domain", "EXAMPLE.COM", 1},
		{"by phone fragment", "0770", 1},
		{"no match", "zzz", 0},
		{"empty query", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Search(tt.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("search(%q) = %d results, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestUpdateAndDeleteByIndex(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(adultInput("Jane", "Doe", "j@x.com", "1"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.Register(adultInput("Al", "Smith", "a@x.com", "2"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}

	reg, err := r.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	reg.Phone = "999"
	if err := r.Update(1, reg); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := r.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != "999" {
		t.Fatalf("phone = %q after update", got.Phone)
	}

	if err := r.Delete(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	regs, err := r.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(regs) != 1 || regs[0].FullName() != "Al Smith" {
		t.Fatalf("unexpected rows after delete: %v", regs)
	}

	if err := r.Delete(5); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("out-of-range delete error = %v, want ErrBadIndex", err)
	}
}

func TestUpdateQRLinksRewritesStoredLinks(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Register(adultInput("Jane", "Doe", "j@x.com", "1"), testLink); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := r.UpdateQRLinks(func(first, last string, role model.Role) string {
		return "https://example.org/check-in?data=" + first + "%7C" + last + "%7C" + string(role)
	})
	if err != nil {
		t.Fatalf("update qr links: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	reg, err := r.Get(0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reg.QRLink != "https://example.org/check-in?data=Jane%7CDoe%7CAdult" {
		t.Fatalf("link = %q", reg.QRLink)
	}
}
