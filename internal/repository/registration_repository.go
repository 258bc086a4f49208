package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/store"
	"github.com/iliyamo/church-check-in/internal/utils"
)

// RegistrationHeader is the registrations table schema, in column order.
// "Date of Birth" was appended after the initial deployment; rows written
// before then load with the column padded empty.
var RegistrationHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "Gender",
	"Role", "Children", "QR Link", "Minor", "Parent Name", "Address",
	"Date of Birth",
}

// Column indices into RegistrationHeader.
const (
	colFirst = iota
	colLast
	colEmail
	colPhone
	colGender
	colRole
	colChildren
	colQRLink
	colMinor
	colParent
	colAddress
	colDOB
)

// RegistrationRepo provides all reads and mutations on the registrations
// table. Each operation loads the whole table, works in memory and (for
// mutations) rewrites the whole file via the store.
type RegistrationRepo struct {
	tbl *store.Table
}

// NewRegistrationRepo binds the repo to a registrations table.
func NewRegistrationRepo(tbl *store.Table) *RegistrationRepo {
	return &RegistrationRepo{tbl: tbl}
}

// RegisterInput carries the raw registration form fields. Names arrive
// unnormalized; ChildrenRaw is the parent's comma-joined child list; Parents
// holds up to two selected parent names for a Child.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Gender      string
	Role        model.Role
	ChildrenRaw string
	Parents     []string
	Address     string
	DateOfBirth string
}

// Register validates the input against the current table and appends the new
// row on success. linkFor builds the QR check-in URL from the normalized name
// parts; it runs only after validation passes so rejected submissions produce
// no artifacts. The validation order is fixed: names, duplicate person,
// role-specific rules, duplicate email, duplicate phone.
func (r *RegistrationRepo) Register(in RegisterInput, linkFor func(first, last string, role model.Role) string) (model.Registration, error) {
	first := utils.NormalizeName(in.FirstName)
	last := utils.NormalizeName(in.LastName)
	if !utils.ValidName(first) || !utils.ValidName(last) {
		return model.Registration{}, ErrInvalidName
	}
	fullName := first + " " + last

	regs, err := r.List()
	if err != nil {
		return model.Registration{}, err
	}
	for _, reg := range regs {
		if strings.EqualFold(reg.FullName(), fullName) {
			return model.Registration{}, ErrAlreadyRegistered
		}
	}

	parentName := ""
	switch in.Role {
	case model.RoleChild:
		if strings.TrimSpace(in.ChildrenRaw) != "" {
			return model.Registration{}, ErrChildWithChildren
		}
		if len(in.Parents) == 0 {
			return model.Registration{}, ErrParentRequired
		}
		if len(in.Parents) > 2 {
			return model.Registration{}, ErrTooManyParents
		}
		registered := guardianSet(regs)
		for _, p := range in.Parents {
			if !registered[strings.ToLower(strings.TrimSpace(p))] {
				return model.Registration{}, fmt.Errorf("parent %q: %w", p, ErrParentNotRegistered)
			}
		}
		parentName = strings.Join(in.Parents, ", ")
	case model.RoleParent:
		parentName = fullName
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, reg := range regs {
		if email != "" && strings.EqualFold(reg.Email, email) {
			return model.Registration{}, ErrEmailExists
		}
	}
	phone := strings.TrimSpace(in.Phone)
	for _, reg := range regs {
		if phone != "" && reg.Phone == phone {
			return model.Registration{}, ErrPhoneExists
		}
	}

	var children []string
	if in.Role == model.RoleParent && strings.TrimSpace(in.ChildrenRaw) != "" {
		for _, c := range strings.Split(in.ChildrenRaw, ",") {
			child := utils.NormalizeName(c)
			if child == "" {
				continue
			}
			if !utils.ValidName(child) {
				return model.Registration{}, fmt.Errorf("child name %q: %w", child, ErrInvalidName)
			}
			children = append(children, child)
		}
	}

	gender := strings.TrimSpace(in.Gender)
	if gender == "" {
		gender = "Other"
	}
	address := ""
	if in.Role == model.RoleAdult {
		address = strings.TrimSpace(in.Address)
	}

	reg := model.Registration{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		Phone:       phone,
		Gender:      gender,
		Role:        in.Role,
		Children:    children,
		QRLink:      linkFor(first, last, in.Role),
		Minor:       in.Role == model.RoleChild,
		ParentName:  parentName,
		Address:     address,
		DateOfBirth: strings.TrimSpace(in.DateOfBirth),
	}
	if err := r.tbl.Append(toRow(reg)); err != nil {
		return model.Registration{}, err
	}
	return reg, nil
}

// List returns every registration in table order.
func (r *RegistrationRepo) List() ([]model.Registration, error) {
	rows, err := r.tbl.Load()
	if err != nil {
		return nil, err
	}
	regs := make([]model.Registration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, fromRow(row))
	}
	return regs, nil
}

// Find looks up a registration by case-insensitive full name and returns it
// with its positional index.
func (r *RegistrationRepo) Find(fullName string) (model.Registration, int, error) {
	regs, err := r.List()
	if err != nil {
		return model.Registration{}, 0, err
	}
	for i, reg := range regs {
		if strings.EqualFold(reg.FullName(), strings.TrimSpace(fullName)) {
			return reg, i, nil
		}
	}
	return model.Registration{}, 0, ErrNotFound
}

// Get returns the registration at the given positional index.
func (r *RegistrationRepo) Get(index int) (model.Registration, error) {
	regs, err := r.List()
	if err != nil {
		return model.Registration{}, err
	}
	if index < 0 || index >= len(regs) {
		return model.Registration{}, ErrBadIndex
	}
	return regs[index], nil
}

// RegisteredParents returns the sorted full names of everyone who can be
// listed as a child's guardian, i.e. registrants with role Parent or Adult.
func (r *RegistrationRepo) RegisteredParents() ([]string, error) {
	regs, err := r.List()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var parents []string
	for _, reg := range regs {
		if reg.Role != model.RoleParent && reg.Role != model.RoleAdult {
			continue
		}
		if name := reg.FullName(); !seen[name] {
			seen[name] = true
			parents = append(parents, name)
		}
	}
	sort.Strings(parents)
	return parents, nil
}

// MinorChildren returns the child names listed on a parent's own row. The
// parent row's Children column is the authoritative list for the check-in
// flow; separately registered Child rows are not cross-checked here (see
// DESIGN.md on reconciliation).
func (r *RegistrationRepo) MinorChildren(parentName string) ([]string, error) {
	regs, err := r.List()
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(parentName))
	for _, reg := range regs {
		if reg.Role == model.RoleParent && strings.ToLower(reg.FullName()) == want {
			return reg.Children, nil
		}
	}
	return nil, nil
}

// Search returns registrations whose name, email or phone contains the query
// as a case-insensitive substring.
func (r *RegistrationRepo) Search(query string) ([]model.Registration, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	regs, err := r.List()
	if err != nil {
		return nil, err
	}
	var out []model.Registration
	for _, reg := range regs {
		if strings.Contains(strings.ToLower(reg.FullName()), q) ||
			strings.Contains(strings.ToLower(reg.Email), q) ||
			strings.Contains(reg.Phone, q) {
			out = append(out, reg)
		}
	}
	return out, nil
}

// Update rewrites the row at the given index in place.
func (r *RegistrationRepo) Update(index int, reg model.Registration) error {
	return r.tbl.Update(func(rows [][]string) ([][]string, error) {
		if index < 0 || index >= len(rows) {
			return nil, ErrBadIndex
		}
		rows[index] = toRow(reg)
		return rows, nil
	})
}

// Delete removes the row at the given positional index. Indices shift after
// a delete, which is a documented limitation of the positional admin API.
func (r *RegistrationRepo) Delete(index int) error {
	return r.tbl.Update(func(rows [][]string) ([][]string, error) {
		if index < 0 || index >= len(rows) {
			return nil, ErrBadIndex
		}
		return append(rows[:index], rows[index+1:]...), nil
	})
}

// UpdateQRLinks regenerates the stored QR link for every row that has one,
// returning how many rows changed. Used to repair links written by older
// payload formats.
func (r *RegistrationRepo) UpdateQRLinks(linkFor func(first, last string, role model.Role) string) (int, error) {
	updated := 0
	err := r.tbl.Update(func(rows [][]string) ([][]string, error) {
		for i, row := range rows {
			if row[colQRLink] == "" {
				continue
			}
			role := model.ParseRole(strings.SplitN(row[colRole], ",", 2)[0])
			rows[i][colQRLink] = linkFor(row[colFirst], row[colLast], role)
			updated++
		}
		return rows, nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func guardianSet(regs []model.Registration) map[string]bool {
	set := map[string]bool{}
	for _, reg := range regs {
		if reg.Role == model.RoleParent || reg.Role == model.RoleAdult {
			set[strings.ToLower(reg.FullName())] = true
		}
	}
	return set
}

func toRow(reg model.Registration) []string {
	minor := "0"
	if reg.Minor {
		minor = "1"
	}
	return []string{
		reg.FirstName,
		reg.LastName,
		reg.Email,
		reg.Phone,
		reg.Gender,
		string(reg.Role),
		strings.Join(reg.Children, ", "),
		reg.QRLink,
		minor,
		reg.ParentName,
		reg.Address,
		reg.DateOfBirth,
	}
}

func fromRow(row []string) model.Registration {
	var children []string
	for _, c := range strings.Split(row[colChildren], ",") {
		if c = strings.TrimSpace(c); c != "" {
			children = append(children, c)
		}
	}
	return model.Registration{
		FirstName:   strings.TrimSpace(row[colFirst]),
		LastName:    strings.TrimSpace(row[colLast]),
		Email:       strings.TrimSpace(row[colEmail]),
		Phone:       strings.TrimSpace(row[colPhone]),
		Gender:      strings.TrimSpace(row[colGender]),
		Role:        model.Role(strings.TrimSpace(row[colRole])),
		Children:    children,
		QRLink:      strings.TrimSpace(row[colQRLink]),
		Minor:       strings.TrimSpace(row[colMinor]) == "1",
		ParentName:  strings.TrimSpace(row[colParent]),
		Address:     strings.TrimSpace(row[colAddress]),
		DateOfBirth: strings.TrimSpace(row[colDOB]),
	}
}
