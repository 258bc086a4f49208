package checkin

import (
	"errors"
	"time"

	"github.com/iliyamo/church-check-in/internal/model"
	"github.com/iliyamo/church-check-in/internal/repository"
	"github.com/iliyamo/church-check-in/internal/utils"
)

// State transition failures. Both are idempotent: nothing is written when
// they are returned.
var (
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNotCheckedIn     = errors.New("no active check-in found")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Engine drives check-in and check-out transitions over the registration and
// log tables. "Checked in" for a person on a date means an open log entry
// (empty checkout time) exists for that name and date; every decision below
// derives from that single definition.
type Engine struct {
	regs     *repository.RegistrationRepo
	logs     *repository.LogRepo
	cooldown *Cooldown
	now      func() time.Time
}

// NewEngine wires the engine to its tables and cooldown cache.
func NewEngine(regs *repository.RegistrationRepo, logs *repository.LogRepo, cooldown *Cooldown) *Engine {
	return &Engine{regs: regs, logs: logs, cooldown: cooldown, now: time.Now}
}

// RecentlyScanned consults the anti-bounce cache for a scanned identity.
func (e *Engine) RecentlyScanned(id Identity) bool {
	return e.cooldown.Recent(id.Name)
}

// IsCheckedIn reports whether the person has an open log entry today.
func (e *Engine) IsCheckedIn(name string) (bool, error) {
	return e.logs.IsCheckedIn(name, e.today())
}

// Preview describes the state shown before a check-in is submitted.
type Preview struct {
	Name              string     `json:"name"`
	Role              model.Role `json:"role"`
	CheckedIn         bool       `json:"checked_in"`
	HasChildren       bool       `json:"has_children_registered"`
	UnscannedChildren []string   `json:"unscanned_children"`
}

// Preview resolves a scanned identity against today's log: whether they are
// already in, and for parents which of their listed children still need a
// check-in.
func (e *Engine) Preview(id Identity) (Preview, error) {
	checkedIn, err := e.IsCheckedIn(id.Name)
	if err != nil {
		return Preview{}, err
	}
	p := Preview{Name: id.Name, Role: id.Role, CheckedIn: checkedIn}
	if id.Role != model.RoleParent {
		return p, nil
	}
	children, err := e.regs.MinorChildren(id.Name)
	if err != nil {
		return Preview{}, err
	}
	p.HasChildren = len(children) > 0
	for _, c := range children {
		in, err := e.IsCheckedIn(c)
		if err != nil {
			return Preview{}, err
		}
		if !in {
			p.UnscannedChildren = append(p.UnscannedChildren, c)
		}
	}
	return p, nil
}

// Result reports what a completed transition wrote.
type Result struct {
	Name     string   `json:"name"`
	Time     string   `json:"time"`
	Children []string `json:"children,omitempty"`
}

// CheckIn records attendance for a scanned identity. A person already
// checked in today gets ErrAlreadyCheckedIn so the caller can route the scan
// to checkout instead. Parents bring along the selected children that are
// not already in (noKids skips all of them); a child's entry references the
// parent stored on their registration. Every entry of one submission shares
// one timestamp.
func (e *Engine) CheckIn(id Identity, selectedChildren []string, noKids bool, method string) (Result, error) {
	checkedIn, err := e.IsCheckedIn(id.Name)
	if err != nil {
		return Result{}, err
	}
	if checkedIn {
		return Result{}, ErrAlreadyCheckedIn
	}

	ts := e.now()
	date, clock := ts.Format(dateLayout), ts.Format(timeLayout)
	entries := []model.LogEntry{}
	res := Result{Name: id.Name, Time: clock}

	switch id.Role {
	case model.RoleParent:
		entries = append(entries, model.LogEntry{
			Name: id.Name, Role: model.RoleParent, Date: date,
			CheckIn: clock, Method: method, Parent: id.Name,
		})
		if !noKids {
			for _, c := range selectedChildren {
				child := utils.NormalizeName(c)
				if child == "" {
					continue
				}
				in, err := e.IsCheckedIn(child)
				if err != nil {
					return Result{}, err
				}
				if in {
					continue
				}
				entries = append(entries, model.LogEntry{
					Name: child, Role: model.RoleChild, Date: date,
					CheckIn: clock, Method: method, Parent: id.Name,
				})
				res.Children = append(res.Children, child)
			}
		}
	case model.RoleChild:
		parent := ""
		if reg, _, err := e.regs.Find(id.Name); err == nil {
			parent = reg.ParentName
		} else if !errors.Is(err, repository.ErrNotFound) {
			return Result{}, err
		}
		entries = append(entries, model.LogEntry{
			Name: id.Name, Role: model.RoleChild, Date: date,
			CheckIn: clock, Method: method, Parent: parent,
		})
	default:
		entries = append(entries, model.LogEntry{
			Name: id.Name, Role: model.RoleAdult, Date: date,
			CheckIn: clock, Method: method,
		})
	}

	if err := e.logs.Append(entries...); err != nil {
		return Result{}, err
	}
	return res, nil
}

// CheckoutCandidates builds the set of names the scanned person may check
// out: themselves if currently in, plus (for parents) their listed children
// that are currently in. An empty set means there is no active check-in,
// which is distinct from a malformed scan.
func (e *Engine) CheckoutCandidates(id Identity) ([]string, error) {
	var names []string
	in, err := e.IsCheckedIn(id.Name)
	if err != nil {
		return nil, err
	}
	if in {
		names = append(names, id.Name)
	}
	if id.Role == model.RoleParent {
		children, err := e.regs.MinorChildren(id.Name)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			in, err := e.IsCheckedIn(c)
			if err != nil {
				return nil, err
			}
			if in {
				names = append(names, c)
			}
		}
	}
	if len(names) == 0 {
		return nil, ErrNotCheckedIn
	}
	return names, nil
}

// CheckOut closes today's open entries for the selected names. An empty
// selection defaults to just the scanned person. When nothing matches an
// open entry the log is left untouched and ErrNotCheckedIn is returned.
func (e *Engine) CheckOut(id Identity, selected []string) (Result, error) {
	names := make([]string, 0, len(selected))
	for _, s := range selected {
		if n := utils.NormalizeName(s); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		names = []string{id.Name}
	}

	clock := e.now().Format(timeLayout)
	if _, err := e.logs.CheckOut(names, e.today(), clock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, ErrNotCheckedIn
		}
		return Result{}, err
	}

	res := Result{Name: id.Name, Time: clock}
	for _, n := range names {
		if n != id.Name {
			res.Children = append(res.Children, n)
		}
	}
	return res, nil
}

// ManualCheckIn records an admin-entered check-in. The name is stripped of
// CSV-injection characters before it reaches the table; the role comes from
// the registration table when the person is known and defaults to Adult.
func (e *Engine) ManualCheckIn(name string) (Result, error) {
	clean := utils.NormalizeName(utils.SanitizeManualName(name))
	if clean == "" {
		return Result{}, ErrMalformedPayload
	}
	in, err := e.IsCheckedIn(clean)
	if err != nil {
		return Result{}, err
	}
	if in {
		return Result{}, ErrAlreadyCheckedIn
	}

	role := model.RoleAdult
	parent := ""
	if reg, _, err := e.regs.Find(clean); err == nil {
		role = reg.Role
		if role == model.RoleChild || role == model.RoleParent {
			parent = reg.ParentName
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, err
	}

	ts := e.now()
	entry := model.LogEntry{
		Name: clean, Role: role, Date: ts.Format(dateLayout),
		CheckIn: ts.Format(timeLayout), Method: model.MethodAdmin, Parent: parent,
	}
	if err := e.logs.Append(entry); err != nil {
		return Result{}, err
	}
	return Result{Name: clean, Time: entry.CheckIn}, nil
}

// ManualCheckOut closes today's open entry for an admin-entered name.
func (e *Engine) ManualCheckOut(name string) (Result, error) {
	clean := utils.NormalizeName(utils.SanitizeManualName(name))
	if clean == "" {
		return Result{}, ErrMalformedPayload
	}
	clock := e.now().Format(timeLayout)
	if _, err := e.logs.CheckOut([]string{clean}, e.today(), clock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, ErrNotCheckedIn
		}
		return Result{}, err
	}
	return Result{Name: clean, Time: clock}, nil
}

func (e *Engine) today() string { return e.now().Format(dateLayout) }
