package model

// Check-in methods recorded in the Method column of the log table.
const (
	MethodQR    = "QR"
	MethodAdmin = "Admin"
)

// LogEntry is one attendance event in the logs table. A row is written at
// check-in and mutated exactly once when the checkout time is filled in.
// An empty CheckOut means the person is currently present.
//
// Fields:
//  Name     – normalized full name of the attendee.
//  Role     – role recorded at check-in time (Adult, Parent, Child).
//  Date     – calendar date of the event, YYYY-MM-DD.
//  CheckIn  – wall-clock check-in time, HH:MM:SS.
//  CheckOut – wall-clock checkout time, empty while still present.
//  Method   – QR or Admin.
//  Parent   – responsible parent's full name; empty for standalone adults.
type LogEntry struct {
	Name     string
	Role     Role
	Date     string
	CheckIn  string
	CheckOut string
	Method   string
	Parent   string
}

// Open reports whether the entry still lacks a checkout time.
func (e LogEntry) Open() bool { return e.CheckOut == "" }
