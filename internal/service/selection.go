package service

import (
	"errors"
	"sort"
	"strings"
)

// Selection is the ordered set of services the user chose to manage.
// Names are compared case-insensitively, as the SCM does, and kept sorted.
type Selection struct {
	names []string
}

// NewSelection builds a selection from names, dropping duplicates and blanks.
func NewSelection(names []string) *Selection {
	s := &Selection{}
	s.Add(names...)
	return s
}

// Names returns a copy of the selected names in display order.
func (s *Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of selected services.
func (s *Selection) Len() int { return len(s.names) }

// Contains reports whether name is selected.
func (s *Selection) Contains(name string) bool {
	return s.index(name) >= 0
}

func (s *Selection) index(name string) int {
	for i, n := range s.names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// Add selects each name not already selected and returns how many were added.
func (s *Selection) Add(names ...string) int {
	added := 0
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || s.Contains(n) {
			continue
		}
		s.names = append(s.names, n)
		added++
	}
	if added > 0 {
		s.sort()
	}
	return added
}

// Remove unselects the named services and returns how many were removed.
func (s *Selection) Remove(names ...string) int {
	removed := 0
	for _, n := range names {
		if i := s.index(strings.TrimSpace(n)); i >= 0 {
			s.names = append(s.names[:i], s.names[i+1:]...)
			removed++
		}
	}
	return removed
}

// RemoveAt unselects the services at the given display positions.
// Out of range indices are ignored.
func (s *Selection) RemoveAt(indices ...int) int {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s.names) {
			drop[i] = true
		}
	}
	kept := s.names[:0]
	for i, n := range s.names {
		if !drop[i] {
			kept = append(kept, n)
		}
	}
	s.names = kept
	return len(drop)
}

func (s *Selection) sort() {
	sort.SliceStable(s.names, func(i, j int) bool {
		return strings.ToLower(s.names[i]) < strings.ToLower(s.names[j])
	})
}

// Row is one line of the service list.
type Row struct {
	Name    string
	Status  Status
	Running bool
	Err     error
}

// String renders the row the way the list shows it, e.g. "[Y] Spooler".
func (r Row) String() string {
	if r.Running {
		return "[Y] " + r.Name
	}
	return "[N] " + r.Name
}

// Refresh queries every selected service. Services that no longer exist are
// dropped from the selection; changed reports whether that happened so the
// caller can save the list. Other query errors are kept on the row.
func (s *Selection) Refresh(c Controller) (rows []Row, changed bool) {
	rows = make([]Row, 0, len(s.names))
	kept := s.names[:0]
	for _, n := range s.names {
		st, err := c.Query(n)
		if errors.Is(err, ErrServiceNotFound) {
			changed = true
			continue
		}
		kept = append(kept, n)
		rows = append(rows, Row{Name: n, Status: st, Running: err == nil && IsRunning(st), Err: err})
	}
	s.names = kept
	return rows, changed
}

// Strings renders rows with Row.String.
func Strings(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String()
	}
	return out
}
