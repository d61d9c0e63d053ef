package waitlist

import (
	"strings"

	"golang.org/x/text/cases"
)

// StatusFilterAll is the dashboard's "no status filter" choice.
const StatusFilterAll = "all"

// Query narrows a listing the way the admin dashboard does. Zero values mean
// "no filter".
type Query struct {
	Status   Status
	Interest InterestType
	Search   string
}

func (q Query) IsZero() bool {
	return q.Status == "" && q.Interest == "" && strings.TrimSpace(q.Search) == ""
}

// Matcher does case-insensitive substring search over first name, last name,
// email and company.
type Matcher struct {
	folder cases.Caser
	term   string
}

func NewMatcher(term string) *Matcher {
	folder := cases.Fold()
	return &Matcher{folder: folder, term: folder.String(strings.TrimSpace(term))}
}

func (m *Matcher) Matches(r Record) bool {
	if m.term == "" {
		return true
	}
	for _, field := range []string{r.FirstName, r.LastName, r.Email, r.Company} {
		if strings.Contains(m.folder.String(field), m.term) {
			return true
		}
	}
	return false
}

// Search keeps the records that match term, in order.
func Search(records []Record, term string) []Record {
	m := NewMatcher(term)
	if m.term == "" {
		return records
	}
	return filter(records, m.Matches)
}
