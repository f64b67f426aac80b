package model

import (
	"regexp"
	"time"
)

// NameRegexp matches a valid Hive-style account name: starts with a
// lowercase letter, followed by 2-15 lowercase alphanumerics, hyphens, or
// dots, for a total length of 3-16 (segment rules are enforced by the chain itself;
// this package only checks the shape spec.md §3 names).
var NameRegexp = regexp.MustCompile(`^[a-z][a-z0-9\-.]{2,15}$`)

// ValidAccountName reports whether name matches NameRegexp.
func ValidAccountName(name string) bool {
	return NameRegexp.MatchString(name)
}

// Account is a chain identity. Created on first observation in any block;
// never deleted.
type Account struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
