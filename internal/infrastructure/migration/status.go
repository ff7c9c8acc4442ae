package migration

import (
	"strconv"
	"strings"
)

// MigrationState is one migration file and whether it is applied
type MigrationState struct {
	Version uint64
	Name    string
	Applied bool
}

// Status summarises the schema state against the migrations on disk
type Status struct {
	CurrentVersion uint
	Dirty          bool
	Migrations     []MigrationState
}

// Pending returns the migrations not applied yet
func (s *Status) Pending() []MigrationState {
	var pending []MigrationState
	for _, m := range s.Migrations {
		if !m.Applied {
			pending = append(pending, m)
		}
	}
	return pending
}

// buildStatus marks every file whose version is at or below current as applied.
// Files without a numeric version prefix are skipped.
func buildStatus(current uint, dirty bool, baseNames []string) *Status {
	st := &Status{CurrentVersion: current, Dirty: dirty}
	for _, base := range baseNames {
		version, name, ok := splitBaseName(base)
		if !ok {
			continue
		}
		st.Migrations = append(st.Migrations, MigrationState{
			Version: version,
			Name:    name,
			Applied: current > 0 && version <= uint64(current),
		})
	}
	return st
}

func splitBaseName(base string) (uint64, string, bool) {
	prefix, name, _ := strings.Cut(base, "_")
	version, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return version, name, true
}
