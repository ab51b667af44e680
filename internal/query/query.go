// package query translates typed option bags into GORM query fragments.
//
// Everything here is a pure transformation; no I/O happens until the caller
// executes the assembled statement.
package query

import (
	"strings"

	"gorm.io/gorm"
)

// Deterministic default orderings. Stable sorts are required for offset/limit
// pagination to be meaningful.
const (
	AuthorOrder = "last_name, first_name"
	NameOrder   = "name"
	UserOrder   = "username"
)

// ListOptions is the option bag recognized by every list/find operation.
// Nil pointer fields mean "no constraint", not zero.
type ListOptions struct {
	Active *bool   // filter on the active flag
	Name   string  // case-insensitive substring match on the entity's name field(s)
	Limit  *int    // page size; nil means unbounded
	Offset *int    // rows to skip; nil means none

	// Eager-load flags. Each entity honors only the edges it has.
	WithLibrary bool
	WithAuthors bool
	WithSeries  bool
	WithStories bool
	WithVolumes bool
}

// Paginate passes offset/limit through verbatim when present.
func Paginate(o ListOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if o.Offset != nil {
			db = db.Offset(*o.Offset)
		}
		if o.Limit != nil {
			db = db.Limit(*o.Limit)
		}
		return db
	}
}

// ActiveFilter constrains on the active flag when the option is set.
func ActiveFilter(o ListOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if o.Active != nil {
			db = db.Where("active = ?", *o.Active)
		}
		return db
	}
}

// NameFilter matches the given column against the name option as a
// case-insensitive substring.
func NameFilter(column string, o ListOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if o.Name == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '!'", contains(o.Name))
	}
}

// AuthorNameFilter matches author names. A single-token query matches either
// name field; a multi-token query matches token 0 against first_name OR
// token 1 against last_name, with no coordination between the two.
func AuthorNameFilter(o ListOptions) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		tokens := strings.Fields(o.Name)
		switch len(tokens) {
		case 0:
			return db
		case 1:
			return db.Where("LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!'",
				contains(tokens[0]), contains(tokens[0]))
		default:
			return db.Where("LOWER(first_name) LIKE ? ESCAPE '!' OR LOWER(last_name) LIKE ? ESCAPE '!'",
				contains(tokens[0]), contains(tokens[1]))
		}
	}
}

// Includes returns the association names selected by the eager-load flags,
// restricted to the edges the entity supports. An empty result means no
// preloading at all.
func Includes(o ListOptions, available ...string) []string {
	flags := map[string]bool{
		"Library": o.WithLibrary,
		"Authors": o.WithAuthors,
		"Series":  o.WithSeries,
		"Stories": o.WithStories,
		"Volumes": o.WithVolumes,
	}
	var edges []string
	for _, name := range available {
		if flags[name] {
			edges = append(edges, name)
		}
	}
	return edges
}

// Preload applies the selected eager-load edges to the statement.
func Preload(db *gorm.DB, o ListOptions, available ...string) *gorm.DB {
	for _, edge := range Includes(o, available...) {
		db = db.Preload(edge)
	}
	return db
}

// likeEscaper neutralizes LIKE metacharacters so option values match as
// literal substrings. '!' is the escape character because a backslash would
// need dialect-specific doubling inside MySQL string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func contains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
