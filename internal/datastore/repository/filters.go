package repository

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscape is the escape character declared on every LIKE clause.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// containsPattern returns a LIKE pattern matching values that contain q
// literally. Wildcards typed by the caller do not act as wildcards.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// textMatch filters column by q. An exact match compares with equality, any
// other match is a case-insensitive substring match.
func textMatch(column, q string, exact bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if exact {
			return db.Where(column+" = ?", q)
		}
		return db.Where("LOWER("+column+") LIKE LOWER(?) ESCAPE '"+likeEscape+"'", containsPattern(q))
	}
}

// between filters column by optional inclusive bounds. Rows with a NULL column
// are excluded once any bound is given.
func between(column string, lower, upper *float64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if lower != nil {
			db = db.Where(column+" >= ?", *lower)
		}
		if upper != nil {
			db = db.Where(column+" <= ?", *upper)
		}
		return db
	}
}

// equals filters column by value.
func equals(column string, value any) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", value)
	}
}
