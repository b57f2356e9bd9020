package sqlstore

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The legacy schema uses camelCase column names. Conditions and orderings go
// through clause columns so every dialect quotes them; postgres would
// otherwise fold them to lower case.

func col(name string) clause.Column {
	return clause.Column{Name: name}
}

func eq(column string, value interface{}) clause.Expression {
	return clause.Eq{Column: col(column), Value: value}
}

func asc(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: col(column)}
}

func desc(column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: col(column), Desc: true}
}

// dateRange applies an inclusive date window; zero bounds are left open.
func dateRange(q *gorm.DB, column string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(clause.Gte{Column: col(column), Value: from})
	}
	if !to.IsZero() {
		q = q.Where(clause.Lte{Column: col(column), Value: to})
	}
	return q
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
