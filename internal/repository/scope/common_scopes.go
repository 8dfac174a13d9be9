package scope

import "gorm.io/gorm"

// DefaultListLimit caps history listings when the caller gives no limit.
const DefaultListLimit = 100

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// Limit returns a scope capping the result to n rows, or DefaultListLimit
// when n is not positive.
func Limit(n int) func(db *gorm.DB) *gorm.DB {
	if n <= 0 {
		n = DefaultListLimit
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}
