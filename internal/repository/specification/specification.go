package specification

import "gorm.io/gorm"

// Specification narrows a query. Specs compose by applying them in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Apply runs every spec on db in order.
func Apply(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
