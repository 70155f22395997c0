// Package repository holds the query helpers every normal read path goes
// through. All of them apply the active-row filter, so soft-deleted rows
// never leak into listings, lookups or eager-loaded relations; reaching
// deleted rows is the audit service's job.
package repository

import "gorm.io/gorm"

// active keeps only rows whose soft-delete tombstone is unset.
func active(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}
