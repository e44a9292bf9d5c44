// Package repository implements the data access layer for the application.
package repository

import (
	"devcircle/internal/database"

	"gorm.io/gorm"
)

// readDB prefers the read replica for plain reads. Reads that must observe
// the caller's own writes stay on primary.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil && db != database.DB {
		return db
	}
	return primary
}

// page applies limit/offset. Zero limit means all rows.
func page(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
