package audit

import (
	"fmt"
	"reflect"
	"time"

	"github.com/bookscope/bookscope/internal/models"
	"gorm.io/gorm"
)

// Columns that never appear in a change-set: identity and timestamp
// bookkeeping carry no business meaning.
var skippedColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// diffImages compares two loaded instances of the statement's model
// column by column and returns the textual old/new pairs for columns
// whose rendered value differs.
func diffImages(tx *gorm.DB, pre, post interface{}) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)
	preVal := reflect.ValueOf(pre).Elem()
	postVal := reflect.ValueOf(post).Elem()
	ctx := tx.Statement.Context

	for _, field := range tx.Statement.Schema.Fields {
		if field.PrimaryKey || field.DBName == "" || skippedColumns[field.DBName] {
			continue
		}
		oldRaw, _ := field.ValueOf(ctx, preVal)
		newRaw, _ := field.ValueOf(ctx, postVal)
		oldStr := renderValue(oldRaw)
		newStr := renderValue(newRaw)
		if equalValues(oldStr, newStr) {
			continue
		}
		changes[field.DBName] = models.FieldChange{Old: oldStr, New: newStr}
	}
	return changes
}

// renderValue produces the textual form of a column value, nil for NULL.
func renderValue(v interface{}) *string {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return renderValue(rv.Elem().Interface())
	}
	var s string
	switch val := v.(type) {
	case time.Time:
		s = val.UTC().Format(time.RFC3339Nano)
	default:
		s = fmt.Sprintf("%v", val)
	}
	return &s
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
