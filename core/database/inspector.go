package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// A missing table yields an empty slice on SQLite and an error on MySQL.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// MissingColumns returns the expected columns that the table lacks.
func MissingColumns(db *gorm.DB, tableName string, expected []string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		present[col.Field] = struct{}{}
	}

	var missing []string
	for _, name := range expected {
		if _, ok := present[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
