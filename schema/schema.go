// Package schema loads table definitions from MySQL or PostgreSQL and writes
// them as a PlantUML entity relationship diagram.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // postgres
	"github.com/pkg/errors"
)

// Loader reads every table of one schema.
type Loader interface {
	LoadTables(ctx context.Context) ([]*Table, error)
}

// Queryer is the subset of *sql.DB the loaders need.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Column is a table column.
type Column struct {
	FieldOrdinal int
	Name         string
	Comment      sql.NullString
	DataType     string
	DDLType      string
	NotNull      bool
	IsPrimaryKey bool
	IsForeignKey bool
}

// ForeignKey links a referencing (source) column to a referenced (target)
// column.
type ForeignKey struct {
	ConstraintName        string
	SourceTableName       string
	SourceColName         string
	IsSourceColPrimaryKey bool
	SourceTable           *Table
	SourceColumn          *Column
	TargetTableName       string
	TargetColName         string
	IsTargetColPrimaryKey bool
	TargetTable           *Table
	TargetColumn          *Column
}

// IsOneToOne reports whether at most one source row references a target row.
//   - both tables have composite keys: one to one when every key from source
//     to target joins primary key columns on both sides
//   - otherwise one to one when the source column is the source table's
//     single primary key and the target column is a primary key
func (k *ForeignKey) IsOneToOne() bool {
	if k.SourceTable == nil || k.TargetTable == nil {
		return false
	}
	switch {
	case k.SourceTable.IsCompositePK() && k.TargetTable.IsCompositePK():
		for _, fk := range k.SourceTable.ForeignKeys {
			if fk.TargetTableName != k.TargetTableName {
				continue
			}
			if !fk.IsSourceColPrimaryKey || !fk.IsTargetColPrimaryKey {
				return false
			}
		}
		return true
	case !k.SourceTable.IsCompositePK():
		return k.IsSourceColPrimaryKey && k.IsTargetColPrimaryKey
	default:
		return false
	}
}

// Table is a database table.
type Table struct {
	Name        string
	Comment     sql.NullString
	Columns     []*Column
	ForeignKeys []*ForeignKey
}

// IsCompositePK reports whether the primary key spans several columns.
func (t *Table) IsCompositePK() bool {
	cnt := 0
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			cnt++
		}
	}
	return cnt >= 2
}

// PrimaryKeys returns the primary key columns in ordinal order.
func (t *Table) PrimaryKeys() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// Attributes returns the non key columns in ordinal order.
func (t *Table) Attributes() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if !c.IsPrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column finds a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// stripCommentSuffix drops anything after the first tab, which is where
// comments keep notes not meant for diagrams.
func stripCommentSuffix(s string) string {
	if tok := strings.SplitN(s, "\t", 2); len(tok) == 2 {
		return tok[0]
	}
	return s
}

// FindTable finds a table by name.
func FindTable(tbls []*Table, name string) (*Table, bool) {
	for _, tbl := range tbls {
		if tbl.Name == name {
			return tbl, true
		}
	}
	return nil, false
}

// resolve links the loaded foreign keys to their tables and columns.
func resolve(tbls []*Table) error {
	for _, tbl := range tbls {
		for _, fk := range tbl.ForeignKeys {
			source, ok := FindTable(tbls, fk.SourceTableName)
			if !ok {
				return errors.Errorf("%s not found", fk.SourceTableName)
			}
			target, ok := FindTable(tbls, fk.TargetTableName)
			if !ok {
				return errors.Errorf("%s not found", fk.TargetTableName)
			}
			sourceCol, ok := source.Column(fk.SourceColName)
			if !ok {
				return errors.Errorf("%s.%s not found", fk.SourceTableName, fk.SourceColName)
			}
			targetCol, ok := target.Column(fk.TargetColName)
			if !ok {
				return errors.Errorf("%s.%s not found", fk.TargetTableName, fk.TargetColName)
			}
			sourceCol.IsForeignKey = true
			fk.SourceTable, fk.SourceColumn = source, sourceCol
			fk.TargetTable, fk.TargetColumn = target, targetCol
			fk.IsSourceColPrimaryKey = sourceCol.IsPrimaryKey
			fk.IsTargetColPrimaryKey = targetCol.IsPrimaryKey
		}
	}
	return nil
}

func compile(names []string) ([]*regexp.Regexp, error) {
	var exps []*regexp.Regexp
	for _, n := range names {
		r, err := regexp.Compile(fmt.Sprintf(`^(?:%s)$`, n))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid table pattern %q", n)
		}
		exps = append(exps, r)
	}
	return exps, nil
}

func matchAny(v string, exps []*regexp.Regexp) bool {
	for _, e := range exps {
		if e.MatchString(v) {
			return true
		}
	}
	return false
}

// Filter keeps the tables whose name matches one of the patterns when
// include is true, or matches none of them when include is false. Foreign
// keys pointing at dropped tables are dropped too. Patterns are anchored
// regular expressions. Kept tables and their foreign keys are copies linked
// to each other; columns are shared with the input, which is not modified.
func Filter(tbls []*Table, patterns []string, include bool) ([]*Table, error) {
	exps, err := compile(patterns)
	if err != nil {
		return nil, err
	}

	var kept []*Table
	copies := make(map[string]*Table)
	for _, tbl := range tbls {
		if matchAny(tbl.Name, exps) != include {
			continue
		}
		cp := *tbl
		kept = append(kept, &cp)
		copies[cp.Name] = &cp
	}

	for _, cp := range kept {
		fks := cp.ForeignKeys
		cp.ForeignKeys = nil
		for _, fk := range fks {
			target, ok := copies[fk.TargetTableName]
			if !ok {
				continue
			}
			fkc := *fk
			fkc.SourceTable, fkc.TargetTable = cp, target
			cp.ForeignKeys = append(cp.ForeignKeys, &fkc)
		}
	}
	return kept, nil
}

// InferForeignKeys guesses relations by naming convention when no table
// declares a foreign key: a non key column "<table>_<pk>" (or a column named
// like a primary key that already contains the table name) references that
// primary key. It reports whether any key was added.
func InferForeignKeys(tbls []*Table) bool {
	for _, tbl := range tbls {
		if len(tbl.ForeignKeys) > 0 {
			return false
		}
	}

	added := false
	for _, target := range tbls {
		for _, source := range tbls {
			if source == target {
				continue
			}
			for _, col := range source.Attributes() {
				pk, ok := target.referencedBy(col.Name)
				if !ok {
					continue
				}
				col.IsForeignKey = true
				source.ForeignKeys = append(source.ForeignKeys, &ForeignKey{
					ConstraintName:        fmt.Sprintf("%s_%s_fkey", source.Name, col.Name),
					SourceTableName:       source.Name,
					SourceColName:         col.Name,
					SourceTable:           source,
					SourceColumn:          col,
					TargetTableName:       target.Name,
					TargetColName:         pk.Name,
					IsTargetColPrimaryKey: true,
					TargetTable:           target,
					TargetColumn:          pk,
				})
				added = true
			}
		}
	}
	return added
}

func (t *Table) referencedBy(colName string) (*Column, bool) {
	for _, pk := range t.PrimaryKeys() {
		if strings.Contains(pk.Name, t.Name) {
			if colName == pk.Name {
				return pk, true
			}
		} else if colName == t.Name+"_"+pk.Name {
			return pk, true
		}
	}
	return nil, false
}

// Open connects to a database and returns the loader for driver, which is
// "mysql" or "postgres". schemaName only applies to postgres.
func Open(driver, connStr, schemaName string) (Loader, *sql.DB, error) {
	switch driver {
	case "mysql", "postgres":
	default:
		return nil, nil, errors.Errorf("unknown driver %q", driver)
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if driver == "mysql" {
		return NewMySQL(db), db, nil
	}
	return NewPostgres(db, schemaName), db, nil
}
