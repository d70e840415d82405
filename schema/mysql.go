package schema

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const _MySQLCurrentDatabaseSQL = `SELECT DATABASE()`

const _MySQLTableDefSQL = `
SELECT TABLE_NAME, TABLE_COMMENT
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME
`

const _MySQLColumnDefSQL = `
SELECT ORDINAL_POSITION, COLUMN_NAME, COLUMN_COMMENT, DATA_TYPE, COLUMN_TYPE, COLUMN_KEY, IS_NULLABLE
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION
`

const _MySQLFKDefSQL = `
SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND REFERENCED_TABLE_NAME IS NOT NULL
ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION
`

type mysql struct {
	db       Queryer
	database string
}

// NewMySQL returns a Loader for the database selected by the connection.
func NewMySQL(db Queryer) Loader {
	return &mysql{db: db}
}

func (m *mysql) LoadTables(ctx context.Context) ([]*Table, error) {
	var name sql.NullString
	if err := m.db.QueryRowContext(ctx, _MySQLCurrentDatabaseSQL).Scan(&name); err != nil {
		return nil, errors.Wrap(err, "failed to load current database")
	}
	if !name.Valid || name.String == "" {
		return nil, errors.New("no database selected")
	}
	m.database = name.String
	return load(ctx, m)
}

func (m *mysql) tables(ctx context.Context) ([]*Table, error) {
	var tbls []*Table
	err := scanAll(ctx, m.db, "table", func(rows *sql.Rows) error {
		t := &Table{}
		if err := rows.Scan(&t.Name, &t.Comment); err != nil {
			return err
		}
		t.Comment.String = stripCommentSuffix(t.Comment.String)
		tbls = append(tbls, t)
		return nil
	}, _MySQLTableDefSQL, m.database)
	return tbls, err
}

func (m *mysql) columns(ctx context.Context, table string) ([]*Column, error) {
	var cols []*Column
	err := scanAll(ctx, m.db, "column", func(rows *sql.Rows) error {
		var (
			c        Column
			key      string
			nullable string
		)
		if err := rows.Scan(&c.FieldOrdinal, &c.Name, &c.Comment, &c.DataType, &c.DDLType, &key, &nullable); err != nil {
			return err
		}
		c.IsPrimaryKey = key == "PRI"
		c.NotNull = nullable == "NO"
		c.Comment.String = stripCommentSuffix(c.Comment.String)
		cols = append(cols, &c)
		return nil
	}, _MySQLColumnDefSQL, m.database, table)
	return cols, err
}

func (m *mysql) foreignKeys(ctx context.Context, table string) ([]*ForeignKey, error) {
	var fks []*ForeignKey
	err := scanAll(ctx, m.db, "fk", func(rows *sql.Rows) error {
		fk := &ForeignKey{SourceTableName: table}
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceColName, &fk.TargetTableName, &fk.TargetColName); err != nil {
			return err
		}
		fks = append(fks, fk)
		return nil
	}, _MySQLFKDefSQL, m.database, table)
	return fks, err
}
