package schema

import (
	"context"
	"database/sql"
)

const _PGSQLTableDefSQL = `
SELECT c.relname, obj_description(c.oid, 'pg_class')
FROM pg_class c
JOIN ONLY pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
AND c.relkind IN ('r', 'p')
AND NOT COALESCE((row_to_json(c)->>'relispartition')::boolean, false)
ORDER BY c.relname
`

const _PGSQLColumnDefSQL = `
SELECT
    a.attnum,
    a.attname,
    col_description(a.attrelid, a.attnum),
    format_type(a.atttypid, a.atttypmod),
    a.attnotnull,
    EXISTS (
        SELECT 1 FROM pg_constraint ct
        WHERE ct.conrelid = c.oid AND ct.contype = 'p' AND a.attnum = ANY(ct.conkey)
    ),
    CASE WHEN a.atttypid = ANY ('{int,int8,int2}'::regtype[])
      AND pg_get_serial_sequence(quote_ident(n.nspname) || '.' || quote_ident(c.relname), a.attname) IS NOT NULL
    THEN CASE a.atttypid
            WHEN 'int'::regtype  THEN 'serial'
            WHEN 'int8'::regtype THEN 'bigserial'
            WHEN 'int2'::regtype THEN 'smallserial'
         END
    ELSE format_type(a.atttypid, a.atttypmod)
    END
FROM pg_attribute a
JOIN ONLY pg_class c ON c.oid = a.attrelid
JOIN ONLY pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = $1
AND c.relname = $2
AND a.attnum > 0
AND NOT a.attisdropped
ORDER BY a.attnum
`

const _PGSQLFKDefSQL = `
SELECT con.conname, src.attname, tcl.relname, tgt.attname
FROM pg_constraint con
JOIN pg_class cl ON cl.oid = con.conrelid
JOIN pg_namespace ns ON ns.oid = cl.relnamespace
JOIN pg_class tcl ON tcl.oid = con.confrelid
CROSS JOIN LATERAL unnest(con.conkey, con.confkey) AS k(src_num, tgt_num)
JOIN pg_attribute src ON src.attrelid = con.conrelid AND src.attnum = k.src_num
JOIN pg_attribute tgt ON tgt.attrelid = con.confrelid AND tgt.attnum = k.tgt_num
WHERE ns.nspname = $1
AND cl.relname = $2
AND con.contype = 'f'
AND COALESCE((row_to_json(con)->>'conparentid')::oid, 0) = 0
ORDER BY con.conname
`

type postgres struct {
	db     Queryer
	schema string
}

// NewPostgres returns a Loader for the tables of schema, "public" when empty.
func NewPostgres(db Queryer, schema string) Loader {
	if schema == "" {
		schema = "public"
	}
	return &postgres{db: db, schema: schema}
}

func (p *postgres) LoadTables(ctx context.Context) ([]*Table, error) {
	return load(ctx, p)
}

func (p *postgres) tables(ctx context.Context) ([]*Table, error) {
	var tbls []*Table
	err := scanAll(ctx, p.db, "table", func(rows *sql.Rows) error {
		t := &Table{}
		if err := rows.Scan(&t.Name, &t.Comment); err != nil {
			return err
		}
		t.Comment.String = stripCommentSuffix(t.Comment.String)
		tbls = append(tbls, t)
		return nil
	}, _PGSQLTableDefSQL, p.schema)
	return tbls, err
}

func (p *postgres) columns(ctx context.Context, table string) ([]*Column, error) {
	var cols []*Column
	err := scanAll(ctx, p.db, "column", func(rows *sql.Rows) error {
		var c Column
		if err := rows.Scan(&c.FieldOrdinal, &c.Name, &c.Comment, &c.DataType, &c.NotNull, &c.IsPrimaryKey, &c.DDLType); err != nil {
			return err
		}
		c.Comment.String = stripCommentSuffix(c.Comment.String)
		cols = append(cols, &c)
		return nil
	}, _PGSQLColumnDefSQL, p.schema, table)
	return cols, err
}

func (p *postgres) foreignKeys(ctx context.Context, table string) ([]*ForeignKey, error) {
	var fks []*ForeignKey
	err := scanAll(ctx, p.db, "fk", func(rows *sql.Rows) error {
		fk := &ForeignKey{SourceTableName: table}
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceColName, &fk.TargetTableName, &fk.TargetColName); err != nil {
			return err
		}
		fks = append(fks, fk)
		return nil
	}, _PGSQLFKDefSQL, p.schema, table)
	return fks, err
}
