package schema

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type dialect interface {
	tables(ctx context.Context) ([]*Table, error)
	columns(ctx context.Context, table string) ([]*Column, error)
	foreignKeys(ctx context.Context, table string) ([]*ForeignKey, error)
}

func load(ctx context.Context, d dialect) ([]*Table, error) {
	tbls, err := d.tables(ctx)
	if err != nil {
		return nil, err
	}
	for _, tbl := range tbls {
		cols, err := d.columns(ctx, tbl.Name)
		if err != nil {
			return nil, err
		}
		tbl.Columns = cols
	}
	for _, tbl := range tbls {
		fks, err := d.foreignKeys(ctx, tbl.Name)
		if err != nil {
			return nil, err
		}
		tbl.ForeignKeys = fks
	}
	if err := resolve(tbls); err != nil {
		return nil, err
	}
	return tbls, nil
}

// scanAll runs query and calls scan for every row.
func scanAll(ctx context.Context, db Queryer, what string, scan func(*sql.Rows) error, query string, args ...interface{}) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s def", what)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Wrapf(err, "failed to scan %s def", what)
		}
	}
	return errors.Wrapf(rows.Err(), "failed to load %s def", what)
}
