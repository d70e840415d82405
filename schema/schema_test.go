package schema

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shop returns customers <- orders <- order_items with no declared keys.
func shop() []*Table {
	return []*Table{
		{
			Name:    "customers",
			Comment: sql.NullString{String: "buyers", Valid: true},
			Columns: []*Column{
				{FieldOrdinal: 1, Name: "id", DDLType: "bigserial", NotNull: true, IsPrimaryKey: true},
				{FieldOrdinal: 2, Name: "email", DDLType: "text", NotNull: true},
			},
		},
		{
			Name: "orders",
			Columns: []*Column{
				{FieldOrdinal: 1, Name: "id", DDLType: "bigserial", NotNull: true, IsPrimaryKey: true},
				{FieldOrdinal: 2, Name: "customers_id", DDLType: "bigint", NotNull: true},
				{FieldOrdinal: 3, Name: "note", DDLType: "text", Comment: sql.NullString{String: "free text", Valid: true}},
			},
		},
		{
			Name: "order_items",
			Columns: []*Column{
				{FieldOrdinal: 1, Name: "orders_id", DDLType: "bigint", NotNull: true, IsPrimaryKey: true},
				{FieldOrdinal: 2, Name: "line", DDLType: "int", NotNull: true, IsPrimaryKey: true},
				{FieldOrdinal: 3, Name: "sku", DDLType: "text", NotNull: true},
			},
		},
	}
}

func TestInferForeignKeys(t *testing.T) {
	tbls := shop()
	require.True(t, InferForeignKeys(tbls))

	orders, _ := FindTable(tbls, "orders")
	require.Len(t, orders.ForeignKeys, 1)
	fk := orders.ForeignKeys[0]
	assert.Equal(t, "orders", fk.SourceTableName)
	assert.Equal(t, "customers_id", fk.SourceColName)
	assert.Equal(t, "customers", fk.TargetTableName)
	assert.Equal(t, "id", fk.TargetColName)
	assert.True(t, fk.SourceColumn.IsForeignKey)
	assert.False(t, fk.IsOneToOne())

	// primary key columns are never inferred as references
	items, _ := FindTable(tbls, "order_items")
	assert.Empty(t, items.ForeignKeys)

	// a declared key anywhere disables inference
	assert.False(t, InferForeignKeys(tbls))
}

func TestIsOneToOne(t *testing.T) {
	users := &Table{Name: "users", Columns: []*Column{{Name: "id", IsPrimaryKey: true}}}
	profiles := &Table{Name: "profiles", Columns: []*Column{{Name: "user_id", IsPrimaryKey: true}}}
	fk := &ForeignKey{
		SourceTableName: "profiles", SourceColName: "user_id", SourceTable: profiles,
		TargetTableName: "users", TargetColName: "id", TargetTable: users,
	}
	profiles.ForeignKeys = []*ForeignKey{fk}
	require.NoError(t, resolve([]*Table{users, profiles}))
	assert.True(t, fk.IsOneToOne())

	a := &Table{Name: "a", Columns: []*Column{{Name: "x", IsPrimaryKey: true}, {Name: "y", IsPrimaryKey: true}}}
	b := &Table{Name: "b", Columns: []*Column{{Name: "x", IsPrimaryKey: true}, {Name: "y", IsPrimaryKey: true}, {Name: "z"}}}
	b.ForeignKeys = []*ForeignKey{
		{ConstraintName: "b_a", SourceTableName: "b", SourceColName: "x", TargetTableName: "a", TargetColName: "x"},
		{ConstraintName: "b_a", SourceTableName: "b", SourceColName: "y", TargetTableName: "a", TargetColName: "y"},
	}
	require.NoError(t, resolve([]*Table{a, b}))
	assert.True(t, b.ForeignKeys[0].IsOneToOne())

	b.ForeignKeys[1].IsSourceColPrimaryKey = false
	assert.False(t, b.ForeignKeys[0].IsOneToOne())

	assert.False(t, (&ForeignKey{}).IsOneToOne())
}

func TestResolveMissing(t *testing.T) {
	tbls := []*Table{{
		Name:        "orders",
		Columns:     []*Column{{Name: "customer_id"}},
		ForeignKeys: []*ForeignKey{{SourceTableName: "orders", SourceColName: "customer_id", TargetTableName: "customers", TargetColName: "id"}},
	}}
	err := resolve(tbls)
	assert.EqualError(t, err, "customers not found")
}

func TestFilter(t *testing.T) {
	tbls := shop()
	InferForeignKeys(tbls)

	kept, err := Filter(tbls, []string{"order.*"}, true)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "orders", kept[0].Name)
	assert.Equal(t, "order_items", kept[1].Name)
	assert.Empty(t, kept[0].ForeignKeys, "customers is filtered out")

	// input untouched
	assert.Len(t, tbls[1].ForeignKeys, 1)

	kept, err = Filter(tbls, []string{"order_items"}, false)
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "customers", kept[0].Name)
	assert.Len(t, kept[1].ForeignKeys, 1)

	_, err = Filter(tbls, []string{"("}, true)
	assert.Error(t, err)
}

func TestFilterLinksCopies(t *testing.T) {
	a := &Table{Name: "a", Columns: []*Column{{Name: "x", IsPrimaryKey: true}, {Name: "y", IsPrimaryKey: true}}}
	b := &Table{Name: "b", Columns: []*Column{{Name: "x", IsPrimaryKey: true}, {Name: "y", IsPrimaryKey: true}}}
	b.ForeignKeys = []*ForeignKey{
		{ConstraintName: "b_a", SourceTableName: "b", SourceColName: "x", TargetTableName: "a", TargetColName: "x"},
		{ConstraintName: "b_a", SourceTableName: "b", SourceColName: "y", TargetTableName: "a", TargetColName: "y"},
	}
	c := &Table{Name: "c", Columns: []*Column{{Name: "id", IsPrimaryKey: true}}}
	tbls := []*Table{a, b, c}
	require.NoError(t, resolve(tbls))

	kept, err := Filter(tbls, []string{"c"}, false)
	require.NoError(t, err)
	require.Len(t, kept, 2)

	fk := kept[1].ForeignKeys[0]
	assert.Same(t, kept[1], fk.SourceTable)
	assert.Same(t, kept[0], fk.TargetTable)
	assert.NotSame(t, b.ForeignKeys[0], fk)
	assert.Same(t, b, b.ForeignKeys[0].SourceTable)

	// one to one is judged on the filtered copy's keys, not the input's
	b.ForeignKeys[1].IsSourceColPrimaryKey = false
	assert.False(t, b.ForeignKeys[0].IsOneToOne())
	assert.True(t, fk.IsOneToOne())
}

func TestSource(t *testing.T) {
	tbls := shop()
	InferForeignKeys(tbls)

	src, err := Source(tbls, "Shop")
	require.NoError(t, err)

	assert.Equal(t, `@startuml
title Shop
hide circle
skinparam linetype ortho
entity "customers" as customers <<buyers>> {
  * id : bigserial
  --
  * email : text
}
entity "orders" as orders {
  * id : bigserial
  --
  * customers_id : bigint <<FK>>
  note : text /' free text '/
}
entity "order_items" as order_items {
  * orders_id : bigint
  * line : int
  --
  * sku : text
}
customers ||--o{ orders : orders_customers_id_fkey
@enduml
`, string(src))
}

func TestSourceNoTitle(t *testing.T) {
	src, err := Source(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "@startuml\nhide circle\nskinparam linetype ortho\n@enduml\n", string(src))
}

func TestStripCommentSuffix(t *testing.T) {
	assert.Equal(t, "user id", stripCommentSuffix("user id\tinternal"))
	assert.Equal(t, "user id", stripCommentSuffix("user id"))
}
