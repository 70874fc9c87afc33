package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/golib/memfile"

	"jottdb/internal/buffer"
	"jottdb/internal/catalog"
	"jottdb/internal/dblog"
	"jottdb/internal/types"
)

func newTestManager(t *testing.T, pageSize int32, capacity int) *Manager {
	t.Helper()
	cat := catalog.New(pageSize, false)
	f := memfile.New(make([]byte, 0))
	buf := buffer.New(f, pageSize, capacity, cat, dblog.New())
	return New(buf, cat, filepath.Join(t.TempDir(), "catalog"), dblog.New())
}

func widgetSchema() *types.TableSchema {
	s := types.NewTableSchema("widgets")
	s.AddAttribute(types.NewAttributeSchema("id", types.NewDataType(types.INTEGER), true, true, types.NullValue(), false))
	s.AddAttribute(types.NewAttributeSchema("name", types.NewBoundedDataType(types.VARCHAR, 16), false, false, types.NullValue(), false))
	return s
}

func TestEmptyToOneRow(t *testing.T) {
	m := newTestManager(t, 4096, 8)
	schema := widgetSchema()

	ok, err := m.CreateTable(schema)
	if err != nil || !ok {
		t.Fatalf("CreateTable failed: ok=%v err=%v", ok, err)
	}

	inserted, err := m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("a")})
	if err != nil || !inserted {
		t.Fatalf("Insert failed: ok=%v err=%v", inserted, err)
	}

	rows, err := m.SelectAll(schema)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 1 || rows[0][0].Int != 1 || rows[0][1].Str != "a" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestPageSplitOnOverflow(t *testing.T) {
	m := newTestManager(t, 128, 8)
	schema := types.NewTableSchema("blobs")
	schema.AddAttribute(types.NewAttributeSchema("id", types.NewDataType(types.INTEGER), true, true, types.NullValue(), false))
	schema.AddAttribute(types.NewAttributeSchema("blob", types.NewBoundedDataType(types.CHAR, 40), false, false, types.NullValue(), false))

	if ok, err := m.CreateTable(schema); err != nil || !ok {
		t.Fatalf("CreateTable failed: ok=%v err=%v", ok, err)
	}
	originalHead := schema.HeadPageID

	for i := int32(0); i < 4; i++ {
		ok, err := m.Insert(schema, []types.Value{types.IntValue(i), types.StringValue("x")})
		if err != nil || !ok {
			t.Fatalf("Insert %d failed: ok=%v err=%v", i, ok, err)
		}
	}

	rows, err := m.SelectAll(schema)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row[0].Int != int32(i) {
			t.Fatalf("expected insertion order preserved, row %d has id %d", i, row[0].Int)
		}
	}

	if m.catalog.FreePageListHead() == -1 {
		t.Fatalf("expected the original tail page to have been freed onto the free list")
	}
	_ = originalHead
}

func TestPrimaryKeyConflictRejected(t *testing.T) {
	m := newTestManager(t, 4096, 8)
	schema := widgetSchema()
	m.CreateTable(schema)

	ok, err := m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("a")})
	if err != nil || !ok {
		t.Fatalf("first insert failed: ok=%v err=%v", ok, err)
	}

	ok, err = m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("b")})
	if ok {
		t.Fatalf("expected a duplicate primary key to be rejected")
	}
	if err == nil {
		t.Fatalf("expected an error describing the primary key violation")
	}

	rows, _ := m.SelectAll(schema)
	if len(rows) != 1 || rows[0][1].Str != "a" {
		t.Fatalf("expected only the first row to survive, got %+v", rows)
	}
}

func TestAlterAddColumnWithDefault(t *testing.T) {
	m := newTestManager(t, 4096, 8)
	schema := widgetSchema()
	m.CreateTable(schema)
	m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("a")})

	newSchema := schema.Clone()
	newSchema.AddAttribute(types.NewAttributeSchema("age", types.NewDataType(types.INTEGER), false, true, types.IntValue(0), true))

	ok, err := m.AlterTable(schema, newSchema)
	if err != nil || !ok {
		t.Fatalf("AlterTable failed: ok=%v err=%v", ok, err)
	}
	if newSchema.HeadPageID == schema.HeadPageID {
		t.Fatalf("expected ALTER to allocate a new head page")
	}

	rows, err := m.SelectAll(newSchema)
	if err != nil {
		t.Fatalf("SelectAll after ALTER failed: %v", err)
	}
	if len(rows) != 1 || rows[0][2].Int != 0 {
		t.Fatalf("expected existing row extended with age=0, got %+v", rows)
	}
}

func TestAlterDropColumn(t *testing.T) {
	m := newTestManager(t, 4096, 8)
	schema := widgetSchema()
	m.CreateTable(schema)
	m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("a")})

	newSchema := types.NewTableSchema(schema.Name)
	newSchema.AddAttribute(types.NewAttributeSchema("id", types.NewDataType(types.INTEGER), true, true, types.NullValue(), false))

	ok, err := m.AlterTable(schema, newSchema)
	if err != nil || !ok {
		t.Fatalf("AlterTable failed: ok=%v err=%v", ok, err)
	}

	rows, err := m.SelectAll(newSchema)
	if err != nil {
		t.Fatalf("SelectAll after ALTER failed: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0].Int != 1 {
		t.Fatalf("expected dropped column omitted from scan, got %+v", rows)
	}
}

func TestRestartPreservesCatalogPageSize(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog")

	cat := catalog.New(128, false)
	f := memfile.New(make([]byte, 0))
	buf := buffer.New(f, 128, 8, cat, dblog.New())
	m := New(buf, cat, catalogPath, dblog.New())

	schema := widgetSchema()
	m.CreateTable(schema)
	m.Insert(schema, []types.Value{types.IntValue(1), types.StringValue("a")})
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	f2, err := os.Open(catalogPath)
	if err != nil {
		t.Fatalf("failed to reopen catalog file: %v", err)
	}
	defer f2.Close()
	reloaded, err := catalog.Load(f2)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reloaded.PageSize() != 128 {
		t.Fatalf("expected stored page_size 128 to survive restart, got %d", reloaded.PageSize())
	}
}
