package catalog

import (
	"bytes"
	"testing"

	"jottdb/internal/types"
)

func tableFixture() *types.TableSchema {
	t := types.NewTableSchema("Widgets")
	t.HeadPageID = 3
	t.AddAttribute(types.NewAttributeSchema("id", types.NewDataType(types.INTEGER), true, true, types.NullValue(), false))
	t.AddAttribute(types.NewAttributeSchema("name", types.NewBoundedDataType(types.VARCHAR, 20), false, false, types.NullValue(), false))
	t.AddAttribute(types.NewAttributeSchema("age", types.NewDataType(types.INTEGER), false, true, types.IntValue(0), true))
	return t
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New(128, true)
	c.SetFreePageListHead(5)
	c.SetLastPageID(12)
	c.AddTable(tableFixture())

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.PageSize() != c.PageSize() || loaded.Indexing() != c.Indexing() {
		t.Fatalf("page_size/indexing mismatch: got (%d,%v) want (%d,%v)", loaded.PageSize(), loaded.Indexing(), c.PageSize(), c.Indexing())
	}
	if loaded.FreePageListHead() != 5 || loaded.LastPageID() != 12 {
		t.Fatalf("free list head/last page id mismatch: got (%d,%d)", loaded.FreePageListHead(), loaded.LastPageID())
	}

	table, ok := loaded.GetTable("widgets")
	if !ok {
		t.Fatalf("expected table 'widgets' to round-trip (case-insensitive lookup)")
	}
	if table.HeadPageID != 3 || len(table.Attributes) != 3 {
		t.Fatalf("table fields did not round-trip: head=%d attrs=%d", table.HeadPageID, len(table.Attributes))
	}

	age, ok := table.Attribute("age")
	if !ok || !age.HasDefault || age.Default.Int != 0 {
		t.Fatalf("expected attribute 'age' to round-trip its default value, got %+v", age)
	}
}

func TestAddTableRejectsDuplicateName(t *testing.T) {
	c := New(128, false)
	c.AddTable(types.NewTableSchema("t"))

	if c.AddTable(types.NewTableSchema("T")) {
		t.Fatalf("expected AddTable to reject a case-insensitive duplicate name")
	}
}

func TestDropTableReportsMissing(t *testing.T) {
	c := New(128, false)
	if c.DropTable("ghost") {
		t.Fatalf("expected DropTable to return false for a table that was never added")
	}
}

func TestFreshCatalogDefaults(t *testing.T) {
	c := New(64, false)
	if c.FreePageListHead() != -1 || c.LastPageID() != -1 {
		t.Fatalf("expected a fresh catalog to default free_page_list_head=-1, last_page_id=-1, got (%d,%d)", c.FreePageListHead(), c.LastPageID())
	}
}
