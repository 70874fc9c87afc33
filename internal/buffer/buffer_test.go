package buffer

import (
	"testing"

	"github.com/dsnet/golib/memfile"

	"jottdb/internal/dblog"
	"jottdb/internal/page"
)

// fakeCatalog is the minimal CatalogLink a test needs, standing in for
// internal/catalog.Catalog without pulling in its persistence code.
type fakeCatalog struct {
	freeHead   int32
	lastPageID int32
}

func (c *fakeCatalog) FreePageListHead() int32     { return c.freeHead }
func (c *fakeCatalog) SetFreePageListHead(id int32) { c.freeHead = id }
func (c *fakeCatalog) LastPageID() int32           { return c.lastPageID }
func (c *fakeCatalog) SetLastPageID(id int32)      { c.lastPageID = id }

func newTestBuffer(capacity int) (*Buffer, *fakeCatalog) {
	cat := &fakeCatalog{freeHead: page.NoNextPage, lastPageID: 0}
	f := memfile.New(make([]byte, 0))
	return New(f, 128, capacity, cat, dblog.New()), cat
}

func TestCreateNewPageAppendsWhenFreeListEmpty(t *testing.T) {
	b, cat := newTestBuffer(4)

	p, err := b.CreateNewPage()
	if err != nil {
		t.Fatalf("CreateNewPage failed: %v", err)
	}
	if p.PageID() != 1 {
		t.Fatalf("expected first allocated page to have id 1, got %d", p.PageID())
	}
	if cat.LastPageID() != 1 {
		t.Fatalf("expected catalog last_page_id to advance to 1, got %d", cat.LastPageID())
	}
}

func TestCreateNewPageReusesFreeListWithoutExtendingFile(t *testing.T) {
	b, cat := newTestBuffer(4)

	first, _ := b.CreateNewPage()
	first.AddRecord([]byte("data"))
	// Return the page to the free list the way StorageManager.freePage does.
	first.CleanData()
	first.SetDirty()
	cat.SetFreePageListHead(first.PageID())

	lastBefore := cat.LastPageID()
	reused, err := b.CreateNewPage()
	if err != nil {
		t.Fatalf("CreateNewPage failed: %v", err)
	}
	if reused.PageID() != first.PageID() {
		t.Fatalf("expected reused page id %d, got %d", first.PageID(), reused.PageID())
	}
	if cat.LastPageID() != lastBefore {
		t.Fatalf("reusing a free page must not extend the heap file: before=%d after=%d", lastBefore, cat.LastPageID())
	}
	if cat.FreePageListHead() != page.NoNextPage {
		t.Fatalf("expected free list to be empty after reusing its only entry")
	}
}

func TestEvictionWritesThroughDirtyPages(t *testing.T) {
	b, _ := newTestBuffer(1)

	p1, _ := b.CreateNewPage()
	p1.AddRecord([]byte("hello"))

	// Capacity is 1; creating a second page must evict p1, writing it
	// through since it's dirty.
	p2, _ := b.CreateNewPage()
	if p2.PageID() == p1.PageID() {
		t.Fatalf("expected a distinct second page id")
	}

	reloaded, err := b.GetPage(p1.PageID())
	if err != nil {
		t.Fatalf("GetPage on evicted page failed: %v", err)
	}
	if reloaded.NumRecords() != 1 {
		t.Fatalf("expected the written-through page to round-trip its record, got %d records", reloaded.NumRecords())
	}
}

func TestGetPagePastLastPageIDIsFatal(t *testing.T) {
	b, _ := newTestBuffer(4)

	if _, err := b.GetPage(99); err == nil {
		t.Fatalf("expected GetPage past the last allocated page to fail")
	}
}

func TestEvictAllClearsResidencyAndClearsDirty(t *testing.T) {
	b, _ := newTestBuffer(4)

	p, _ := b.CreateNewPage()
	p.AddRecord([]byte("x"))

	if err := b.EvictAll(); err != nil {
		t.Fatalf("EvictAll failed: %v", err)
	}
	if len(b.resident) != 0 {
		t.Fatalf("expected residency to be empty after EvictAll, got %d", len(b.resident))
	}

	reloaded, err := b.GetPage(p.PageID())
	if err != nil {
		t.Fatalf("GetPage after EvictAll failed: %v", err)
	}
	if reloaded.IsDirty() {
		t.Fatalf("expected dirty flag to be false after write-through")
	}
}
