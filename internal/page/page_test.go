package page

import "testing"

func TestAddRecordFitsAndReports(t *testing.T) {
	p := New(1, 128)

	if !p.AddRecord([]byte("hello")) {
		t.Fatalf("expected AddRecord to succeed on an empty page")
	}
	if p.NumRecords() != 1 {
		t.Fatalf("expected 1 record, got %d", p.NumRecords())
	}
	if !p.IsDirty() {
		t.Fatalf("expected page to be dirty after AddRecord")
	}
}

func TestAddRecordRefusesWhenFull(t *testing.T) {
	p := New(1, 64)

	big := make([]byte, 64)
	if p.AddRecord(big) {
		t.Fatalf("expected AddRecord to refuse a record that can't fit header+slot+payload")
	}
	if p.NumRecords() != 0 {
		t.Fatalf("expected no mutation on refusal, got %d records", p.NumRecords())
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	p := New(7, 128)
	p.AddRecord([]byte("abc"))
	p.AddRecord([]byte("defg"))
	p.SetNextPage(9)

	// The buffer clears the dirty flag before every write-through.
	p.CleanDirty()
	data := p.Serialize()
	if int32(len(data)) != p.PageSize() {
		t.Fatalf("serialized page must be exactly page_size bytes, got %d", len(data))
	}

	back, err := Deserialize(data, 128)
	if err != nil {
		t.Fatalf("deserialize failed: %v", err)
	}

	if back.PageID() != p.PageID() || back.NextPage() != p.NextPage() {
		t.Fatalf("round-trip mismatch on id/next: got id=%d next=%d", back.PageID(), back.NextPage())
	}
	if back.NumRecords() != p.NumRecords() {
		t.Fatalf("round-trip mismatch on record count: got %d want %d", back.NumRecords(), p.NumRecords())
	}
	for i, rec := range back.Records() {
		if string(rec) != string(p.Records()[i]) {
			t.Fatalf("round-trip mismatch on record %d: got %q want %q", i, rec, p.Records()[i])
		}
	}
	if back.IsDirty() {
		t.Fatalf("clean_dirty must be called before serialize; deserialized dirty flag should be false")
	}
}

func TestRemoveRecordCompactsAndFreesSpace(t *testing.T) {
	p := New(1, 128)
	p.AddRecord([]byte("one"))
	p.AddRecord([]byte("two"))
	before := p.FreeSpace()

	if !p.RemoveRecord(1) {
		t.Fatalf("expected RemoveRecord to succeed on a valid index")
	}
	if p.NumRecords() != 1 {
		t.Fatalf("expected 1 record left, got %d", p.NumRecords())
	}
	if p.FreeSpace() <= before {
		t.Fatalf("expected free space to grow after remove: before=%d after=%d", before, p.FreeSpace())
	}
}

func TestRemoveRecordOutOfRange(t *testing.T) {
	p := New(1, 128)
	if p.RemoveRecord(0) {
		t.Fatalf("expected RemoveRecord to refuse an out-of-range index on an empty page")
	}
}

func TestSplitPreservesOrderAcrossHalves(t *testing.T) {
	src := New(1, 256)
	src.AddRecord([]byte("r0"))
	src.AddRecord([]byte("r1"))
	src.AddRecord([]byte("r2"))
	src.AddRecord([]byte("r3"))

	a := New(2, 256)
	b := New(3, 256)
	src.Split(a, b)

	if a.NumRecords() != 2 || b.NumRecords() != 2 {
		t.Fatalf("expected an even split of 4 records, got a=%d b=%d", a.NumRecords(), b.NumRecords())
	}
	if string(a.Records()[0]) != "r0" || string(a.Records()[1]) != "r1" {
		t.Fatalf("first half out of order: %q", a.Records())
	}
	if string(b.Records()[0]) != "r2" || string(b.Records()[1]) != "r3" {
		t.Fatalf("second half out of order: %q", b.Records())
	}
}

func TestCleanDataPreservesID(t *testing.T) {
	p := New(42, 128)
	p.AddRecord([]byte("x"))
	p.CleanData()

	if p.PageID() != 42 {
		t.Fatalf("CleanData must preserve page id, got %d", p.PageID())
	}
	if p.NumRecords() != 0 {
		t.Fatalf("expected CleanData to clear records")
	}
	if p.NextPage() != NoNextPage {
		t.Fatalf("expected CleanData to reset next_page_id to the sentinel")
	}
}
