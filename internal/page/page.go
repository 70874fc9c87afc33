// Package page implements the slotted binary page format: a header, a
// slot directory growing from the header end, and a record area
// growing backward from the end of the page. This is the in-memory
// analogue of StorageManager/Page.java, laid out per the engine's
// fixed on-disk format rather than the original's ad hoc ByteBuffer
// packing.
package page

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

const (
	// HeaderSize is the fixed 29-byte page header: four int32 fields,
	// next_page_id, an int64 timestamp, and a one-byte dirty flag.
	HeaderSize = 4 + 4 + 4 + 4 + 4 + 8 + 1
	// SlotEntrySize is the width of one (offset, length) slot entry.
	SlotEntrySize = 8
	// NoNextPage is the sentinel stored in next_page_id for a chain tail
	// or an empty free-page list.
	NoNextPage int32 = -1
)

// Slot is one entry of the slot directory: the byte offset and length
// of a record in the page's record area.
type Slot struct {
	Offset int32
	Length int32
}

// Page is the in-memory representation of one slotted page. Records
// and Slots are parallel slices in insertion order.
type Page struct {
	id                  int32
	pageSize            int32
	freeSpaceEnd        int32
	nextPageID          int32
	lastAccessTimestamp int64
	dirty               bool

	slots   []Slot
	records [][]byte
}

// lruClock is a monotonic counter standing in for the source's
// wall-clock milliseconds (design note 9): ties are impossible, unlike
// two touches landing in the same millisecond.
var lruClock int64

// New constructs an empty page with the given id and page size. The
// page starts clean; callers that intend to keep it (rather than
// immediately overwrite it via Deserialize) should mark it dirty
// themselves, matching create_new_page's contract.
func New(id, pageSize int32) *Page {
	p := &Page{id: id, pageSize: pageSize, freeSpaceEnd: pageSize, nextPageID: NoNextPage}
	p.Touch()
	return p
}

// Touch assigns a fresh monotonic timestamp, the buffer's LRU key.
func (p *Page) Touch() {
	p.lastAccessTimestamp = atomic.AddInt64(&lruClock, 1)
}

func (p *Page) PageID() int32                 { return p.id }
func (p *Page) PageSize() int32                { return p.pageSize }
func (p *Page) NextPage() int32                { return p.nextPageID }
func (p *Page) LastAccessTimestamp() int64     { return p.lastAccessTimestamp }
func (p *Page) IsDirty() bool                  { return p.dirty }
func (p *Page) SetDirty()                      { p.dirty = true }
func (p *Page) CleanDirty()                    { p.dirty = false }
func (p *Page) NumRecords() int                { return len(p.slots) }
func (p *Page) Records() [][]byte              { return p.records }

// SetNextPage rewires the chain/free-list link and marks the page
// dirty, as Page.setNextPage does.
func (p *Page) SetNextPage(next int32) {
	p.nextPageID = next
	p.SetDirty()
}

// FreeSpace is the number of bytes available for a new record's
// payload plus its slot entry.
func (p *Page) FreeSpace() int32 {
	return p.freeSpaceEnd - int32(HeaderSize) - int32(len(p.slots))*SlotEntrySize
}

// AddRecord appends bytes as a new record if there is room for both
// the payload and its slot entry. It never partially inserts.
func (p *Page) AddRecord(bytes []byte) bool {
	if p.FreeSpace() < int32(len(bytes))+SlotEntrySize {
		return false
	}
	p.freeSpaceEnd -= int32(len(bytes))
	p.slots = append(p.slots, Slot{Offset: p.freeSpaceEnd, Length: int32(len(bytes))})
	p.records = append(p.records, bytes)
	p.SetDirty()
	p.Touch()
	return true
}

// RemoveRecord compacts the record area: every record with a lower
// offset than the removed one shifts up by the removed record's
// length, the slot entry is dropped, and free_space_end grows. This is
// the source's removeRecord, with its acknowledged rough edge intact —
// see the open question in the design notes about records sharing an
// offset region after repeated removals; no caller in this engine
// exercises row-level delete, so the path is unreachable in practice.
func (p *Page) RemoveRecord(slotIndex int) bool {
	if slotIndex < 0 || slotIndex >= len(p.slots) {
		return false
	}
	removed := p.slots[slotIndex]
	for i := range p.slots {
		if p.slots[i].Offset < removed.Offset {
			p.slots[i].Offset += removed.Length
		}
	}
	p.slots = append(p.slots[:slotIndex], p.slots[slotIndex+1:]...)
	p.records = append(p.records[:slotIndex], p.records[slotIndex+1:]...)
	p.freeSpaceEnd += removed.Length
	p.SetDirty()
	p.Touch()
	return true
}

// Split partitions this page's records at slot_count/2 (rounded up):
// the first half goes to destA, the second half to destB, both in
// order, so destB receives the smaller half (nothing at all when this
// page holds a single record). Both destinations must be empty and
// large enough to hold their half; the caller splits only after a
// record didn't fit this non-empty page, and then appends that record
// to destB.
func (p *Page) Split(destA, destB *Page) {
	p.SetDirty()
	mid := (len(p.slots) + 1) / 2
	for i := 0; i < mid; i++ {
		if !destA.AddRecord(p.records[i]) {
			panic("page split: first half does not fit destination page")
		}
	}
	for i := mid; i < len(p.slots); i++ {
		if !destB.AddRecord(p.records[i]) {
			panic("page split: second half does not fit destination page")
		}
	}
}

// CleanData resets the page to empty, preserving its id. The caller
// must still mark the page dirty if it held data before the reset —
// free_page and create_new_page's reuse path both do this explicitly.
func (p *Page) CleanData() {
	p.slots = nil
	p.records = nil
	p.freeSpaceEnd = p.pageSize
	p.nextPageID = NoNextPage
	p.Touch()
}

// Serialize writes the page to exactly PageSize() bytes: header, slot
// directory, zero-filled gap, then each record placed at its slot
// offset.
func (p *Page) Serialize() []byte {
	buf := make([]byte, p.pageSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.id))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.pageSize))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.freeSpaceEnd))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(p.slots)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(p.nextPageID))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(p.lastAccessTimestamp))
	if p.dirty {
		buf[28] = 1
	}

	off := HeaderSize
	for _, s := range p.slots {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(s.Offset))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(s.Length))
		off += SlotEntrySize
	}

	for i, s := range p.slots {
		copy(buf[s.Offset:s.Offset+s.Length], p.records[i])
	}

	return buf
}

// Deserialize is Serialize's inverse. data must be exactly pageSize
// bytes; any other length is an invariant breach (the on-disk page
// must always be a full page), which the buffer reports as
// InvariantBreach.
func Deserialize(data []byte, pageSize int32) (*Page, error) {
	if int32(len(data)) != pageSize {
		return nil, fmt.Errorf("page: deserialize expects %d bytes, got %d", pageSize, len(data))
	}

	p := &Page{pageSize: pageSize}
	p.id = int32(binary.LittleEndian.Uint32(data[0:4]))
	storedSize := int32(binary.LittleEndian.Uint32(data[4:8]))
	if storedSize != pageSize {
		return nil, fmt.Errorf("page: stored page_size %d does not match expected %d", storedSize, pageSize)
	}
	p.freeSpaceEnd = int32(binary.LittleEndian.Uint32(data[8:12]))
	slotCount := binary.LittleEndian.Uint32(data[12:16])
	p.nextPageID = int32(binary.LittleEndian.Uint32(data[16:20]))
	p.lastAccessTimestamp = int64(binary.LittleEndian.Uint64(data[20:28]))
	p.dirty = data[28] == 1

	off := HeaderSize
	p.slots = make([]Slot, slotCount)
	for i := uint32(0); i < slotCount; i++ {
		offset := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		length := int32(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		p.slots[i] = Slot{Offset: offset, Length: length}
		off += SlotEntrySize
	}

	p.records = make([][]byte, slotCount)
	for i, s := range p.slots {
		rec := make([]byte, s.Length)
		copy(rec, data[s.Offset:s.Offset+s.Length])
		p.records[i] = rec
	}

	return p, nil
}

// Less orders pages by last-access timestamp, the buffer's LRU key.
func (p *Page) Less(other *Page) bool {
	return p.lastAccessTimestamp < other.lastAccessTimestamp
}
