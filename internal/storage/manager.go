// Package storage implements the table-level façade (spec §4.3): it
// owns no page state directly, composing Buffer and Catalog the way
// StorageManager.java does. Grounded on StorageManager.java's
// createTable/dropTable/insertIntoTable/selectAllTable/alterTablePages/
// freePage, reimplemented without its duplicate-dropTable call (see
// DESIGN.md) and with ALTER freeing drained pages, which spec.md §4.3
// requires explicitly even though the original's alterTablePages omits
// it.
package storage

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"jottdb/internal/buffer"
	"jottdb/internal/catalog"
	"jottdb/internal/page"
	"jottdb/internal/record"
	"jottdb/internal/types"
)

// Manager is the StorageManager façade: create/drop/insert/select_all/
// alter_table plus shutdown, all driven through Buffer and Catalog.
type Manager struct {
	buf         *buffer.Buffer
	catalog     *catalog.Catalog
	catalogPath string
	log         *logrus.Logger
}

func New(buf *buffer.Buffer, cat *catalog.Catalog, catalogPath string, log *logrus.Logger) *Manager {
	return &Manager{buf: buf, catalog: cat, catalogPath: catalogPath, log: log}
}

func (m *Manager) Catalog() *catalog.Catalog { return m.catalog }

// CreateTable allocates one empty head page and registers schema.
// Returns false, with an error wrapping ErrSchemaConflict, for a name
// collision — spec §7 treats SchemaConflict as a recoverable,
// caller-reported outcome, and nothing is allocated in that case.
func (m *Manager) CreateTable(schema *types.TableSchema) (bool, error) {
	if m.catalog.TableExists(schema.Name) {
		return false, fmt.Errorf("table %q already exists: %w", schema.Name, ErrSchemaConflict)
	}

	head, err := m.buf.CreateNewPage()
	if err != nil {
		return false, fmt.Errorf("failed to allocate head page for table %q: %w", schema.Name, err)
	}
	schema.HeadPageID = head.PageID()
	m.catalog.AddTable(schema)
	m.log.WithFields(logrus.Fields{"table": schema.Name, "headPage": head.PageID()}).Info("created table")
	return true, nil
}

// DropTable walks the page chain from head, returning each page to the
// free list, then removes the schema from the catalog.
func (m *Manager) DropTable(schema *types.TableSchema) error {
	currentID := schema.HeadPageID
	for currentID != page.NoNextPage {
		p, err := m.buf.GetPage(currentID)
		if err != nil {
			return fmt.Errorf("drop table %q: %w", schema.Name, err)
		}
		next := p.NextPage()
		if err := m.FreePage(p); err != nil {
			return fmt.Errorf("drop table %q: %w", schema.Name, err)
		}
		currentID = next
	}
	m.catalog.DropTable(schema.Name)
	m.log.WithField("table", schema.Name).Info("dropped table")
	return nil
}

// Insert validates and encodes values, checks primary-key uniqueness,
// then appends the record to the table's tail page, splitting it into
// two fresh pages if it doesn't fit.
func (m *Manager) Insert(schema *types.TableSchema, values []types.Value) (bool, error) {
	if len(values) != schema.AttributeCount() {
		return false, fmt.Errorf("insert into %q: got %d values, schema has %d attributes", schema.Name, len(values), schema.AttributeCount())
	}

	bytes, err := record.Encode(values, schema)
	if err != nil {
		return false, err
	}

	violated, err := m.hasPrimaryKeyViolation(schema, values)
	if err != nil {
		return false, err
	}
	if violated {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, ErrPrimaryKeyViolation)
	}

	predecessorID, tailID, err := m.findTailPageID(schema.HeadPageID)
	if err != nil {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
	}
	tail, err := m.buf.GetPage(tailID)
	if err != nil {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
	}

	if tail.AddRecord(bytes) {
		return true, nil
	}

	pageA, err := m.buf.CreateNewPage()
	if err != nil {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
	}
	pageB, err := m.buf.CreateNewPage()
	if err != nil {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
	}
	pageA.SetNextPage(pageB.PageID())
	tail.Split(pageA, pageB)

	if predecessorID == page.NoNextPage {
		schema.HeadPageID = pageA.PageID()
	} else {
		predecessor, err := m.buf.GetPage(predecessorID)
		if err != nil {
			return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
		}
		predecessor.SetNextPage(pageA.PageID())
	}

	if err := m.FreePage(tail); err != nil {
		return false, fmt.Errorf("insert into %q: %w", schema.Name, err)
	}

	if !pageB.AddRecord(bytes) {
		return false, fmt.Errorf("insert into %q: record did not fit a fresh empty page: %w", schema.Name, ErrInvariantBreach)
	}
	return true, nil
}

// SelectAll walks the chain from head and decodes every record in
// order. Presentation (widths, borders) is left to the caller, per
// spec §4.3.
func (m *Manager) SelectAll(schema *types.TableSchema) ([][]types.Value, error) {
	var rows [][]types.Value
	currentID := schema.HeadPageID
	for currentID != page.NoNextPage {
		p, err := m.buf.GetPage(currentID)
		if err != nil {
			return nil, fmt.Errorf("select from %q: %w", schema.Name, err)
		}
		for _, raw := range p.Records() {
			values, err := record.Decode(raw, schema)
			if err != nil {
				return nil, fmt.Errorf("select from %q: %w", schema.Name, err)
			}
			rows = append(rows, values)
		}
		currentID = p.NextPage()
	}
	return rows, nil
}

// AlterTable rebuilds oldSchema's data under newSchema: a fresh head
// page, then every record rewritten by matching attribute names
// (case-insensitive) and reinserted, draining and freeing each old
// page as it goes. The catalog swap happens only after the rebuild
// completes.
func (m *Manager) AlterTable(oldSchema, newSchema *types.TableSchema) (bool, error) {
	newHead, err := m.buf.CreateNewPage()
	if err != nil {
		return false, fmt.Errorf("alter table %q: %w", oldSchema.Name, err)
	}
	newHead.SetNextPage(page.NoNextPage)
	newSchema.HeadPageID = newHead.PageID()

	currentOldID := oldSchema.HeadPageID
	for currentOldID != page.NoNextPage {
		oldPage, err := m.buf.GetPage(currentOldID)
		if err != nil {
			return false, fmt.Errorf("alter table %q: %w", oldSchema.Name, err)
		}
		nextOldID := oldPage.NextPage()

		for _, raw := range oldPage.Records() {
			oldValues, err := record.Decode(raw, oldSchema)
			if err != nil {
				return false, fmt.Errorf("alter table %q: %w", oldSchema.Name, err)
			}
			rewritten := rewriteForAlter(oldValues, oldSchema, newSchema)
			inserted, err := m.Insert(newSchema, rewritten)
			if err != nil {
				return false, fmt.Errorf("alter table %q: %w", oldSchema.Name, err)
			}
			if !inserted {
				return false, fmt.Errorf("alter table %q: rebuild failed while inserting rewritten record: %w", oldSchema.Name, ErrInvariantBreach)
			}
		}

		if err := m.FreePage(oldPage); err != nil {
			return false, fmt.Errorf("alter table %q: %w", oldSchema.Name, err)
		}
		currentOldID = nextOldID
	}

	m.catalog.DropTable(oldSchema.Name)
	m.catalog.AddTable(newSchema)
	m.log.WithFields(logrus.Fields{"table": oldSchema.Name, "newHeadPage": newHead.PageID()}).Info("altered table")
	return true, nil
}

// FreePage clears page's data and appends it to the catalog's
// free-page list.
func (m *Manager) FreePage(p *page.Page) error {
	p.CleanData()
	p.SetDirty()

	head := m.catalog.FreePageListHead()
	if head == page.NoNextPage {
		m.catalog.SetFreePageListHead(p.PageID())
		return nil
	}

	currentID := head
	for {
		current, err := m.buf.GetPage(currentID)
		if err != nil {
			return fmt.Errorf("free page %d: %w", p.PageID(), err)
		}
		next := current.NextPage()
		if next == page.NoNextPage {
			current.SetNextPage(p.PageID())
			return nil
		}
		currentID = next
	}
}

// Shutdown flushes the buffer and persists the catalog. The shutdown
// path still attempts to save the catalog even if callers are mid
// error-recovery, per spec §7's propagation policy.
func (m *Manager) Shutdown() error {
	if err := m.buf.EvictAll(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	f, err := os.Create(m.catalogPath)
	if err != nil {
		return fmt.Errorf("shutdown: failed to open catalog file %q: %w", m.catalogPath, err)
	}
	defer f.Close()
	if err := m.catalog.Save(f); err != nil {
		return fmt.Errorf("shutdown: failed to save catalog: %w", err)
	}
	m.log.Info("shutdown complete")
	return nil
}

func (m *Manager) findTailPageID(headID int32) (predecessorID, tailID int32, err error) {
	predecessorID = page.NoNextPage
	current := headID
	for {
		p, err := m.buf.GetPage(current)
		if err != nil {
			return 0, 0, err
		}
		next := p.NextPage()
		if next == page.NoNextPage {
			return predecessorID, current, nil
		}
		predecessorID = current
		current = next
	}
}

func (m *Manager) hasPrimaryKeyViolation(schema *types.TableSchema, candidate []types.Value) (bool, error) {
	pk, ok := schema.PrimaryKey()
	if !ok {
		return false, nil
	}
	pkIndex := schema.AttributeIndex(pk.Name)
	if pkIndex < 0 {
		return false, nil
	}

	candidateValue := candidate[pkIndex]
	if candidateValue.IsNull() {
		return true, nil
	}

	currentID := schema.HeadPageID
	for currentID != page.NoNextPage {
		p, err := m.buf.GetPage(currentID)
		if err != nil {
			return false, err
		}
		for _, raw := range p.Records() {
			existing, err := record.Decode(raw, schema)
			if err != nil {
				return false, err
			}
			if !existing[pkIndex].IsNull() && existing[pkIndex].Equal(candidateValue) {
				return true, nil
			}
		}
		currentID = p.NextPage()
	}
	return false, nil
}

// rewriteForAlter builds a new-schema value tuple from an old record:
// matching attributes copy their value by case-insensitive name; an
// attribute that only exists in the new schema (the ADD case) falls
// back to its default, or null if it has none.
func rewriteForAlter(oldValues []types.Value, oldSchema, newSchema *types.TableSchema) []types.Value {
	rewritten := make([]types.Value, newSchema.AttributeCount())
	for i, newAttr := range newSchema.Attributes {
		oldIndex := oldSchema.AttributeIndex(newAttr.Name)
		if oldIndex != -1 {
			rewritten[i] = oldValues[oldIndex]
			continue
		}
		if newAttr.HasDefault {
			rewritten[i] = newAttr.Default
		} else {
			rewritten[i] = types.NullValue()
		}
	}
	return rewritten
}
