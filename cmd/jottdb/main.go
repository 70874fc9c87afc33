// Command jottdb is the REPL front end spec §6 specifies only for
// compatibility with existing test harnesses: four positional
// arguments construct a Database aggregate, after which it reads
// commands from stdin until EXIT or EOF. Grounded on the teacher's
// root main.go REPL loop (bufio.Scanner + "db> " prompt), wired to
// internal/sqlmini instead of the teacher's bplustree/query_executor
// VM.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jottdb/internal/buffer"
	"jottdb/internal/catalog"
	"jottdb/internal/dblog"
	"jottdb/internal/sqlmini"
	"jottdb/internal/storage"
	"jottdb/internal/types"
)

func main() {
	args := os.Args[1:]
	if len(args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: jottdb <db-dir> <initial-page-size> <buffer-capacity-pages> <indexing-on|off>")
		os.Exit(2)
	}

	dbDir := args[0]
	initialPageSize, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid page size %q: %v\n", args[1], err)
		os.Exit(2)
	}
	capacity, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid buffer capacity %q: %v\n", args[2], err)
		os.Exit(2)
	}
	indexing, err := parseOnOff(args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid indexing flag %q: %v\n", args[3], err)
		os.Exit(2)
	}

	m, err := openDatabase(dbDir, int32(initialPageSize), capacity, indexing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	runREPL(m)

	if err := m.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown failed: %v\n", err)
		os.Exit(1)
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true":
		return true, nil
	case "off", "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected on/off")
	}
}

// openDatabase constructs the Database aggregate spec §6.3 describes:
// on restart the catalog file's stored page size and indexing flag
// take precedence over the command-line arguments.
func openDatabase(dbDir string, initialPageSize int32, capacity int, indexing bool) (*storage.Manager, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory %q: %w", dbDir, err)
	}

	heapPath := filepath.Join(dbDir, "db")
	catalogPath := filepath.Join(dbDir, "catalog")
	log := dblog.New()

	var cat *catalog.Catalog
	if f, err := os.Open(catalogPath); err == nil {
		defer f.Close()
		cat, err = catalog.Load(f)
		if err != nil {
			return nil, fmt.Errorf("load catalog %q: %w", catalogPath, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		cat = catalog.New(initialPageSize, indexing)
	} else {
		return nil, fmt.Errorf("open catalog %q: %w", catalogPath, err)
	}

	heapFile, err := os.OpenFile(heapPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open heap file %q: %w", heapPath, err)
	}

	buf := buffer.New(heapFile, cat.PageSize(), capacity, cat, log)
	return storage.New(buf, cat, catalogPath, log), nil
}

func runREPL(m *storage.Manager) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("db> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}
		execute(m, line)
	}
}

func execute(m *storage.Manager, line string) {
	stmt, err := sqlmini.NewParser(line).ParseStatement()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	switch stmt.Kind {
	case sqlmini.CreateTable:
		ok, err := m.CreateTable(stmt.Schema)
		report("CREATE TABLE", ok, err)

	case sqlmini.DropTable:
		schema, ok := m.Catalog().GetTable(stmt.TableName)
		if !ok {
			report("DROP TABLE", false, unknownTable(stmt.TableName))
			return
		}
		report("DROP TABLE", true, m.DropTable(schema))

	case sqlmini.InsertInto:
		schema, ok := m.Catalog().GetTable(stmt.TableName)
		if !ok {
			report("INSERT", false, unknownTable(stmt.TableName))
			return
		}
		if len(stmt.InsertValues) != schema.AttributeCount() {
			fmt.Printf("error: %q takes %d values, got %d\n", stmt.TableName, schema.AttributeCount(), len(stmt.InsertValues))
			return
		}
		values := make([]types.Value, len(stmt.InsertValues))
		for i, tok := range stmt.InsertValues {
			v, err := sqlmini.CoerceValue(tok, schema.Attributes[i].DataType)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				return
			}
			values[i] = v
		}
		inserted, err := m.Insert(schema, values)
		report("INSERT", inserted, err)

	case sqlmini.SelectAll:
		schema, ok := m.Catalog().GetTable(stmt.TableName)
		if !ok {
			report("SELECT", false, unknownTable(stmt.TableName))
			return
		}
		rows, err := m.SelectAll(schema)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Print(sqlmini.RenderSelect(schema, rows))

	case sqlmini.AlterAddColumn:
		oldSchema, ok := m.Catalog().GetTable(stmt.TableName)
		if !ok {
			report("ALTER TABLE ADD COLUMN", false, unknownTable(stmt.TableName))
			return
		}
		newSchema := oldSchema.Clone()
		if !newSchema.AddAttribute(*stmt.NewAttribute) {
			report("ALTER TABLE ADD COLUMN", false, fmt.Errorf("column %q: %w", stmt.NewAttribute.Name, storage.ErrSchemaConflict))
			return
		}
		ok, err := m.AlterTable(oldSchema, newSchema)
		report("ALTER TABLE ADD COLUMN", ok, err)

	case sqlmini.AlterDropColumn:
		oldSchema, ok := m.Catalog().GetTable(stmt.TableName)
		if !ok {
			report("ALTER TABLE DROP COLUMN", false, unknownTable(stmt.TableName))
			return
		}
		if pk, hasPK := oldSchema.PrimaryKey(); hasPK && strings.EqualFold(pk.Name, stmt.DroppedColumn) {
			fmt.Printf("error: cannot drop primary key column %q\n", stmt.DroppedColumn)
			return
		}
		newSchema := oldSchema.Clone()
		if !newSchema.DropAttribute(stmt.DroppedColumn) {
			report("ALTER TABLE DROP COLUMN", false, fmt.Errorf("column %q: %w", stmt.DroppedColumn, storage.ErrUnknownAttribute))
			return
		}
		ok, err := m.AlterTable(oldSchema, newSchema)
		report("ALTER TABLE DROP COLUMN", ok, err)
	}
}

func unknownTable(name string) error {
	return fmt.Errorf("table %q: %w", name, storage.ErrUnknownTable)
}

func report(label string, ok bool, err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if !ok {
		fmt.Printf("%s: rejected\n", label)
		return
	}
	fmt.Printf("%s: ok\n", label)
}
