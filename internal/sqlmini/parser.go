package sqlmini

import (
	"fmt"
	"strconv"
	"strings"

	"jottdb/internal/types"
)

// StatementKind distinguishes which of the five supported commands a
// parsed Statement carries.
type StatementKind int

const (
	CreateTable StatementKind = iota
	DropTable
	InsertInto
	SelectAll
	AlterAddColumn
	AlterDropColumn
)

// Statement is the parser's single output type, grounded on the
// original's CommandParsers dispatch: one command per statement, never
// a multi-statement batch.
type Statement struct {
	Kind StatementKind

	TableName string

	// CreateTable
	Schema *types.TableSchema

	// InsertInto: raw literal tokens, coerced against the live schema
	// by the caller once it has looked the table up in the catalog.
	InsertValues []Token

	// AlterAddColumn
	NewAttribute *types.AttributeSchema

	// AlterDropColumn
	DroppedColumn string
}

// Parser is a one-token-lookahead recursive descent parser over a
// Lexer's token stream, the same shape as the teacher's
// query_parser/parser.Parser.
type Parser struct {
	lex       *Lexer
	cur, peek Token
}

func NewParser(input string) *Parser {
	p := &Parser{lex: NewLexer(input)}
	p.cur = p.lex.NextToken()
	p.peek = p.lex.NextToken()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) expectKeyword(word string) error {
	if p.cur.Type != KEYWORD || p.cur.Literal != word {
		return fmt.Errorf("sqlmini: expected keyword %s, got %q", word, p.cur.Literal)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Type != IDENT && p.cur.Type != KEYWORD {
		return "", fmt.Errorf("sqlmini: expected an identifier, got %q", p.cur.Literal)
	}
	name := p.cur.Literal
	p.advance()
	return name, nil
}

// ParseStatement dispatches on the leading keyword, exactly the way
// CommandParsers.java switches on the first word of a line.
func (p *Parser) ParseStatement() (*Statement, error) {
	if p.cur.Type != KEYWORD {
		return nil, fmt.Errorf("sqlmini: expected a command keyword, got %q", p.cur.Literal)
	}

	switch p.cur.Literal {
	case "CREATE":
		return p.parseCreateTable()
	case "DROP":
		return p.parseDropTable()
	case "INSERT":
		return p.parseInsertInto()
	case "SELECT":
		return p.parseSelectAll()
	case "ALTER":
		return p.parseAlterTable()
	default:
		return nil, fmt.Errorf("sqlmini: unrecognized command %q", p.cur.Literal)
	}
}

// parseCreateTable: CREATE TABLE name ( col type [(n)] [PRIMARYKEY]
// [NOTNULL] [DEFAULT lit] , ... )
func (p *Parser) parseCreateTable() (*Statement, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != LPAREN {
		return nil, fmt.Errorf("sqlmini: expected ( after table name, got %q", p.cur.Literal)
	}
	p.advance()

	schema := types.NewTableSchema(name)
	for {
		attr, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		if !schema.AddAttribute(attr) {
			return nil, fmt.Errorf("sqlmini: duplicate column %q in CREATE TABLE", attr.Name)
		}
		if p.cur.Type == COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != RPAREN {
		return nil, fmt.Errorf("sqlmini: expected ) to close column list, got %q", p.cur.Literal)
	}
	p.advance()

	pkCount := 0
	for _, attr := range schema.Attributes {
		if attr.IsPrimaryKey {
			pkCount++
		}
	}
	if pkCount != 1 {
		return nil, fmt.Errorf("sqlmini: CREATE TABLE %s needs exactly one PRIMARYKEY column, got %d", schema.Name, pkCount)
	}

	return &Statement{Kind: CreateTable, TableName: schema.Name, Schema: schema}, nil
}

// parseColumnDef: name TYPE[(n)] [PRIMARYKEY] [NOTNULL] [DEFAULT lit]
func (p *Parser) parseColumnDef() (types.AttributeSchema, error) {
	name, err := p.expectIdent()
	if err != nil {
		return types.AttributeSchema{}, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return types.AttributeSchema{}, err
	}

	var isPK, isNotNull, hasDefault bool
	var def types.Value = types.NullValue()
	for p.cur.Type == KEYWORD {
		switch p.cur.Literal {
		case "PRIMARYKEY":
			isPK = true
			p.advance()
		case "NOTNULL":
			isNotNull = true
			p.advance()
		case "DEFAULT":
			p.advance()
			def, err = CoerceValue(p.cur, dt)
			if err != nil {
				return types.AttributeSchema{}, fmt.Errorf("column %q: %w", name, err)
			}
			hasDefault = true
			p.advance()
		default:
			goto done
		}
	}
done:
	return types.NewAttributeSchema(name, dt, isPK, isNotNull, def, hasDefault), nil
}

func (p *Parser) parseDataType() (types.DataType, error) {
	if p.cur.Type != KEYWORD {
		return types.DataType{}, fmt.Errorf("sqlmini: expected a data type, got %q", p.cur.Literal)
	}
	tag, err := types.ParseTag(p.cur.Literal)
	if err != nil {
		return types.DataType{}, fmt.Errorf("sqlmini: %w", err)
	}
	p.advance()

	if tag != types.CHAR && tag != types.VARCHAR {
		return types.NewDataType(tag), nil
	}

	if p.cur.Type != LPAREN {
		return types.DataType{}, fmt.Errorf("sqlmini: %s requires a length, e.g. %s(32)", tag, tag)
	}
	p.advance()
	if p.cur.Type != INT {
		return types.DataType{}, fmt.Errorf("sqlmini: expected an integer length for %s(...)", tag)
	}
	n, err := strconv.Atoi(p.cur.Literal)
	if err != nil {
		return types.DataType{}, fmt.Errorf("sqlmini: invalid length %q: %w", p.cur.Literal, err)
	}
	p.advance()
	if p.cur.Type != RPAREN {
		return types.DataType{}, fmt.Errorf("sqlmini: expected ) after %s length", tag)
	}
	p.advance()
	return types.NewBoundedDataType(tag, n), nil
}

// parseDropTable: DROP TABLE name
func (p *Parser) parseDropTable() (*Statement, error) {
	if err := p.expectKeyword("DROP"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: DropTable, TableName: strings.ToLower(name)}, nil
}

// parseInsertInto: INSERT INTO name VALUES ( lit , lit , ... )
func (p *Parser) parseInsertInto() (*Statement, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if p.cur.Type != LPAREN {
		return nil, fmt.Errorf("sqlmini: expected ( after VALUES, got %q", p.cur.Literal)
	}
	p.advance()

	var values []Token
	for {
		if p.cur.Type == EOF {
			return nil, fmt.Errorf("sqlmini: unterminated VALUES list")
		}
		values = append(values, p.cur)
		p.advance()
		if p.cur.Type == COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != RPAREN {
		return nil, fmt.Errorf("sqlmini: expected ) to close VALUES list, got %q", p.cur.Literal)
	}
	p.advance()

	return &Statement{Kind: InsertInto, TableName: strings.ToLower(name), InsertValues: values}, nil
}

// parseSelectAll: SELECT * FROM name
func (p *Parser) parseSelectAll() (*Statement, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if p.cur.Type != ASTERISK {
		return nil, fmt.Errorf("sqlmini: only SELECT * is supported, got %q", p.cur.Literal)
	}
	p.advance()
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &Statement{Kind: SelectAll, TableName: strings.ToLower(name)}, nil
}

// parseAlterTable: ALTER TABLE name ADD COLUMN col type [...]
//               or ALTER TABLE name DROP COLUMN name
func (p *Parser) parseAlterTable() (*Statement, error) {
	if err := p.expectKeyword("ALTER"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	tableName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	tableName = strings.ToLower(tableName)

	switch {
	case p.cur.Type == KEYWORD && p.cur.Literal == "ADD":
		p.advance()
		if err := p.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		attr, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		if attr.IsPrimaryKey {
			return nil, fmt.Errorf("sqlmini: ALTER TABLE ADD COLUMN cannot introduce a primary key")
		}
		return &Statement{Kind: AlterAddColumn, TableName: tableName, NewAttribute: &attr}, nil

	case p.cur.Type == KEYWORD && p.cur.Literal == "DROP":
		p.advance()
		if err := p.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &Statement{Kind: AlterDropColumn, TableName: tableName, DroppedColumn: strings.ToLower(name)}, nil

	default:
		return nil, fmt.Errorf("sqlmini: expected ADD or DROP after ALTER TABLE %s, got %q", tableName, p.cur.Literal)
	}
}
