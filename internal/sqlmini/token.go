// Package sqlmini is the minimal tokenizer and recursive-descent
// parser standing in for the external SQL front end spec.md places
// out of scope: just enough grammar to drive CREATE TABLE, DROP TABLE,
// INSERT INTO, SELECT * FROM, and ALTER TABLE ADD/DROP COLUMN end to
// end. Grounded on the teacher's query_parser/lexer token shape and
// the original's CommandParsers/Token.java dispatch-by-keyword style.
package sqlmini

// TokenType distinguishes a lexeme's role in the grammar.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	IDENT
	KEYWORD
	INT
	FLOAT
	STRING
	COMMA
	LPAREN
	RPAREN
	ASTERISK
)

// Token is one lexeme: its type and the literal text that produced it.
type Token struct {
	Type    TokenType
	Literal string
}

var keywords = map[string]bool{
	"CREATE": true, "TABLE": true, "DROP": true, "INSERT": true, "INTO": true,
	"VALUES": true, "SELECT": true, "FROM": true, "ALTER": true, "ADD": true,
	"COLUMN": true, "PRIMARYKEY": true, "NOTNULL": true, "DEFAULT": true,
	"NULL": true, "TRUE": true, "FALSE": true, "EXIT": true,
	"INTEGER": true, "DOUBLE": true, "BOOLEAN": true, "CHAR": true, "VARCHAR": true,
}
