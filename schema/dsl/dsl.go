// Package dsl parses a small table-definition language into schema
// tables, for callers that load their schema from a file instead of
// registering Go structs.
//
// The language is line-oriented and attribute-based:
//
//	table Person {
//		name  text    @primary
//		age   integer
//		email text    @unique
//	}
//
//	table Employee {
//		id      integer @primary @auto
//		name    text    @notnull
//		age     integer @check("age > 17")
//		dept_id integer @references(Department.id) @on_delete(CASCADE)
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sqlzgo/sqlz/schema"
)

// tableLexer tokenizes table definitions.
var tableLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `\btable\b`},
	{Name: "Attr", Pattern: `@`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type fileNode struct {
	Tables []*tableNode `parser:"@@*"`
}

type tableNode struct {
	Pos     lexer.Position
	Name    string        `parser:"Keyword @Ident"`
	Columns []*columnNode `parser:"LBrace @@* RBrace"`
}

type columnNode struct {
	Pos   lexer.Position
	Name  string      `parser:"@Ident"`
	Type  string      `parser:"@Ident"`
	Attrs []*attrNode `parser:"@@*"`
}

type attrNode struct {
	Pos  lexer.Position
	Name string   `parser:"Attr @Ident"`
	Arg  *attrArg `parser:"(LParen @@ RParen)?"`
}

type attrArg struct {
	Ref   *refNode `parser:"  @@"`
	Str   *string  `parser:"| @String"`
	Num   *string  `parser:"| @Number"`
	Ident *string  `parser:"| @Ident"`
}

type refNode struct {
	Table  string `parser:"@Ident"`
	Column string `parser:"Dot @Ident"`
}

var parser = participle.MustBuild[fileNode](
	participle.Lexer(tableLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse reads table definitions and converts them into schema tables,
// in declaration order.
func Parse(filename string, r io.Reader) ([]*schema.Table, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	tables := make([]*schema.Table, 0, len(file.Tables))
	for _, tn := range file.Tables {
		t, err := convertTable(tn)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ParseString parses table definitions from a string.
func ParseString(filename, input string) ([]*schema.Table, error) {
	return Parse(filename, strings.NewReader(input))
}

// Load parses table definitions and registers them in the default
// registry as one group, so foreign keys may target any table in the
// file regardless of declaration order.
func Load(filename string, r io.Reader) ([]*schema.Table, error) {
	tables, err := Parse(filename, r)
	if err != nil {
		return nil, err
	}
	if err := schema.RegisterTables(tables...); err != nil {
		return nil, err
	}
	return tables, nil
}

func convertTable(tn *tableNode) (*schema.Table, error) {
	cols := make([]*schema.Column, 0, len(tn.Columns))
	for _, cn := range tn.Columns {
		col, err := convertColumn(tn.Name, cn)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return schema.NewTable(tn.Name, cols)
}

func convertColumn(table string, cn *columnNode) (*schema.Column, error) {
	typ, err := columnType(cn.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: column %s: %w", cn.Pos, cn.Name, err)
	}
	col := &schema.Column{
		Name:    cn.Name,
		GoField: goField(cn.Name),
		Type:    typ,
	}
	for _, attr := range cn.Attrs {
		if err := applyAttr(col, attr); err != nil {
			return nil, fmt.Errorf("%s: column %s.%s: %w", attr.Pos, table, cn.Name, err)
		}
	}
	return col, nil
}

func columnType(name string) (schema.Type, error) {
	switch name {
	case "text":
		return schema.TypeText, nil
	case "integer":
		return schema.TypeInteger, nil
	case "real":
		return schema.TypeReal, nil
	case "boolean":
		return schema.TypeBoolean, nil
	case "blob":
		return schema.TypeBlob, nil
	case "timestamp":
		return schema.TypeTimestamp, nil
	default:
		return 0, fmt.Errorf("unknown type %q", name)
	}
}

func applyAttr(col *schema.Column, attr *attrNode) error {
	switch attr.Name {
	case "primary":
		col.PrimaryKey = true
	case "auto":
		col.AutoIncrement = true
	case "unique":
		col.Unique = true
	case "notnull":
		col.NotNull = true
	case "default":
		if attr.Arg == nil {
			return fmt.Errorf("@default needs a value")
		}
		v, err := defaultValue(col.Type, attr.Arg)
		if err != nil {
			return err
		}
		col.HasDefault = true
		col.Default = v
	case "check":
		if attr.Arg == nil || attr.Arg.Str == nil {
			return fmt.Errorf("@check needs a quoted expression")
		}
		col.Check = *attr.Arg.Str
	case "references":
		if attr.Arg == nil || attr.Arg.Ref == nil {
			return fmt.Errorf("@references needs a Table.Column argument")
		}
		col.ForeignKey = &schema.ForeignKey{
			Table:  attr.Arg.Ref.Table,
			Column: attr.Arg.Ref.Column,
		}
	case "on_delete", "on_update":
		action, err := refAction(attr)
		if err != nil {
			return err
		}
		if col.ForeignKey == nil {
			return fmt.Errorf("@%s needs a preceding @references", attr.Name)
		}
		if attr.Name == "on_delete" {
			col.ForeignKey.OnDelete = action
		} else {
			col.ForeignKey.OnUpdate = action
		}
	default:
		return fmt.Errorf("unknown attribute @%s", attr.Name)
	}
	return nil
}

func refAction(attr *attrNode) (string, error) {
	if attr.Arg == nil || attr.Arg.Ident == nil {
		return "", fmt.Errorf("@%s needs an action argument", attr.Name)
	}
	action := strings.ToUpper(strings.ReplaceAll(*attr.Arg.Ident, "_", " "))
	switch action {
	case "CASCADE", "RESTRICT", "SET NULL", "SET DEFAULT", "NO ACTION":
		return action, nil
	default:
		return "", fmt.Errorf("unknown action %q", *attr.Arg.Ident)
	}
}

func defaultValue(typ schema.Type, arg *attrArg) (any, error) {
	switch {
	case arg.Str != nil:
		if typ != schema.TypeText && typ != schema.TypeTimestamp {
			return nil, fmt.Errorf("string default on %s column", typ)
		}
		return *arg.Str, nil
	case arg.Num != nil:
		switch typ {
		case schema.TypeInteger:
			return strconv.ParseInt(*arg.Num, 10, 64)
		case schema.TypeReal:
			return strconv.ParseFloat(*arg.Num, 64)
		default:
			return nil, fmt.Errorf("numeric default on %s column", typ)
		}
	case arg.Ident != nil:
		if typ == schema.TypeBoolean && (*arg.Ident == "true" || *arg.Ident == "false") {
			return *arg.Ident == "true", nil
		}
		return nil, fmt.Errorf("unsupported default %q", *arg.Ident)
	default:
		return nil, fmt.Errorf("unsupported default")
	}
}

// goField derives a Go-style field name from a snake_case column name.
func goField(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if p == "id" {
			b.WriteString("ID")
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
