package schema

import (
	"fmt"
	"strings"
)

// CreateTable renders the CREATE TABLE statement for a registered table.
//
//	CREATE TABLE Person (name TEXT PRIMARY KEY, age INTEGER, email TEXT)
//
// A single-column primary key is rendered inline; a composite key is
// rendered as a trailing PRIMARY KEY (a, b) constraint. Foreign keys
// always render as trailing constraints.
func CreateTable(t *Table) string {
	pk := t.PrimaryKey()
	inlinePK := len(pk) == 1

	var defs []string
	for _, c := range t.Columns {
		defs = append(defs, columnDef(c, inlinePK))
	}
	if len(pk) > 1 {
		defs = append(defs, "PRIMARY KEY ("+joinNames(pk)+")")
	}
	for _, c := range t.Columns {
		if fk := c.ForeignKey; fk != nil {
			def := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", c.Name, fk.Table, fk.Column)
			if fk.OnDelete != "" {
				def += " ON DELETE " + fk.OnDelete
			}
			if fk.OnUpdate != "" {
				def += " ON UPDATE " + fk.OnUpdate
			}
			defs = append(defs, def)
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

func columnDef(c *Column, inlinePK bool) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(c.Type.String())
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey && inlinePK {
		b.WriteString(" PRIMARY KEY")
		if c.AutoIncrement {
			b.WriteString(" AUTOINCREMENT")
		}
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.HasDefault {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultLiteral(c.Default))
	}
	if c.Check != "" {
		b.WriteString(" CHECK (")
		b.WriteString(c.Check)
		b.WriteString(")")
	}
	return b.String()
}

func defaultLiteral(v any) string {
	switch d := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(d, "'", "''") + "'"
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(d)
	}
}
