package schema

import (
	"fmt"
	"strings"
)

// Mermaid renders the given tables as a mermaid erDiagram, columns in
// declaration order and one relation line per foreign key.
func Mermaid(tables ...*Table) string {
	var b strings.Builder
	b.WriteString("erDiagram\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "    %s {\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "        %s %s%s\n", c.Type, c.Name, keySuffix(c))
		}
		b.WriteString("    }\n")
	}
	for _, t := range tables {
		for _, c := range t.Columns {
			if fk := c.ForeignKey; fk != nil {
				fmt.Fprintf(&b, "    %s }o--|| %s : %s\n", t.Name, fk.Table, c.Name)
			}
		}
	}
	return b.String()
}

func keySuffix(c *Column) string {
	switch {
	case c.PrimaryKey && c.ForeignKey != nil:
		return " PK, FK"
	case c.PrimaryKey:
		return " PK"
	case c.ForeignKey != nil:
		return " FK"
	case c.Unique:
		return " UK"
	default:
		return ""
	}
}
