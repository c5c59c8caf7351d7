package schema

import (
	"strings"
)

const sectionSeparator = "----------------------------------------"

// renderTable writes one table section in fixed order: header, optional
// description, separator, column lines, then the optional Primary Keys /
// Foreign Keys / Indexes blocks. Optional blocks are omitted entirely when
// empty, never rendered as empty headings.
func renderTable(sb *strings.Builder, t *Table) {
	sb.WriteString("Table: ")
	sb.WriteString(t.Name)
	sb.WriteString("\n")
	if t.Description != nil {
		sb.WriteString("Description: ")
		sb.WriteString(*t.Description)
		sb.WriteString("\n")
	}
	sb.WriteString(sectionSeparator)
	sb.WriteString("\n")

	for _, c := range t.Columns {
		renderColumn(sb, c)
	}

	if len(t.PrimaryKeys) > 0 {
		sb.WriteString("\nPrimary Keys:\n")
		for _, pk := range t.PrimaryKeys {
			sb.WriteString("  ")
			sb.WriteString(pk)
			sb.WriteString("\n")
		}
	}

	if len(t.ForeignKeys) > 0 {
		sb.WriteString("\nForeign Keys:\n")
		for _, fk := range t.ForeignKeys {
			sb.WriteString("  ")
			sb.WriteString(fk.Column)
			sb.WriteString(" -> ")
			sb.WriteString(fk.RefTable)
			sb.WriteString("(")
			sb.WriteString(fk.RefColumn)
			sb.WriteString(")\n")
		}
	}

	if len(t.Indexes) > 0 {
		sb.WriteString("\nIndexes:\n")
		for _, ix := range t.Indexes {
			sb.WriteString("  ")
			sb.WriteString(ix.Name)
			if ix.Unique {
				sb.WriteString(" (UNIQUE)")
			}
			sb.WriteString(": ")
			sb.WriteString(strings.Join(ix.Columns, ", "))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
}

// renderColumn writes one column line with its bracketed qualifiers,
// followed by an indented description line when the column carries one.
func renderColumn(sb *strings.Builder, c Column) {
	sb.WriteString("  ")
	sb.WriteString(c.Name)
	sb.WriteString(" ")
	sb.WriteString(c.DataType)
	if !c.Nullable {
		sb.WriteString(" [NOT NULL]")
	}
	if c.Default != nil {
		sb.WriteString(" [DEFAULT: ")
		sb.WriteString(*c.Default)
		sb.WriteString("]")
	}
	sb.WriteString("\n")
	if c.Description != nil {
		sb.WriteString("    Description: ")
		sb.WriteString(*c.Description)
		sb.WriteString("\n")
	}
}
