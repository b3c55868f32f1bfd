package ingest

import (
	"strings"
)

// schema maps logical field names onto the columns of one concrete feed.
// Upstream exports are not stable: the same field arrives under different
// headers depending on which system produced the file, so every logical
// field carries its known header variants.
type schema struct {
	index map[string]int
}

func newSchema(header []string) *schema {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[canonical(name)] = i
	}
	return &schema{index: index}
}

// canonical normalizes a header cell so "Employee ID", "employee_id" and
// "EMPLOYEE-ID" all address the same column.
func canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\uFEFF")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// col returns the index of the first matching header variant, or -1.
func (s *schema) col(variants ...string) int {
	for _, v := range variants {
		if i, ok := s.index[v]; ok {
			return i
		}
	}
	return -1
}

// has reports whether every listed logical column resolved.
func (s *schema) has(cols ...int) bool {
	for _, c := range cols {
		if c < 0 {
			return false
		}
	}
	return true
}

// cell reads a column from a row, tolerating short rows.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
