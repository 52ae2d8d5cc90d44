// Package contacts turns a confirmed column mapping and the rows of an
// imported table into contact records.
package contacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/communityhub/importer/internal/detection"
	"github.com/communityhub/importer/internal/headers"
)

// Contact is one imported person.
type Contact struct {
	Name         string `json:"name,omitempty" parquet:"name,optional"`
	Email        string `json:"email,omitempty" parquet:"email,optional"`
	Phone        string `json:"phone,omitempty" parquet:"phone,optional"`
	Organization string `json:"organization,omitempty" parquet:"organization,optional"`
	Role         string `json:"role,omitempty" parquet:"role,optional"`
	Location     string `json:"location,omitempty" parquet:"location,optional"`
	Notes        string `json:"notes,omitempty" parquet:"notes,optional"`
}

// Set stores value under field.
func (c *Contact) Set(field detection.Field, value string) {
	switch field {
	case detection.FieldName:
		c.Name = value
	case detection.FieldEmail:
		c.Email = value
	case detection.FieldPhone:
		c.Phone = value
	case detection.FieldOrganization:
		c.Organization = value
	case detection.FieldRole:
		c.Role = value
	case detection.FieldLocation:
		c.Location = value
	case detection.FieldNotes:
		c.Notes = value
	}
}

// Get returns the value stored under field.
func (c Contact) Get(field detection.Field) string {
	switch field {
	case detection.FieldName:
		return c.Name
	case detection.FieldEmail:
		return c.Email
	case detection.FieldPhone:
		return c.Phone
	case detection.FieldOrganization:
		return c.Organization
	case detection.FieldRole:
		return c.Role
	case detection.FieldLocation:
		return c.Location
	case detection.FieldNotes:
		return c.Notes
	}
	return ""
}

// MappingError describes one problem with a user-confirmed mapping.
type MappingError struct {
	Index  int
	Field  detection.Field
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping column %d to %q: %s", e.Index, e.Field, e.Reason)
}

// ValidateMappings checks a confirmed mapping against a table with
// columnCount columns: known fields only, indices in range, and no column or
// field used twice. All problems are returned together.
func ValidateMappings(mappings []detection.ColumnMapping, columnCount int) error {
	var errs []error
	fieldAt := make(map[detection.Field]int)
	columnUsed := make(map[int]bool)

	for _, m := range mappings {
		if _, ok := detection.ParseField(string(m.TargetField)); !ok {
			errs = append(errs, &MappingError{Index: m.SourceIndex, Field: m.TargetField, Reason: "unknown field"})
			continue
		}
		if m.SourceIndex < 0 || m.SourceIndex >= columnCount {
			errs = append(errs, &MappingError{Index: m.SourceIndex, Field: m.TargetField,
				Reason: fmt.Sprintf("column out of range (0-%d)", columnCount-1)})
			continue
		}
		if prev, ok := fieldAt[m.TargetField]; ok {
			errs = append(errs, &MappingError{Index: m.SourceIndex, Field: m.TargetField,
				Reason: fmt.Sprintf("field already mapped from column %d", prev)})
			continue
		}
		if columnUsed[m.SourceIndex] {
			errs = append(errs, &MappingError{Index: m.SourceIndex, Field: m.TargetField, Reason: "column already mapped"})
			continue
		}
		fieldAt[m.TargetField] = m.SourceIndex
		columnUsed[m.SourceIndex] = true
	}

	return errors.Join(errs...)
}

// RowIssue flags a data row that was imported but needs a second look, or
// skipped.
type RowIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	Skipped bool   `json:"skipped,omitempty"`
}

// Build applies mappings to every row of table. Row numbers in issues are
// 1-based and count data rows only.
func Build(table *headers.Table, mappings []detection.ColumnMapping) ([]Contact, []RowIssue) {
	contacts := make([]Contact, 0, len(table.Rows))
	var issues []RowIssue

	for i, row := range table.Rows {
		var c Contact
		empty := true
		for _, m := range mappings {
			if m.SourceIndex < 0 || m.SourceIndex >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[m.SourceIndex])
			if value == "" {
				continue
			}
			empty = false
			c.Set(m.TargetField, value)
		}

		if empty {
			issues = append(issues, RowIssue{Row: i + 1, Message: "no mapped values", Skipped: true})
			continue
		}

		if c.Email != "" && !strings.Contains(c.Email, "@") {
			issues = append(issues, RowIssue{Row: i + 1, Message: fmt.Sprintf("email %q has no @", c.Email)})
		}
		if c.Name == "" && c.Email == "" {
			issues = append(issues, RowIssue{Row: i + 1, Message: "contact has neither name nor email"})
		}

		contacts = append(contacts, c)
	}

	return contacts, issues
}
