// Package models defines the records stored in the pgstay spreadsheet.
//
// Every model maps to exactly one sheet. The `sheet` struct tags define the
// column header of each field, and the field order defines the header order
// used when a sheet is initialized. Adding a column means adding a tagged
// field here; the bootstrap and the row codec both read the tags.
//
// # Column kinds
//
// Cells are strings in the spreadsheet. The Go field type decides how a cell
// is decoded:
//   - string: taken as is (room number "007" stays "007")
//   - int, float64: parsed as a number
//   - bool: "true" / "false"
//   - []string: comma separated list, written back joined with ", "
//
// # Relationships
//
// Records reference each other by ID strings (Payment.UserID, Room.PGID, ...).
// Nothing checks that the referenced record exists.
package models
