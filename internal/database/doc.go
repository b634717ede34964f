// Package database provides SQLite-based storage of audit history.
//
// Every completed audit is stored as a JSON blob plus a few extracted
// columns (health score, grade, severity counts) so the compare and
// history commands can work without deserializing whole reports.
//
// SQLite via modernc.org/sqlite keeps the store a single file with a
// CGO-free driver, which makes cross-compilation painless. WAL mode
// gives good read performance for history listings.
package database
