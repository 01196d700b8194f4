// Package models defines the domain entities stored in the backing
// spreadsheet.
//
// Each worksheet maps to one entity type:
//   - [Item] : practice items on the Items worksheet (columns A-H)
//   - [Routine] : entries on the routines index worksheet (columns A-D)
//   - [RoutineItem] : rows of a routine's own worksheet, named by routine ID (columns A-D)
//   - [ChordChart] : chord diagrams on the ChordCharts worksheet (columns A-F)
//
// IDs are integers allocated as max(existing)+1 and never reused within a
// session. Ordering is a dense 0-based sequence per scope (all items, one
// routine's entries, one chart scope); the repositories keep it dense across
// insertions and deletions. [ChordData] is serialized to JSON into a single
// cell and treated as opaque by the storage layer.
package models
