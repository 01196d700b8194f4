// Package repositories implements entity persistence on top of the
// spreadsheet adapter and the record codec.
//
// Every mutation follows the same transactional shape: read the full data
// range, locate and mutate records in memory, recompute derived fields (ID
// allocation, order density), and overwrite the full range. There is no
// partial-row update primitive; the last full overwrite wins.
//
// Key implementations:
//   - [ItemRepository] : practice items with global order and title dedup
//   - [RoutineRepository] : routines index, per-routine worksheets, the
//     active-routine singleton, and routine entries
//   - [ChartRepository] : chord charts with per-item order scopes, the common
//     chord library, and batch deletion
//   - [CacheRepository] : local SQLite snapshots for offline listing
//
// Write cycles run under the rate-limit retry policy; reads are single
// requests and surface adapter errors directly.
package repositories
