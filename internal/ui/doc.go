// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI runs a practice session over a single routine: its entries are
// shown as a checklist, enter toggles the selected entry's completion mark,
// r clears every mark, and g refetches the routine from the sheet.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Every mutation is persisted to the spreadsheet before the checklist refreshes,
// so a crashed session never loses progress.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, r, g, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
