package ui

import (
	"github.com/desertthunder/fretsheet/internal/models"
)

// detailsFetchedMsg carries a routine's resolved entries after a fetch.
type detailsFetchedMsg struct {
	details models.RoutineDetails
	err     error
}

// entryToggledMsg reports one entry's completion flip being persisted.
type entryToggledMsg struct {
	entryID   int
	completed bool
	err       error
}

// progressResetMsg reports every completion mark being cleared.
type progressResetMsg struct {
	err error
}
