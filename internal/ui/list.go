package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/fretsheet/internal/models"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.RoutineEntry] to implement [list.Item].
type entryItem struct {
	entry models.RoutineEntry
}

func (i entryItem) FilterValue() string { return i.title() }

func (i entryItem) Title() string {
	marker := "[ ]"
	if i.entry.RoutineItem.Completed {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s", marker, i.title())
}

func (i entryItem) Description() string {
	if i.entry.Missing {
		return "item was deleted from the sheet"
	}

	desc := fmt.Sprintf("%s min", displayDuration(i.entry.Item.Duration))
	if i.entry.Item.Tuning != "" && i.entry.Item.Tuning != "Standard" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Item.Tuning)
	}
	if i.entry.Item.Notes != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Item.Notes)
	}
	return desc
}

func (i entryItem) title() string {
	if i.entry.Missing {
		return fmt.Sprintf("(missing item %d)", i.entry.RoutineItem.ItemID)
	}
	return i.entry.Item.Title
}

func displayDuration(d string) string {
	if d == "" {
		return "?"
	}
	return d
}
