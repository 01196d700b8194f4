// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles configuration and local database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a configuration file from the template",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "spreadsheet-id",
						Usage: "Google Sheet ID to store in the config",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "sheets",
				Usage: "Provision the fixed worksheets on a blank spreadsheet",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupSheets,
			},
			{
				Name:  "database",
				Usage: "Initialize snapshot database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the Google OAuth flow and token management.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Google authorization commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize spreadsheet access via the browser",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address for the local callback server",
						Value: "localhost:8080",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authorization state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the saved token",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
		},
	}
}

// itemsCommand handles practice item operations.
func itemsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "items",
		Aliases: []string{"item"},
		Usage:   "Practice item operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all practice items",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ItemsList,
			},
			{
				Name:  "add",
				Usage: "Add a practice item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "duration",
						Usage: "Practice duration in minutes",
					},
					&cli.StringFlag{
						Name:  "tuning",
						Usage: "Tuning for the item (e.g. Standard, Drop D)",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "Freeform notes",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Item description",
					},
				},
				Action: r.ItemsAdd,
			},
			{
				Name:  "update",
				Usage: "Update fields on a practice item",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "duration"},
					&cli.StringFlag{Name: "tuning"},
					&cli.StringFlag{Name: "description"},
				},
				Action: r.ItemsUpdate,
			},
			{
				Name:  "notes",
				Usage: "Replace the notes on a practice item",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.StringArg{Name: "notes"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ItemsNotes,
			},
			{
				Name:  "delete",
				Usage: "Delete a practice item and its routine references",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ItemsDelete,
			},
			{
				Name:      "reorder",
				Usage:     "Reorder items with id=position pairs",
				ArgsUsage: "id=pos [id=pos ...]",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ItemsReorder,
			},
		},
	}
}

// routinesCommand handles routine and routine entry operations.
func routinesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "routines",
		Aliases: []string{"routine"},
		Usage:   "Routine operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all routines",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RoutinesList,
			},
			{
				Name:  "create",
				Usage: "Create a routine and its worksheet",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesCreate,
			},
			{
				Name:  "delete",
				Usage: "Delete a routine and its worksheet",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesDelete,
			},
			{
				Name:  "show",
				Usage: "Show a routine with its resolved entries",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RoutinesShow,
			},
			{
				Name:  "activate",
				Usage: "Mark a routine as the active one",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesActivate,
			},
			{
				Name:   "deactivate",
				Usage:  "Clear the active routine",
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesDeactivate,
			},
			{
				Name:  "add",
				Usage: "Add a practice item to a routine",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.IntArg{Name: "item"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesAddItem,
			},
			{
				Name:  "remove",
				Usage: "Remove an entry from a routine",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.IntArg{Name: "entry"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesRemoveItem,
			},
			{
				Name:      "reorder",
				Usage:     "Reorder routine entries with id=position pairs",
				ArgsUsage: "routine-id id=pos [id=pos ...]",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesReorder,
			},
			{
				Name:  "complete",
				Usage: "Mark a routine entry as done (or not done with --undo)",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.IntArg{Name: "entry"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "undo",
						Usage: "Clear the completion mark instead",
					},
				},
				Action: r.RoutinesComplete,
			},
			{
				Name:  "reset",
				Usage: "Clear completion marks on every entry",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RoutinesReset,
			},
		},
	}
}

// chartsCommand handles chord chart operations.
func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "charts",
		Aliases: []string{"chart"},
		Usage:   "Chord chart operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List charts for a practice item",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "item"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ChartsList,
			},
			{
				Name:  "common",
				Usage: "List the common chord library",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ChartsCommon,
			},
			{
				Name:  "search",
				Usage: "Search the common chord library by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ChartsSearch,
			},
			{
				Name:  "add",
				Usage: "Add a chart from a JSON definition file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "scope",
						Usage: "Chart scope: common or comma-separated item IDs",
						Value: "common",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Chart title (defaults to the chord name in the file)",
					},
				},
				Action: r.ChartsAdd,
			},
			{
				Name:  "update",
				Usage: "Replace a chart's definition from a JSON file",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.StringArg{Name: "file"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ChartsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete charts by ID",
				Arguments: []cli.Argument{
					&cli.IntArgs{Name: "ids", Min: 1, Max: -1},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ChartsDelete,
			},
			{
				Name:      "reorder",
				Usage:     "Reorder charts within their scope with id=position pairs",
				ArgsUsage: "id=pos [id=pos ...]",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.ChartsReorder,
			},
			{
				Name:  "copy",
				Usage: "Copy one item's charts to other items",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "source"},
					&cli.IntArgs{Name: "targets", Min: 1, Max: -1},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ChartsCopy,
			},
			{
				Name:   "seed",
				Usage:  "Seed the common library with open chords",
				Flags:  []cli.Flag{configFlag()},
				Action: r.ChartsSeed,
			},
			{
				Name:  "autocreate",
				Usage: "Recognize charts from chord sheet images or PDFs",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "item"},
					&cli.StringArgs{Name: "files", Min: 1, Max: -1},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the raw analysis as JSON",
					},
				},
				Action: r.ChartsAutocreate,
			},
		},
	}
}

// importCommand handles bulk import operations.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Bulk import operations",
		Commands: []*cli.Command{
			{
				Name:  "items",
				Usage: "Import practice items from a JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ImportItems,
			},
			{
				Name:      "routines",
				Usage:     "Create routines by name, skipping existing ones",
				ArgsUsage: "name [name ...]",
				Arguments: []cli.Argument{
					&cli.StringArgs{Name: "names", Min: 1, Max: -1},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ImportRoutines,
			},
			{
				Name:      "routine-items",
				Usage:     "Add items to a routine by matching titles",
				ArgsUsage: "routine-id title [title ...]",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.StringArgs{Name: "titles", Min: 1, Max: -1},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ImportRoutineItems,
			},
			{
				Name:  "collection",
				Usage: "Import a chord collection file into the common library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Chords per write",
						Value: 50,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Batch writes per second",
						Value: 0.5,
					},
				},
				Action: r.ImportCollection,
			},
		},
	}
}

// exportCommand writes routines to local files.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export routines to local files",
		ArgsUsage: "routine-id [routine-id ...]",
		Arguments: []cli.Argument{
			&cli.IntArgs{Name: "ids", Min: 0, Max: -1},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every routine",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, or txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent file writers",
				Value: 3,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Sheet reads per second",
				Value: 1.0,
			},
		},
		Action: r.Export,
	}
}

// cacheCommand handles local snapshot operations.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Local snapshot operations",
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Snapshot items and charts to the local database",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheRefresh,
			},
			{
				Name:  "items",
				Usage: "List items from the local snapshot",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheItems,
			},
			{
				Name:  "charts",
				Usage: "List charts from the local snapshot",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheCharts,
			},
		},
	}
}

// practiceCommand launches the interactive practice session.
func practiceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "practice",
		Aliases: []string{"p"},
		Usage:   "Run a practice session as an interactive checklist",
		Arguments: []cli.Argument{
			&cli.IntArg{Name: "id"},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.Practice,
	}
}
