// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes the configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// scanCommand feeds decoded barcodes through the ingestion pipeline.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Resolve barcodes and add them to the collection",
		ArgsUsage: "[barcode...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "Read barcodes from stdin, one per line",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output notifications as JSON",
			},
		},
		Action: r.Scan,
	}
}

// collectionCommand handles stored record operations.
func collectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "collection",
		Aliases: []string{"col"},
		Usage:   "Manage the scanned collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List scanned records, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CollectionList,
			},
			{
				Name:  "delete",
				Usage: "Delete a record by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CollectionDelete,
			},
			{
				Name:  "clear",
				Usage: "Delete every record",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Skip confirmation",
					},
				},
				Action: r.CollectionClear,
			},
		},
	}
}

// exportCommand handles file exports and conversions.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the collection to CSV or M3U",
		Commands: []*cli.Command{
			{
				Name:  "csv",
				Usage: "Export all records as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ExportCSV,
			},
			{
				Name:  "m3u",
				Usage: "Export records with a catalog URI as an M3U playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ExportM3U,
			},
			{
				Name:  "convert",
				Usage: "Convert a CSV export to an M3U playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ExportConvert,
			},
		},
	}
}

// playlistCommand creates a Spotify playlist from the collection.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a Spotify playlist from records with a catalog URI",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name (default: CD Import <date>)",
					},
				},
				Action: r.PlaylistCreate,
			},
		},
	}
}

// authCommand handles the Spotify session lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify via the browser",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Seconds to wait for the browser flow",
						Value: 300,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored credential",
				Action: r.AuthLogout,
			},
		},
	}
}

// playerCommand handles playback transport control.
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Control Spotify playback",
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Play an album by record id, or resume playback",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Action: r.PlayerNext,
			},
			{
				Name:    "prev",
				Aliases: []string{"previous"},
				Usage:   "Skip to the previous track",
				Action:  r.PlayerPrevious,
			},
			{
				Name:  "seek",
				Usage: "Seek to a position in milliseconds",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "position"},
				},
				Action: r.PlayerSeek,
			},
			{
				Name:  "volume",
				Usage: "Set playback volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "percent"},
				},
				Action: r.PlayerVolume,
			},
		},
	}
}
