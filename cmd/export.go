package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"cdshelf/internal/formatter"
	"cdshelf/internal/shared"
	"cdshelf/internal/ui"
)

// ExportCSV writes the whole collection as delimited text.
func (r *Runner) ExportCSV(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.albums()
	if err != nil {
		return err
	}

	albums, err := repo.All()
	if err != nil {
		return err
	}

	path, err := formatter.WriteCSVExport(albums, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("collection exported", "format", "csv", "records", len(albums), "file", path)
	return r.writePlain("%s %d records to %s\n", ui.OK("✓ exported"), len(albums), path)
}

// ExportM3U writes the playable records as an M3U playlist.
func (r *Runner) ExportM3U(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.albums()
	if err != nil {
		return err
	}

	albums, err := repo.All()
	if err != nil {
		return err
	}

	path, err := formatter.WriteM3UExport(albums, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("collection exported", "format", "m3u", "file", path)
	return r.writePlain("%s playlist written to %s\n", ui.OK("✓ exported"), path)
}

// ExportConvert converts a CSV export into an M3U playlist without touching
// the store.
func (r *Runner) ExportConvert(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: CSV file path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}

	albums, err := formatter.ParseCSV(data)
	if err != nil {
		return err
	}

	out, err := formatter.WriteM3UExport(albums, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("csv converted", "source", path, "file", out)
	return r.writePlain("%s %s -> %s\n", ui.OK("✓ converted"), path, out)
}

// PlaylistCreate creates a Spotify playlist from the playable records.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		name = fmt.Sprintf("CD Import %s", time.Now().Format("2006-01-02"))
	}

	repo, err := r.albums()
	if err != nil {
		return err
	}

	albums, err := repo.All()
	if err != nil {
		return err
	}

	catalog, err := r.catalog()
	if err != nil {
		return err
	}

	playlist, err := catalog.CreatePlaylist(ctx, name, albums)
	if err != nil {
		return err
	}

	r.logger.Info("playlist created", "name", playlist.Name, "id", playlist.ID)
	r.writePlain("%s %s\n", ui.OK("✓ playlist created:"), playlist.Name)
	if playlist.URL() != "" {
		r.writePlain("%s\n", ui.Help(playlist.URL()))
	}
	return nil
}
