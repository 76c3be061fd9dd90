package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"cdshelf/internal/shared"
	"cdshelf/internal/ui"
)

// CollectionList prints every stored record, most recent first.
func (r *Runner) CollectionList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, err := r.albums()
	if err != nil {
		return err
	}

	albums, err := repo.All()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(albums, pretty)
	}

	r.writePlainln("%s", ui.Title(fmt.Sprintf("Collection (%d records)", len(albums))))
	for i, a := range albums {
		r.writePlain("%d. %s - %s\n", i+1, a.Artist, a.Title)
		r.writePlain("   %s\n", ui.Help(fmt.Sprintf("id=%s barcode=%s scanned=%s", a.ID, a.Barcode, a.ScanTime.Format("2006-01-02"))))
		if a.Playable() {
			r.writePlain("   %s\n", ui.Help(a.CatalogURI))
		}
	}

	return nil
}

// CollectionDelete removes a single record by id.
func (r *Runner) CollectionDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: record id", shared.ErrMissingArgument)
	}

	repo, err := r.albums()
	if err != nil {
		return err
	}

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.logger.Info("record deleted", "id", id)
	return r.writePlain("%s %s\n", ui.OK("✓ deleted"), id)
}

// CollectionClear removes every record.
func (r *Runner) CollectionClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("force") {
		return fmt.Errorf("%w: pass --force to clear the collection", shared.ErrInvalidArgument)
	}

	repo, err := r.albums()
	if err != nil {
		return err
	}

	count, err := repo.Count()
	if err != nil {
		return err
	}

	if err := repo.Clear(); err != nil {
		return err
	}

	r.logger.Info("collection cleared", "removed", count)
	return r.writePlain("%s removed %d records\n", ui.OK("✓ cleared"), count)
}
