package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"cdshelf/internal/shared"
	"cdshelf/internal/ui"
)

// PlayerPlay starts playback of a record's album, or resumes the current
// context when no id is given.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalog()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		if err := catalog.Resume(ctx); err != nil {
			return err
		}
		return r.writePlain("%s\n", ui.OK("▶ resumed"))
	}

	repo, err := r.albums()
	if err != nil {
		return err
	}

	album, err := repo.Get(id)
	if err != nil {
		return err
	}
	if !album.Playable() {
		return fmt.Errorf("%w: record %s", shared.ErrNoPlayableEntries, id)
	}

	if err := catalog.Play(ctx, album.CatalogURI); err != nil {
		return err
	}

	return r.writePlain("%s %s - %s\n", ui.OK("▶ playing"), album.Artist, album.Title)
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalog()
	if err != nil {
		return err
	}
	if err := catalog.Pause(ctx); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.OK("⏸ paused"))
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalog()
	if err != nil {
		return err
	}
	if err := catalog.Next(ctx); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.OK("⏭ next"))
}

// PlayerPrevious skips to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.catalog()
	if err != nil {
		return err
	}
	if err := catalog.Previous(ctx); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.OK("⏮ previous"))
}

// PlayerSeek moves the playback position.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	position, err := strconv.Atoi(cmd.StringArg("position"))
	if err != nil {
		return fmt.Errorf("%w: position must be an integer (ms)", shared.ErrInvalidArgument)
	}

	catalog, err := r.catalog()
	if err != nil {
		return err
	}
	if err := catalog.Seek(ctx, position); err != nil {
		return err
	}
	return r.writePlain("%s %dms\n", ui.OK("→ seeked to"), position)
}

// PlayerVolume sets the playback volume.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	percent, err := strconv.Atoi(cmd.StringArg("percent"))
	if err != nil {
		return fmt.Errorf("%w: volume must be an integer (0-100)", shared.ErrInvalidArgument)
	}

	catalog, err := r.catalog()
	if err != nil {
		return err
	}
	if err := catalog.SetVolume(ctx, percent); err != nil {
		return err
	}
	return r.writePlain("%s %d%%\n", ui.OK("♪ volume"), percent)
}
