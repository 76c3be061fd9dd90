package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"cdshelf/internal/importer"
	"cdshelf/internal/models"
	"cdshelf/internal/shared"
	"cdshelf/internal/ui"
)

// Scan feeds decoded barcodes through the ingestion pipeline and prints one
// notification per barcode.
//
// Barcodes come from the argument list, or from stdin (one per line) with
// --stdin. The stdin mode is the surface a hardware scanner in keyboard
// wedge mode types into.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	barcodes := cmd.Args().Slice()
	useStdin := cmd.Bool("stdin")
	useJSON := cmd.Bool("json")

	if len(barcodes) == 0 && !useStdin {
		return fmt.Errorf("%w: barcode argument or --stdin", shared.ErrMissingArgument)
	}

	coordinator, err := r.coordinator()
	if err != nil {
		return err
	}

	events := make(chan models.ScanEvent)
	notifications := make(chan importer.Notification)

	go func() {
		defer close(events)
		if useStdin {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				code := strings.TrimSpace(scanner.Text())
				if code == "" {
					continue
				}
				events <- models.ScanEvent{Code: code, Symbology: "ean_13", ObservedAt: time.Now()}
			}
			return
		}
		for _, code := range barcodes {
			events <- models.ScanEvent{Code: code, Symbology: "ean_13", ObservedAt: time.Now()}
		}
	}()

	go func() {
		defer close(notifications)
		coordinator.Run(ctx, events, notifications)
	}()

	failed := 0
	for n := range notifications {
		if n.Kind == importer.KindError {
			failed++
		}
		if useJSON {
			if err := r.writeJSON(n, false); err != nil {
				return err
			}
			continue
		}
		r.printNotification(n)
	}

	if failed > 0 {
		return fmt.Errorf("%d scan(s) failed", failed)
	}
	return nil
}

func (r *Runner) printNotification(n importer.Notification) {
	switch n.Kind {
	case importer.KindAdded:
		r.writePlain("%s %s - %s", ui.OK("✓ added"), n.Record.Artist, n.Record.Title)
		if n.Record.Playable() {
			r.writePlain(" %s", ui.Help(n.Record.CatalogURI))
		}
		r.writePlain("\n")
	case importer.KindDuplicate:
		r.writePlain("%s %s already scanned\n", ui.Warn("• duplicate"), n.Barcode)
	case importer.KindNotFound:
		r.writePlain("%s no release for %s\n", ui.Warn("• not found"), n.Barcode)
	case importer.KindError:
		r.writePlain("%s %s: %v\n", ui.Err("✗ error"), n.Barcode, n.Err)
	}
}
