package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"cdshelf/internal/importer"
	"cdshelf/internal/musicbrainz"
	"cdshelf/internal/repositories"
	"cdshelf/internal/session"
	"cdshelf/internal/shared"
	"cdshelf/internal/spotify"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// Injected in tests; built lazily from config otherwise.
	db       *sql.DB
	resolver importer.Resolver
	enricher importer.Enricher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Resolver   importer.Resolver
	Enricher   importer.Enricher
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		resolver:   opts.Resolver,
		enricher:   opts.Enricher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, scanCommand, collectionCommand, exportCommand, playlistCommand, authCommand, playerCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database returns the open database handle, opening and migrating it on
// first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// albums returns the collection repository.
func (r *Runner) albums() (*repositories.AlbumRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewAlbumRepository(db), nil
}

// session returns the credential store.
func (r *Runner) session() (*session.Store, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return session.NewStore(db), nil
}

// catalog returns the Spotify client gated by the stored session.
func (r *Runner) catalog() (*spotify.Client, error) {
	sess, err := r.session()
	if err != nil {
		return nil, err
	}
	return spotify.NewClient(spotify.ClientOpts{
		Session:    sess,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	}), nil
}

// metadata returns the MusicBrainz resolver with the process-wide pacer.
func (r *Runner) metadata() importer.Resolver {
	if r.resolver == nil {
		mb := r.config.Credentials.MusicBrainz
		r.resolver = musicbrainz.NewClient(musicbrainz.ClientOpts{
			UserAgent:  mb.UserAgent,
			Pacer:      musicbrainz.NewPacer(mb.MinInterval()),
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}
	return r.resolver
}

// coordinator assembles the ingestion pipeline.
func (r *Runner) coordinator() (*importer.Coordinator, error) {
	store, err := r.albums()
	if err != nil {
		return nil, err
	}

	enricher := r.enricher
	if enricher == nil {
		catalog, err := r.catalog()
		if err != nil {
			return nil, err
		}
		enricher = catalog
	}

	return importer.NewCoordinator(importer.CoordinatorOpts{
		Store:    store,
		Resolver: r.metadata(),
		Enricher: enricher,
		Logger:   r.logger,
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
