package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/bookcatalog/cmd/books"
	"github.com/lepinkainen/bookcatalog/cmd/dedupe"
	"github.com/lepinkainen/bookcatalog/cmd/enrich"
	"github.com/lepinkainen/bookcatalog/cmd/export"
	"github.com/lepinkainen/bookcatalog/cmd/importer"
	"github.com/lepinkainen/bookcatalog/cmd/themes"
	"github.com/lepinkainen/bookcatalog/internal/cache"
	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/config"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	bcerrors "github.com/lepinkainen/bookcatalog/internal/errors"
)

// stdout is where commands print their reports.
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the bookcatalog application
type CLI struct {
	// Global flags
	DB       string `name:"db" help:"Path to the catalog SQLite database (default from config)"`
	Verbose  bool   `short:"v" help:"Enable debug logging"`
	UseCache bool   `name:"cache" help:"Cache OpenLibrary and Google Books responses"`
	CacheDB  string `help:"Path to cache SQLite database file"`
	CacheTTL string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`

	Init   InitCmd   `cmd:"" help:"Create the database schema and seed default themes"`
	Add    AddCmd    `cmd:"" help:"Add a book to the catalog"`
	List   ListCmd   `cmd:"" help:"List books"`
	Show   ShowCmd   `cmd:"" help:"Show one book in detail"`
	Edit   EditCmd   `cmd:"" help:"Edit a book"`
	Delete DeleteCmd `cmd:"" help:"Delete a book"`
	Themes ThemesCmd `cmd:"" help:"Manage themes"`
	Tag    TagCmd    `cmd:"" help:"Tag a book with a theme"`
	Link   LinkCmd   `cmd:"" help:"Attach a link to a book"`
	Import ImportCmd `cmd:"" help:"Import books and corrections from CSV files"`
	Enrich EnrichCmd `cmd:"" help:"Fill in covers, summaries, page counts and publishers from OpenLibrary and Google Books"`
	Export ExportCmd `cmd:"" help:"Export the catalog to JSON for the site"`
	Dedupe DedupeCmd `cmd:"" help:"Remove duplicate books, keeping the copy with most metadata"`
	Cache  CacheCmd  `cmd:"" help:"Manage the API response cache"`
}

// InitCmd represents the init command
type InitCmd struct {
	Reset bool `help:"Drop all tables before creating them"`
}

func (c *InitCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.Init(ctx, store, c.Reset, stdout)
}

// AddCmd represents the add command
type AddCmd struct {
	ISBN        string `name:"isbn" help:"ISBN-10 or ISBN-13"`
	Title       string `help:"Book title"`
	Author      string `help:"Author name"`
	Translator  string `help:"Translator"`
	Year        int    `help:"Year published"`
	YearRead    int    `help:"Year read (defaults to the current year)"`
	DateRead    string `help:"Date read (YYYY-MM-DD)"`
	Status      string `help:"Reading status: read, reading, want-to-read, abandoned" default:"read"`
	Recommended bool   `help:"Mark as recommended"`
	Themes      string `help:"Comma-separated theme slugs"`
	Notes       string `help:"Personal notes"`
	Format      string `help:"Format: physical, ebook, audiobook"`
}

func (c *AddCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	_, err := books.Add(ctx, store, books.AddOptions{
		ISBN:        c.ISBN,
		Title:       c.Title,
		Author:      c.Author,
		Translator:  c.Translator,
		Year:        c.Year,
		YearRead:    c.YearRead,
		DateRead:    c.DateRead,
		Status:      c.Status,
		Recommended: c.Recommended,
		Themes:      c.Themes,
		Notes:       c.Notes,
		Format:      c.Format,
	}, stdout)
	if errors.Is(err, books.ErrDuplicate) {
		return nil
	}
	return err
}

// ListCmd represents the list command
type ListCmd struct {
	Status      string `help:"Only books with this reading status"`
	Theme       string `help:"Only books tagged with this theme slug"`
	Recommended bool   `help:"Only recommended books"`
}

func (c *ListCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.List(ctx, store, books.ListOptions{
		Status:      c.Status,
		Theme:       c.Theme,
		Recommended: c.Recommended,
	}, stdout)
}

// ShowCmd represents the show command
type ShowCmd struct {
	ID int64 `arg:"" help:"Book ID"`
}

func (c *ShowCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.Show(ctx, store, c.ID, stdout)
}

// EditCmd represents the edit command
type EditCmd struct {
	ID             int64  `arg:"" help:"Book ID"`
	Title          string `help:"New title"`
	Author         string `help:"New author"`
	Translator     string `help:"New translator"`
	Year           int    `help:"New year published"`
	YearRead       int    `help:"New year read"`
	Notes          string `help:"New personal notes"`
	Status         string `help:"New reading status"`
	Recommended    bool   `help:"Mark as recommended" xor:"recommended"`
	NotRecommended bool   `help:"Clear the recommended flag" xor:"recommended"`
}

func (c *EditCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.Edit(ctx, store, c.ID, books.EditOptions{
		Title:          c.Title,
		Author:         c.Author,
		Translator:     c.Translator,
		Year:           c.Year,
		YearRead:       c.YearRead,
		Notes:          c.Notes,
		Status:         c.Status,
		Recommended:    c.Recommended,
		NotRecommended: c.NotRecommended,
	}, stdout)
}

// DeleteCmd represents the delete command
type DeleteCmd struct {
	ID    int64 `arg:"" help:"Book ID"`
	Force bool  `help:"Delete without asking"`
}

func (c *DeleteCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.Delete(ctx, store, c.ID, c.Force, stdout)
}

// ThemesCmd groups the theme subcommands
type ThemesCmd struct {
	List   ThemesListCmd   `cmd:"" default:"1" help:"List themes with book counts"`
	Add    ThemesAddCmd    `cmd:"" help:"Add a theme"`
	Delete ThemesDeleteCmd `cmd:"" help:"Delete a theme"`
	Import ThemesImportCmd `cmd:"" help:"Import themes from a YAML file"`
}

// ThemesListCmd represents the themes list command
type ThemesListCmd struct{}

func (c *ThemesListCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return themes.List(ctx, store, stdout)
}

// ThemesAddCmd represents the themes add command
type ThemesAddCmd struct {
	Name        string `arg:"" help:"Theme name"`
	Slug        string `help:"URL slug (derived from the name when empty)"`
	Description string `help:"Theme description"`
	Order       int    `help:"Display order"`
}

func (c *ThemesAddCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return themes.Add(ctx, store, c.Name, c.Slug, c.Description, c.Order, stdout)
}

// ThemesDeleteCmd represents the themes delete command
type ThemesDeleteCmd struct {
	Slug string `arg:"" help:"Theme slug"`
}

func (c *ThemesDeleteCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return themes.Delete(ctx, store, c.Slug, stdout)
}

// ThemesImportCmd represents the themes import command
type ThemesImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML file with a list of themes"`
}

func (c *ThemesImportCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return themes.Import(ctx, store, c.File, stdout)
}

// TagCmd represents the tag command
type TagCmd struct {
	BookID int64  `required:"" help:"Book ID"`
	Theme  string `required:"" help:"Theme slug"`
	Remove bool   `help:"Remove the theme instead of adding it"`
}

func (c *TagCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.Tag(ctx, store, c.BookID, c.Theme, c.Remove, stdout)
}

// LinkCmd represents the link command
type LinkCmd struct {
	BookID int64  `required:"" help:"Book ID"`
	Type   string `required:"" enum:"internal,external,purchase,review,author" help:"Link type: internal, external, purchase, review, author"`
	URL    string `name:"url" required:"" help:"Link URL"`
	Title  string `help:"Link title"`
	Notes  string `help:"Notes about the link"`
}

func (c *LinkCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return books.AddLink(ctx, store, catalog.Link{
		BookID: c.BookID,
		Type:   c.Type,
		URL:    c.URL,
		Title:  c.Title,
		Notes:  c.Notes,
	}, stdout)
}

// ImportCmd represents the import command and its subcommands
type ImportCmd struct {
	CSV         ImportCSVCmd         `cmd:"" name:"csv" help:"Import books from a Goodreads, StoryGraph or generic CSV export"`
	ISBNs       ImportISBNsCmd       `cmd:"" name:"isbns" help:"Apply ISBN corrections from a CSV file"`
	Reviews     ImportReviewsCmd     `cmd:"" help:"Apply reviewed themes and recommendations from a CSV file"`
	ReadingList ImportReadingListCmd `cmd:"" name:"readinglist" help:"Convert a Reading List export into the generic CSV format"`
}

// ImportCSVCmd represents the import csv command
type ImportCSVCmd struct {
	Input string `short:"f" required:"" type:"existingfile" help:"Path to the CSV file"`
}

func (c *ImportCSVCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	_, err := importer.CSV(ctx, store, c.Input, stdout)
	return err
}

// ImportISBNsCmd represents the import isbns command
type ImportISBNsCmd struct {
	Input string `short:"f" required:"" type:"existingfile" help:"CSV with id and found_isbn or isbn_to_add columns"`
}

func (c *ImportISBNsCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	_, err := importer.ISBNs(ctx, store, c.Input, stdout)
	return err
}

// ImportReviewsCmd represents the import reviews command
type ImportReviewsCmd struct {
	Input string `short:"f" required:"" type:"existingfile" help:"CSV with id, themes and recommended columns"`
}

func (c *ImportReviewsCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	_, err := importer.Reviews(ctx, store, c.Input, stdout)
	return err
}

// ImportReadingListCmd represents the import readinglist command. It only
// converts files and never opens the catalog.
type ImportReadingListCmd struct {
	Input  string `short:"f" required:"" type:"existingfile" help:"Reading List CSV export"`
	Output string `short:"o" required:"" help:"Generic CSV to write"`
}

func (c *ImportReadingListCmd) Run() error {
	_, err := importer.ReadingList(c.Input, c.Output, stdout)
	return err
}

// EnrichCmd represents the enrich command
type EnrichCmd struct {
	BookID int64 `help:"Enrich a single book"`
	Force  bool  `help:"Look up the book even if it already has all metadata"`
	DryRun bool  `help:"List the books that would be enriched and their missing fields, without contacting any source"`
}

func (c *EnrichCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	return enrich.Run(ctx, store, enrich.Options{
		BookID: c.BookID,
		Force:  c.Force,
		DryRun: c.DryRun,
	}, stdout)
}

// ExportCmd represents the export command
type ExportCmd struct {
	Output         string `short:"o" help:"Output file (default from config)"`
	Pretty         bool   `short:"p" help:"Pretty-print JSON"`
	BackupDir      string `help:"Directory for the timestamped backup (default from config)"`
	NoBackup       bool   `help:"Skip the timestamped backup"`
	CoversDir      string `help:"Download cover thumbnails into this directory"`
	DatasetteURL   string `name:"datasette-url" help:"Publish books to this Datasette instance"`
	DatasetteToken string `help:"Datasette API token"`
	DatasetteDB    string `name:"datasette-db" help:"Datasette database name" default:"books"`
}

func (c *ExportCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	opts := export.Options{
		Output:         firstNonEmpty(c.Output, config.ExportOutput),
		Pretty:         c.Pretty,
		BackupDir:      firstNonEmpty(c.BackupDir, config.ExportBackupDir),
		CoversDir:      c.CoversDir,
		DatasetteURL:   firstNonEmpty(c.DatasetteURL, config.DatasetteURL),
		DatasetteToken: firstNonEmpty(c.DatasetteToken, config.DatasetteToken),
		DatasetteDB:    c.DatasetteDB,
	}
	if c.NoBackup {
		opts.BackupDir = ""
	}
	_, err := export.Run(ctx, store, opts, stdout)
	return err
}

// DedupeCmd represents the dedupe command
type DedupeCmd struct {
	Execute     bool `help:"Delete duplicates instead of only listing them"`
	Interactive bool `short:"i" help:"Choose the copy to keep for each title"`
}

func (c *DedupeCmd) Run(ctx context.Context, store *datastore.SQLiteStore) error {
	_, err := dedupe.Run(ctx, store, dedupe.Options{
		Execute:     c.Execute,
		Interactive: c.Interactive,
	}, stdout)
	if bcerrors.IsStopProcessingError(err) {
		slog.Info("Dedupe stopped", "reason", err)
		return nil
	}
	return err
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Clear one source's cached responses"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// storeProvider opens the catalog once, on first use, so commands that do
// not touch the database never create it.
type storeProvider struct {
	ctx   context.Context
	store *datastore.SQLiteStore
}

func (p *storeProvider) open() (*datastore.SQLiteStore, error) {
	if p.store != nil {
		return p.store, nil
	}
	store, err := datastore.Open(p.ctx, config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", config.DatabasePath, err)
	}
	slog.Debug("Opened catalog", "db", config.DatabasePath)
	p.store = store
	return store, nil
}

func (p *storeProvider) Close() {
	if p.store != nil {
		_ = p.store.Close()
	}
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("bookcatalog"),
		kong.Description("A personal book catalog with OpenLibrary and Google Books enrichment."),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	loadEnvFiles()
	initLogging(false)
	initConfig()

	var cli CLI
	kctx := kong.Parse(&cli, kongOptions()...)

	if cli.Verbose {
		initLogging(true)
	}
	if err := updateGlobalConfig(&cli); err != nil {
		kctx.FatalIfErrorf(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, kctx); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// runCommand runs the parsed command with the context and a lazily opened
// catalog bound for its Run method.
func runCommand(ctx context.Context, kctx *kong.Context) error {
	provider := &storeProvider{ctx: ctx}
	defer provider.Close()

	return kctx.Run(
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindToProvider(provider.open),
	)
}

// loadEnvFiles reads .env files into the environment. .env.local wins over
// .env; variables already set in the shell win over both.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil {
			slog.Debug("Loaded env file", "file", name)
		}
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	bindings := map[string]string{
		"googlebooks.apikey": "GOOGLE_BOOKS_API_KEY",
		"database":           "BOOKCATALOG_DB",
		"datasette.token":    "DATASETTE_TOKEN",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) error {
	if cli.DB != "" {
		viper.Set("database", cli.DB)
		config.DatabasePath = cli.DB
	}
	if cli.UseCache {
		viper.Set("cache.enabled", true)
		config.CacheEnabled = true
	}
	if cli.CacheDB != "" {
		viper.Set("cache.dbfile", cli.CacheDB)
		config.CacheDBPath = cli.CacheDB
	}
	if cli.CacheTTL != "" {
		ttl, err := time.ParseDuration(cli.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl %q: %w", cli.CacheTTL, err)
		}
		viper.Set("cache.ttl", cli.CacheTTL)
		config.CacheTTL = ttl
	}
	return nil
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
