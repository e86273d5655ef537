package books

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
	"github.com/lepinkainen/bookcatalog/internal/datastore"
	"github.com/lepinkainen/bookcatalog/internal/tui"
)

// EditOptions lists the fields to change. Zero values leave a field alone.
type EditOptions struct {
	Title          string
	Author         string
	Translator     string
	Year           int
	YearRead       int
	Notes          string
	Status         string
	Recommended    bool
	NotRecommended bool
}

// Edit applies opts to a stored book.
func Edit(ctx context.Context, store datastore.Catalog, id int64, opts EditOptions, w io.Writer) error {
	if opts.Recommended && opts.NotRecommended {
		return fmt.Errorf("--recommended and --not-recommended are mutually exclusive")
	}
	if opts.Status != "" && !catalog.ValidStatus(opts.Status) {
		return fmt.Errorf("invalid status %q", opts.Status)
	}

	book, err := store.GetBook(ctx, id)
	if err != nil {
		return err
	}

	if opts.Title != "" {
		book.Title = opts.Title
	}
	if opts.Author != "" {
		book.Author = opts.Author
	}
	if opts.Translator != "" {
		book.Translator = opts.Translator
	}
	if opts.Year != 0 {
		book.YearPublished = opts.Year
	}
	if opts.YearRead != 0 {
		book.YearRead = opts.YearRead
	}
	if opts.Notes != "" {
		book.MyNotes = opts.Notes
	}
	if opts.Status != "" {
		book.ReadingStatus = opts.Status
	}
	switch {
	case opts.Recommended:
		book.IsRecommended = true
	case opts.NotRecommended:
		book.IsRecommended = false
	}

	if err := store.UpdateBook(ctx, book); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Updated book %d: %s\n", book.ID, book.Title)
	return nil
}

// confirm is swapped in tests so no terminal program is started.
var confirm = tui.Confirm

// Delete removes a book, asking first unless force is set.
func Delete(ctx context.Context, store datastore.Catalog, id int64, force bool, w io.Writer) error {
	book, err := store.GetBook(ctx, id)
	if err != nil {
		return err
	}

	if !force {
		ok, err := confirm(fmt.Sprintf("Delete '%s'? [y/N]", book.Title))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(w, "Cancelled")
			return nil
		}
	}

	if err := store.DeleteBook(ctx, id); err != nil {
		return err
	}
	slog.Info("Deleted book", "id", id, "title", book.Title)
	_, _ = fmt.Fprintf(w, "Deleted: %s\n", book.Title)
	return nil
}

// Tag adds or removes a theme on a book.
func Tag(ctx context.Context, store datastore.Catalog, id int64, theme string, remove bool, w io.Writer) error {
	book, err := store.GetBook(ctx, id)
	if err != nil {
		return err
	}

	if remove {
		if err := store.UntagBook(ctx, id, theme); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "Removed '%s' from '%s'\n", theme, book.Title)
		return nil
	}

	if err := store.TagBook(ctx, id, theme); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Tagged '%s' with '%s'\n", book.Title, theme)
	return nil
}

// AddLink attaches a link to a book.
func AddLink(ctx context.Context, store datastore.Catalog, link catalog.Link, w io.Writer) error {
	book, err := store.GetBook(ctx, link.BookID)
	if err != nil {
		return err
	}

	if _, err := store.AddLink(ctx, &link); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Added link to '%s'\n", book.Title)
	return nil
}
