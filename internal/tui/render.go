package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookcatalog/internal/catalog"
)

var (
	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Width(6).
		Align(lipgloss.Right)

	bookTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254"))

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	recommendedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("178"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Width(14)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")).
			Width(defaultListWidth)
)

// BookLine renders one row of the book listing.
func BookLine(b catalog.Book) string {
	mark := " "
	if b.IsRecommended {
		mark = recommendedStyle.Render("*")
	}

	line := fmt.Sprintf("%s %s %s", idStyle.Render(fmt.Sprintf("[%d]", b.ID)), mark, bookTitleStyle.Render(b.Title))
	if b.Author != "" {
		line += " by " + authorStyle.Render(b.Author)
	}
	if b.ReadingStatus != "" && b.ReadingStatus != catalog.StatusRead {
		line += fmt.Sprintf(" (%s)", b.ReadingStatus)
	}
	return line
}

// BookDetail renders every populated field of a book.
func BookDetail(b *catalog.Book) string {
	var sb strings.Builder

	heading := b.Title
	if b.Subtitle != "" {
		heading += ": " + b.Subtitle
	}
	sb.WriteString(headerStyle.Render(heading))
	sb.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	number := func(label string, value int) {
		if value > 0 {
			field(label, fmt.Sprintf("%d", value))
		}
	}

	field("ID", fmt.Sprintf("%d", b.ID))
	field("Author", b.Author)
	field("Also by", b.AdditionalAuthors)
	field("Translator", b.Translator)
	field("ISBN", b.ISBN)
	field("ISBN-13", b.ISBN13)
	field("OpenLibrary", b.OpenLibraryKey)
	field("Publisher", b.Publisher)
	number("Published", b.YearPublished)
	number("Original year", b.OriginalYear)
	number("Pages", b.PageCount)
	field("Language", b.Language)
	field("Format", b.Format)
	field("Status", b.ReadingStatus)
	field("Started", b.DateStarted)
	field("Finished", b.DateRead)
	number("Year read", b.YearRead)
	number("Re-reads", b.Reread)
	if b.SeriesName != "" {
		series := b.SeriesName
		if b.SeriesPosition > 0 {
			series += fmt.Sprintf(" #%g", b.SeriesPosition)
		}
		field("Series", series)
	}
	if b.IsRecommended {
		field("Recommended", recommendedStyle.Render("yes"))
	}
	field("Cover", b.CoverURL)
	field("Themes", strings.Join(b.Themes, ", "))

	for _, l := range b.Links {
		label := l.URL
		if l.Title != "" {
			label = l.Title + " <" + l.URL + ">"
		}
		field("Link ("+l.Type+")", label)
	}

	if b.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(summaryStyle.Render(b.Summary))
		sb.WriteString("\n")
	}
	if b.MyNotes != "" {
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render("Notes"))
		sb.WriteString("\n")
		sb.WriteString(summaryStyle.Render(b.MyNotes))
		sb.WriteString("\n")
	}

	return sb.String()
}

// ThemeLine renders one row of the theme listing.
func ThemeLine(t catalog.ThemeCount) string {
	return fmt.Sprintf("%s %s %s",
		labelStyle.Render(t.Slug),
		bookTitleStyle.Render(t.Name),
		helpStyle.Copy().MarginTop(0).Render(fmt.Sprintf("(%d books)", t.BookCount)))
}
