package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/client"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/common"
	"github.com/dmitrijs2005/pocketlibrary/internal/filex"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// report prints err in user terms and returns it unchanged.
func report(err error) error {
	var searchErr *client.CatalogSearchError
	switch {
	case errors.Is(err, common.ErrOffline):
		printlnFn("You are offline. Saved books are still available.")
	case errors.As(err, &searchErr):
		printlnFn(searchErr.Error())
	default:
		printlnFn("error:", err)
	}
	return err
}

func (a *App) Search(ctx context.Context, query string) error {
	results, err := a.repo.SearchOnline(ctx, query)
	if err != nil {
		return report(err)
	}

	a.results = results
	if len(results) == 0 {
		printlnFn("No results.")
		return nil
	}

	for i, r := range results {
		line := fmt.Sprintf("%2d. %s", i+1, r.Title)
		if authors := r.AuthorLine(); authors != "" {
			line += " by " + authors
		}
		if r.FirstPublishYear != nil {
			line += fmt.Sprintf(" (%d)", *r.FirstPublishYear)
		}
		if a.repo.IsInFavorites(ctx, r.Key) {
			line += " [saved]"
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Add(ctx context.Context, n string) error {
	i, err := strconv.Atoi(n)
	if err != nil || i < 1 || i > len(a.results) {
		return report(fmt.Errorf("%w: no search result %q", common.ErrValidation, n))
	}

	b, err := a.repo.AddFromCatalogResult(ctx, a.results[i-1])
	if err != nil {
		return report(err)
	}

	printlnFn("Saved:", b.Title)
	return nil
}

func (a *App) AddManual(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return report(err)
	}
	author, err := GetSimpleText(a.reader, "Author", a.out)
	if err != nil {
		return report(err)
	}
	yearText, err := GetSimpleText(a.reader, "Year (optional)", a.out)
	if err != nil {
		return report(err)
	}
	year, err := ParseYear(yearText)
	if err != nil {
		return report(err)
	}

	b, err := a.repo.AddManual(ctx, title, author, year)
	if err != nil {
		return report(err)
	}

	printlnFn("Saved:", b.Title, "id:", b.ID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	books, err := a.snapshot(ctx, "")
	if err != nil {
		return report(err)
	}
	printBooks(books)
	return nil
}

func (a *App) Find(ctx context.Context, text string) error {
	books, err := a.snapshot(ctx, text)
	if err != nil {
		return report(err)
	}
	printBooks(books)
	return nil
}

func (a *App) Show(ctx context.Context, ref string) error {
	b, err := a.resolve(ctx, ref)
	if err != nil {
		return report(err)
	}

	printlnFn("ID:     ", b.ID)
	printlnFn("Title:  ", b.Title)
	printlnFn("Author: ", b.Author)
	printlnFn("Year:   ", orDash(b.YearString()))
	printlnFn("Cover:  ", orDash(b.CoverURL))
	printlnFn("Photo:  ", orDash(b.PersonalPhotoPath))
	printlnFn("Manual: ", b.IsManualEntry)
	printlnFn("Added:  ", b.CreatedAt.Local().Format("2006-01-02 15:04"))
	printlnFn("Synced: ", b.SyncedToCloud)
	return nil
}

// Edit prompts for each editable field. Empty input keeps the current
// value; "-" clears the year.
func (a *App) Edit(ctx context.Context, ref string) error {
	b, err := a.resolve(ctx, ref)
	if err != nil {
		return report(err)
	}

	title, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s]", b.Title), a.out)
	if err != nil {
		return report(err)
	}
	author, err := GetSimpleText(a.reader, fmt.Sprintf("Author [%s]", b.Author), a.out)
	if err != nil {
		return report(err)
	}
	yearText, err := GetSimpleText(a.reader, fmt.Sprintf("Year [%s] (- to clear)", orDash(b.YearString())), a.out)
	if err != nil {
		return report(err)
	}

	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	switch yearText {
	case "":
	case "-":
		b.Year = nil
	default:
		if b.Year, err = ParseYear(yearText); err != nil {
			return report(err)
		}
	}

	if err := a.repo.Update(ctx, b); err != nil {
		return report(err)
	}

	printlnFn("Updated:", b.Title)
	return nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	b, err := a.resolve(ctx, ref)
	if err != nil {
		return report(err)
	}

	if err := a.repo.Delete(ctx, b.ID); err != nil {
		return report(err)
	}

	printlnFn("Deleted:", b.Title)
	return nil
}

// Photo copies the picked file into the photo directory under a fresh name
// and attaches the copy to the book.
func (a *App) Photo(ctx context.Context, ref, path string) error {
	b, err := a.resolve(ctx, ref)
	if err != nil {
		return report(err)
	}

	dst, err := filex.ImportFile(path, a.photosDir, uuid.NewString())
	if err != nil {
		return report(err)
	}

	if err := a.repo.AttachPhoto(ctx, b.ID, dst); err != nil {
		return report(err)
	}

	printlnFn("Photo attached to", b.Title)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if !a.probe.IsOnline() {
		return report(common.ErrOffline)
	}
	if _, ok := a.session.CurrentUserID(ctx); !ok {
		printlnFn("Not signed in. Use login or token first.")
		return nil
	}

	n, err := a.repo.SyncUnsyncedToCloud(ctx)
	if err != nil {
		return report(err)
	}

	printlnFn(fmt.Sprintf("Pushed %d book(s).", n))
	return nil
}

func (a *App) Pull(ctx context.Context) error {
	n, err := a.repo.PullFromCloud(ctx)
	if err != nil {
		return report(err)
	}

	printlnFn(fmt.Sprintf("Merged %d book(s) from the cloud.", n))
	return nil
}

// Login starts a session for userID, prompting when it is empty, and
// prints the token so the same session can be used on another device.
func (a *App) Login(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		var err error
		if userID, err = GetSimpleText(a.reader, "User id", a.out); err != nil {
			return report(err)
		}
	}

	token, err := a.session.SignIn(ctx, strings.TrimSpace(userID))
	if err != nil {
		return report(err)
	}

	printlnFn("Signed in as", strings.TrimSpace(userID))
	printlnFn("Session token:", token)
	a.syncSession(ctx)
	return nil
}

func (a *App) Token(ctx context.Context) error {
	token, err := GetToken(a.out)
	if err != nil {
		return report(err)
	}

	userID, err := a.session.UseToken(ctx, token)
	if err != nil {
		return report(err)
	}

	printlnFn("Signed in as", userID)
	a.syncSession(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return report(err)
	}
	printlnFn("Signed out. Saved books stay on this device.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	books, err := a.snapshot(ctx, "")
	if err != nil {
		return report(err)
	}

	unsynced := 0
	for _, b := range books {
		if !b.SyncedToCloud {
			unsynced++
		}
	}

	user, ok := a.session.CurrentUserID(ctx)
	if !ok {
		user = "-"
	}

	printlnFn("Mode:   ", orDash(string(a.Mode())))
	printlnFn("User:   ", user)
	printlnFn("Cloud:  ", orDash(a.cloudBackend()))
	printlnFn(fmt.Sprintf("Books:   %d (%d unsynced)", len(books), unsynced))
	return nil
}

func (a *App) cloudBackend() string {
	if a.config == nil {
		return ""
	}
	return a.config.CloudBackend
}

// snapshot takes the first emission of the favorites stream, filtered by
// text when it is not empty, and stops the stream.
func (a *App) snapshot(ctx context.Context, text string) ([]models.Book, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		ch  <-chan []models.Book
		err error
	)
	if strings.TrimSpace(text) == "" {
		ch, err = a.repo.GetAllFavorites(ctx)
	} else {
		ch, err = a.repo.SearchFavorites(ctx, text)
	}
	if err != nil {
		return nil, err
	}

	select {
	case books, ok := <-ch:
		if !ok {
			return nil, context.Canceled
		}
		return books, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve finds a book by exact id, falling back to the best fuzzy title
// match.
func (a *App) resolve(ctx context.Context, ref string) (models.Book, error) {
	ref = strings.TrimSpace(ref)

	b, err := a.repo.Get(ctx, ref)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return models.Book{}, err
	}

	books, err := a.snapshot(ctx, "")
	if err != nil {
		return models.Book{}, err
	}

	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}

	matches := fuzzy.Find(ref, titles)
	if len(matches) == 0 {
		return models.Book{}, fmt.Errorf("%w: no book matches %q", common.ErrNotFound, ref)
	}
	return books[matches[0].Index], nil
}

func printBooks(books []models.Book) {
	if len(books) == 0 {
		printlnFn("No saved books.")
		return
	}

	for _, b := range books {
		line := fmt.Sprintf("%s  %s by %s", b.ID, b.Title, b.Author)
		if b.Year != nil {
			line += " (" + b.YearString() + ")"
		}
		if !b.SyncedToCloud {
			line += " *"
		}
		printlnFn(line)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
