package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/common"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

// capturePrintln records everything written through printlnFn.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		s := fmt.Sprintln(a...)
		out = append(out, strings.TrimSuffix(s, "\n"))
		return len(s), nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func joined(lines *[]string) string { return strings.Join(*lines, "\n") }

type flipProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *flipProbe) IsOnline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *flipProbe) set(v bool) {
	p.mu.Lock()
	p.online = v
	p.mu.Unlock()
}

type fakeRepo struct {
	mu    sync.Mutex
	calls []string

	books   []models.Book
	results []models.CatalogResult

	searchErr error
	addErr    error
	updateErr error

	addedResult models.CatalogResult
	manualYear  *int
	updated     models.Book
	deletedID   string
	photoID     string
	photoPath   string
	pushed      int
	pulled      int
}

func (f *fakeRepo) record(c string) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRepo) SearchOnline(_ context.Context, query string) ([]models.CatalogResult, error) {
	f.record("search:" + query)
	return f.results, f.searchErr
}

func (f *fakeRepo) AddFromCatalogResult(_ context.Context, r models.CatalogResult) (models.Book, error) {
	f.record("addResult")
	f.addedResult = r
	if f.addErr != nil {
		return models.Book{}, f.addErr
	}
	return models.Book{ID: r.Key, Title: r.Title}, nil
}

func (f *fakeRepo) AddManual(_ context.Context, title, author string, year *int) (models.Book, error) {
	f.record("addManual:" + title + "/" + author)
	f.manualYear = year
	if f.addErr != nil {
		return models.Book{}, f.addErr
	}
	return models.Book{ID: "m-1", Title: title, Author: author, Year: year, IsManualEntry: true}, nil
}

func (f *fakeRepo) Update(_ context.Context, b models.Book) error {
	f.record("update:" + b.ID)
	f.updated = b
	return f.updateErr
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.record("delete:" + id)
	f.deletedID = id
	return nil
}

func (f *fakeRepo) AttachPhoto(_ context.Context, id, path string) error {
	f.record("photo:" + id)
	f.photoID, f.photoPath = id, path
	return nil
}

func (f *fakeRepo) SyncUnsyncedToCloud(context.Context) (int, error) {
	f.record("push")
	return f.pushed, nil
}

func (f *fakeRepo) PullFromCloud(context.Context) (int, error) {
	f.record("pull")
	return f.pulled, nil
}

func (f *fakeRepo) stream(books []models.Book) <-chan []models.Book {
	ch := make(chan []models.Book, 1)
	ch <- books
	close(ch)
	return ch
}

func (f *fakeRepo) GetAllFavorites(context.Context) (<-chan []models.Book, error) {
	return f.stream(f.books), nil
}

func (f *fakeRepo) SearchFavorites(_ context.Context, text string) (<-chan []models.Book, error) {
	var out []models.Book
	for _, b := range f.books {
		if strings.Contains(strings.ToLower(b.Title+" "+b.Author), strings.ToLower(text)) {
			out = append(out, b)
		}
	}
	return f.stream(out), nil
}

func (f *fakeRepo) IsInFavorites(_ context.Context, id string) bool {
	for _, b := range f.books {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeRepo) Get(_ context.Context, id string) (models.Book, error) {
	for _, b := range f.books {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Book{}, fmt.Errorf("%w: book %s", common.ErrNotFound, id)
}

type fakeSession struct {
	userID   string
	token    string
	tokenErr error
}

func (s *fakeSession) CurrentUserID(context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

func (s *fakeSession) SignIn(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", common.ErrValidation
	}
	s.userID = userID
	return "tok-" + userID, nil
}

func (s *fakeSession) UseToken(_ context.Context, token string) (string, error) {
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	s.token = token
	s.userID = "from-token"
	return s.userID, nil
}

func (s *fakeSession) SignOut(context.Context) error {
	s.userID = ""
	return nil
}

func newTestApp(repo *fakeRepo, r *bufio.Reader) (*App, *fakeSession, *flipProbe) {
	sess := &fakeSession{}
	probe := &flipProbe{online: true}
	return &App{
		repo:    repo,
		session: sess,
		probe:   probe,
		log:     logging.Nop(),
		reader:  r,
		out:     io.Discard,
	}, sess, probe
}
