package inmemdb

import (
	"context"
	"strings"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/document"
)

var documentComparators = map[string]func(a, b document.Document) int{
	"title":          func(a, b document.Document) int { return strings.Compare(a.Title, b.Title) },
	"branch":         func(a, b document.Document) int { return strings.Compare(a.Branch, b.Branch) },
	"semester":       func(a, b document.Document) int { return strings.Compare(a.Semester, b.Semester) },
	"subject":        func(a, b document.Document) int { return strings.Compare(a.Subject, b.Subject) },
	"year":           func(a, b document.Document) int { return compareInts(int64(a.Year), int64(b.Year)) },
	"view_count":     func(a, b document.Document) int { return compareInts(int64(a.ViewCount), int64(b.ViewCount)) },
	"download_count": func(a, b document.Document) int { return compareInts(int64(a.DownloadCount), int64(b.DownloadCount)) },
	"created_at":     func(a, b document.Document) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type documentRepository struct {
	db   *DB
	kind document.Kind
}

var _ document.Repository = (*documentRepository)(nil)

func NewDocumentRepository(db *DB, kind document.Kind) document.Repository {
	return &documentRepository{db: db, kind: kind}
}

func (repo *documentRepository) table() map[string]*document.Document {
	return repo.db.documents[repo.kind]
}

func (repo *documentRepository) CreateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doc.ID = newID()
	doc.Kind = repo.kind
	repo.table()[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) GetDocumentByID(_ context.Context, id string) (document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.table()[id]; ok {
		return *doc, nil
	}
	return document.Document{}, document.ErrNotFound
}

func matchDocument(filter *document.QueryFilter, doc *document.Document) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" && !containsFold(doc.Title, filter.Search) && !containsFold(doc.Subject, filter.Search) {
		return false
	}
	return (filter.Branch == "" || doc.Branch == filter.Branch) &&
		(filter.Semester == "" || doc.Semester == filter.Semester) &&
		(filter.Subject == "" || doc.Subject == filter.Subject) &&
		(filter.Category == "" || doc.Category == filter.Category) &&
		(filter.Grade == "" || doc.Grade == filter.Grade) &&
		(filter.Year == 0 || doc.Year == filter.Year)
}

func (repo *documentRepository) QueryDocuments(
	_ context.Context,
	filter *document.QueryFilter,
	ordering []core.DBOrdering,
	limit int,
) ([]document.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	docs := make([]document.Document, 0)
	for _, doc := range repo.table() {
		if matchDocument(filter, doc) {
			docs = append(docs, *doc)
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sortBy(docs, ordering, documentComparators)
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (repo *documentRepository) DeleteDocument(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.table()[id]; !ok {
		return document.ErrNotFound
	}
	delete(repo.table(), id)
	return nil
}

func (repo *documentRepository) IncrementCounter(_ context.Context, id string, counter document.Counter) (document.Document, error) {
	if err := document.ValidCounter(counter); err != nil {
		return document.Document{}, err
	}

	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	doc, ok := repo.table()[id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	switch counter {
	case document.CounterViews:
		doc.ViewCount++
	case document.CounterDownloads:
		doc.DownloadCount++
	}
	return *doc, nil
}

func (repo *documentRepository) CountDocuments(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.table()), nil
}
