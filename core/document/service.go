package document

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

var (
	ErrNotFound       = core.NewNotFoundError("document")
	ErrAdminOnly      = core.NewPermissionError("only admins can delete documents")
	errUnknownCounter = errors.New("unknown document counter")
)

const maxRecent = 50

type (
	// Repository stores the documents of a single Kind.
	Repository interface {
		CreateDocument(ctx context.Context, doc Document) (Document, error)
		GetDocumentByID(ctx context.Context, id string) (Document, error)
		// QueryDocuments returns every document when filter is nil. A limit <= 0 means no limit.
		QueryDocuments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, limit int) ([]Document, error)
		DeleteDocument(ctx context.Context, id string) error
		IncrementCounter(ctx context.Context, id string, counter Counter) (Document, error)
		CountDocuments(ctx context.Context) (int, error)
	}

	Service interface {
		Kind() Kind
		Create(ctx context.Context, uploaderID string, nd NewDocument) (Document, error)
		Get(ctx context.Context, id string) (Document, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, limit int) ([]Document, error)
		Recent(ctx context.Context, limit int) ([]Document, error)
		Browse(ctx context.Context, sel Selection) (BrowseResult, error)
		// Delete removes a document. actorRoles are the roles of the acting user; only admins may delete.
		Delete(ctx context.Context, actorRoles []string, id string) error
		IncrementViews(ctx context.Context, id string) (Document, error)
		IncrementDownloads(ctx context.Context, id string) (Document, error)
		Count(ctx context.Context) (int, error)
	}

	service struct {
		kind Kind
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(kind Kind, repo Repository) Service {
	return &service{kind: kind, repo: repo}
}

func (svc *service) Kind() Kind { return svc.kind }

func (svc *service) Create(ctx context.Context, uploaderID string, nd NewDocument) (Document, error) {
	now := time.Now().UTC()
	doc := Document{
		Kind:        svc.kind,
		Title:       nd.Title,
		Description: nd.Description,
		Branch:      nd.Branch,
		Semester:    nd.Semester,
		Subject:     nd.Subject,
		Year:        nd.Year,
		Category:    nd.Category,
		Grade:       nd.Grade,
		FileURL:     nd.FileURL,
		UploadedBy:  uploaderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateDocument(ctx, doc)
}

func (svc *service) Get(ctx context.Context, id string) (Document, error) {
	return svc.repo.GetDocumentByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, limit int) ([]Document, error) {
	ordering = core.ValidOrderings(ordering, OrderingFields, defaultOrdering)
	return svc.repo.QueryDocuments(ctx, filter, ordering, limit)
}

func (svc *service) Recent(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	return svc.repo.QueryDocuments(ctx, nil, []core.DBOrdering{defaultOrdering}, limit)
}

// Browse fetches every document once and runs the drill-down over them.
func (svc *service) Browse(ctx context.Context, sel Selection) (BrowseResult, error) {
	sel.Clean()
	docs, err := svc.repo.QueryDocuments(ctx, nil, []core.DBOrdering{{Field: "title", Ascending: true}}, 0)
	if err != nil {
		return BrowseResult{}, errors.Wrap(err, "querying documents")
	}
	return Browse(docs, sel)
}

func (svc *service) Delete(ctx context.Context, actorRoles []string, id string) error {
	actor := user.User{Roles: actorRoles}
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	return svc.repo.DeleteDocument(ctx, id)
}

func (svc *service) IncrementViews(ctx context.Context, id string) (Document, error) {
	return svc.repo.IncrementCounter(ctx, id, CounterViews)
}

func (svc *service) IncrementDownloads(ctx context.Context, id string) (Document, error) {
	return svc.repo.IncrementCounter(ctx, id, CounterDownloads)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountDocuments(ctx)
}

// ValidCounter reports whether c is a known counter column.
func ValidCounter(c Counter) error {
	if c != CounterViews && c != CounterDownloads {
		return errUnknownCounter
	}
	return nil
}
