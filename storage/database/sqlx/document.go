package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/document"
)

const documentColumns = "id, title, description, branch, semester, subject, year, category, grade, file_url, " +
	"view_count, download_count, uploaded_by, created_at, updated_at"

type documentRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Description   string      `db:"description"`
	Branch        string      `db:"branch"`
	Semester      string      `db:"semester"`
	Subject       string      `db:"subject"`
	Year          null.Int    `db:"year"`
	Category      string      `db:"category"`
	Grade         null.String `db:"grade"`
	FileURL       string      `db:"file_url"`
	ViewCount     int         `db:"view_count"`
	DownloadCount int         `db:"download_count"`
	UploadedBy    null.String `db:"uploaded_by"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

// documentRepository stores one document.Kind in its own table.
type documentRepository struct {
	db    *sqlx.DB
	kind  document.Kind
	table string
}

var _ document.Repository = (*documentRepository)(nil)

func NewDocumentRepository(db *sqlx.DB, kind document.Kind) document.Repository {
	return &documentRepository{db: db, kind: kind, table: kind.Table()}
}

func (repo documentRepository) toRow(doc document.Document) documentRow {
	return documentRow{
		ID:            doc.ID,
		Title:         doc.Title,
		Description:   doc.Description,
		Branch:        doc.Branch,
		Semester:      doc.Semester,
		Subject:       doc.Subject,
		Year:          null.NewInt(doc.Year, doc.Year != 0),
		Category:      doc.Category,
		Grade:         null.NewString(doc.Grade, doc.Grade != ""),
		FileURL:       doc.FileURL,
		ViewCount:     doc.ViewCount,
		DownloadCount: doc.DownloadCount,
		UploadedBy:    null.NewString(doc.UploadedBy, doc.UploadedBy != ""),
		CreatedAt:     doc.CreatedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),
	}
}

func (repo documentRepository) fromRow(row documentRow) document.Document {
	return document.Document{
		ID:            row.ID,
		Kind:          repo.kind,
		Title:         row.Title,
		Description:   row.Description,
		Branch:        row.Branch,
		Semester:      row.Semester,
		Subject:       row.Subject,
		Year:          row.Year.Int,
		Category:      row.Category,
		Grade:         row.Grade.String,
		FileURL:       row.FileURL,
		ViewCount:     row.ViewCount,
		DownloadCount: row.DownloadCount,
		UploadedBy:    row.UploadedBy.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (repo documentRepository) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	doc.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO `+repo.table+` (`+documentColumns+`)
		VALUES (:id, :title, :description, :branch, :semester, :subject, :year, :category, :grade, :file_url,
			:view_count, :download_count, :uploaded_by, :created_at, :updated_at)`,
		repo.toRow(doc))
	if err != nil {
		return document.Document{}, errors.Wrap(err, "inserting "+string(repo.kind))
	}
	doc.Kind = repo.kind
	return doc, nil
}

func (repo documentRepository) GetDocumentByID(ctx context.Context, id string) (document.Document, error) {
	if !validID(id) {
		return document.Document{}, document.ErrNotFound
	}
	var row documentRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+documentColumns+" FROM "+repo.table+" WHERE id = $1", id)
	if err != nil {
		return document.Document{}, trapNoRowsErr(err, document.ErrNotFound, "getting "+string(repo.kind))
	}
	return repo.fromRow(row), nil
}

func (repo documentRepository) QueryDocuments(
	ctx context.Context,
	filter *document.QueryFilter,
	ordering []core.DBOrdering,
	limit int,
) ([]document.Document, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			w.add("(title ILIKE $%[1]d OR subject ILIKE $%[1]d)", "%"+filter.Search+"%")
		}
		if filter.Branch != "" {
			w.add("branch = $%d", filter.Branch)
		}
		if filter.Semester != "" {
			w.add("semester = $%d", filter.Semester)
		}
		if filter.Subject != "" {
			w.add("subject = $%d", filter.Subject)
		}
		if filter.Category != "" {
			w.add("category = $%d", filter.Category)
		}
		if filter.Grade != "" {
			w.add("grade = $%d", filter.Grade)
		}
		if filter.Year != 0 {
			w.add("year = $%d", filter.Year)
		}
	}

	q := "SELECT " + documentColumns + " FROM " + repo.table + w.String()
	q += " ORDER BY " + core.OrderByClause(ordering, document.OrderingFields, core.DBOrdering{Field: "created_at"})
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}

	var rows []documentRow
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying "+repo.table)
	}
	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, repo.fromRow(row))
	}
	return docs, nil
}

func (repo documentRepository) DeleteDocument(ctx context.Context, id string) error {
	if !validID(id) {
		return document.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM "+repo.table+" WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting "+string(repo.kind))
	}
	return checkAffected(res, document.ErrNotFound, "deleting "+string(repo.kind))
}

func (repo documentRepository) IncrementCounter(ctx context.Context, id string, counter document.Counter) (document.Document, error) {
	if err := document.ValidCounter(counter); err != nil {
		return document.Document{}, err
	}
	if !validID(id) {
		return document.Document{}, document.ErrNotFound
	}
	col := string(counter)
	var row documentRow
	err := repo.db.GetContext(ctx, &row,
		"UPDATE "+repo.table+" SET "+col+" = "+col+" + 1 WHERE id = $1 RETURNING "+documentColumns, id)
	if err != nil {
		return document.Document{}, trapNoRowsErr(err, document.ErrNotFound, "incrementing "+col)
	}
	return repo.fromRow(row), nil
}

func (repo documentRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+repo.table)
	return n, errors.Wrap(err, "counting "+repo.table)
}
