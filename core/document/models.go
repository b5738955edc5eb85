package document

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// Kind tells notes and previous year question papers (PYQs) apart. Both share one shape.
type Kind string

const (
	KindNote Kind = "note"
	KindPYQ  Kind = "pyq"
)

func (k Kind) Valid() bool { return k == KindNote || k == KindPYQ }

// Table is the name of the table holding documents of this kind.
func (k Kind) Table() string {
	if k == KindPYQ {
		return "pyqs"
	}
	return "notes"
}

type Document struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Branch        string    `json:"branch"`
	Semester      string    `json:"semester"`
	Subject       string    `json:"subject"`
	Year          int       `json:"year,omitempty"`
	Category      string    `json:"category"`
	Grade         string    `json:"grade,omitempty"`
	FileURL       string    `json:"file_url"`
	ViewCount     int       `json:"view_count"`
	DownloadCount int       `json:"download_count"`
	UploadedBy    string    `json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewDocument contains information needed to publish a document.
type NewDocument struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Branch      string `json:"branch" validate:"required,max=40"`
	Semester    string `json:"semester" validate:"required,semester"`
	Subject     string `json:"subject" validate:"required,max=120"`
	Year        int    `json:"year" validate:"omitempty,min=1950,max=2100"`
	Category    string `json:"category" validate:"max=60"`
	Grade       string `json:"grade" validate:"max=20"`
	FileURL     string `json:"file_url" validate:"required,url"`
}

func (nd *NewDocument) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	nd.Description = core.CleanString(nd.Description)
	nd.Branch = core.CleanString(nd.Branch)
	nd.Semester = core.CleanString(nd.Semester)
	nd.Subject = core.CleanString(nd.Subject)
	nd.Category = core.CleanString(nd.Category)
	nd.Grade = core.CleanString(nd.Grade)
	nd.FileURL = core.CleanString(nd.FileURL)
	return validate.Struct(nd)
}

// QueryFilter applies AND on its non-empty fields. Search does a case-insensitive match on Title or Subject.
type QueryFilter struct {
	Search   string `query:"search"`
	Branch   string `query:"branch"`
	Semester string `query:"semester"`
	Subject  string `query:"subject"`
	Category string `query:"category"`
	Grade    string `query:"grade"`
	Year     int    `query:"year"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Branch = core.CleanString(qf.Branch)
	qf.Semester = core.CleanString(qf.Semester)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Category = core.CleanString(qf.Category)
	qf.Grade = core.CleanString(qf.Grade)
}

// Counter names a document counter column.
type Counter string

const (
	CounterViews     Counter = "view_count"
	CounterDownloads Counter = "download_count"
)

var (
	// OrderingFields are the fields documents may be ordered by.
	OrderingFields = map[string]bool{
		"title":          true,
		"branch":         true,
		"semester":       true,
		"subject":        true,
		"year":           true,
		"view_count":     true,
		"download_count": true,
		"created_at":     true,
	}
	defaultOrdering = core.DBOrdering{Field: "created_at"}
)
