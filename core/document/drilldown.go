package document

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// Level is the next key the drill-down asks for.
type Level string

const (
	LevelBranch   Level = "branch"
	LevelSemester Level = "semester"
	LevelSubject  Level = "subject"
	LevelDocument Level = "document"
)

var (
	errSemesterWithoutBranch = core.NewValidationError(
		errors.New("select a branch before a semester"),
		core.FieldError{Field: "branch", Error: "select a branch before a semester"},
	)
	errSubjectWithoutSemester = core.NewValidationError(
		errors.New("select a semester before a subject"),
		core.FieldError{Field: "semester", Error: "select a semester before a subject"},
	)
)

// Selection holds the keys picked so far, in order: branch, then semester, then subject.
type Selection struct {
	Branch   string `query:"branch" json:"branch,omitempty"`
	Semester string `query:"semester" json:"semester,omitempty"`
	Subject  string `query:"subject" json:"subject,omitempty"`
}

func (sel *Selection) Clean() {
	sel.Branch = core.CleanString(sel.Branch)
	sel.Semester = core.CleanString(sel.Semester)
	sel.Subject = core.CleanString(sel.Subject)
}

// Option is one selectable value of the next key, with the number of documents under it.
type Option struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type BrowseResult struct {
	Level     Level      `json:"level"`
	Selection Selection  `json:"selection"`
	Options   []Option   `json:"options"`
	Documents []Document `json:"documents"`
}

// Browse narrows docs by the selection and lists the values available for the next key.
// Values compare as plain strings and options are sorted lexically.
// A selection matching nothing yields empty lists.
func Browse(docs []Document, sel Selection) (BrowseResult, error) {
	if sel.Semester != "" && sel.Branch == "" {
		return BrowseResult{}, errSemesterWithoutBranch
	}
	if sel.Subject != "" && sel.Semester == "" {
		return BrowseResult{}, errSubjectWithoutSemester
	}

	res := BrowseResult{
		Selection: sel,
		Options:   []Option{},
		Documents: []Document{},
	}

	var key func(Document) string
	switch {
	case sel.Branch == "":
		res.Level = LevelBranch
		key = func(d Document) string { return d.Branch }
	case sel.Semester == "":
		res.Level = LevelSemester
		key = func(d Document) string { return d.Semester }
	case sel.Subject == "":
		res.Level = LevelSubject
		key = func(d Document) string { return d.Subject }
	default:
		res.Level = LevelDocument
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		if !sel.matches(doc) {
			continue
		}
		if key == nil {
			res.Documents = append(res.Documents, doc)
			continue
		}
		if k := key(doc); k != "" {
			counts[k]++
		}
	}

	for k, n := range counts {
		res.Options = append(res.Options, Option{Key: k, Count: n})
	}
	sort.Slice(res.Options, func(i, j int) bool { return res.Options[i].Key < res.Options[j].Key })
	return res, nil
}

func (sel Selection) matches(doc Document) bool {
	return (sel.Branch == "" || doc.Branch == sel.Branch) &&
		(sel.Semester == "" || doc.Semester == sel.Semester) &&
		(sel.Subject == "" || doc.Subject == sel.Subject)
}
