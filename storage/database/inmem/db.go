// Package inmemdb implements the repositories in process memory.
// It backs tests and local runs without Postgres.
package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/attendance"
	"github.com/Shubham414kumar/vidyasphere/core/batch"
	"github.com/Shubham414kumar/vidyasphere/core/document"
	"github.com/Shubham414kumar/vidyasphere/core/donation"
	"github.com/Shubham414kumar/vidyasphere/core/profile"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

// DB holds every table behind one lock, so multi-table writes are atomic.
type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	userRoles   map[string]*user.RoleAssignment
	profiles    map[string]*profile.Profile // by user ID
	documents   map[document.Kind]map[string]*document.Document
	batches     map[string]*batch.Batch
	enrollments map[string]*batch.Enrollment
	subjects    map[string]*attendance.Subject
	records     map[string]*attendance.Record
	donations   map[string]*donation.Donation // by order ID
}

func Open() *DB {
	return &DB{
		users:     make(map[string]*user.User),
		userRoles: make(map[string]*user.RoleAssignment),
		profiles:  make(map[string]*profile.Profile),
		documents: map[document.Kind]map[string]*document.Document{
			document.KindNote: make(map[string]*document.Document),
			document.KindPYQ:  make(map[string]*document.Document),
		},
		batches:     make(map[string]*batch.Batch),
		enrollments: make(map[string]*batch.Enrollment),
		subjects:    make(map[string]*attendance.Subject),
		records:     make(map[string]*attendance.Record),
		donations:   make(map[string]*donation.Donation),
	}
}

func newID() string { return uuid.New().String() }

// sortBy orders items by the first ordering whose field has a comparator in less.
// Orderings without a comparator are ignored.
func sortBy[T any](items []T, orderings []core.DBOrdering, less map[string]func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range orderings {
			cmp, ok := less[ord.Field]
			if !ok {
				continue
			}
			c := cmp(items[i], items[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
