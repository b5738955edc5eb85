package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	rec := func(subjID, name string, present bool) Record {
		return Record{SubjectID: subjID, SubjectName: name, Present: present}
	}

	tests := []struct {
		name    string
		records []Record
		want    Stats
	}{
		{
			name: "no records",
			want: Stats{Subjects: []SubjectStats{}},
		},
		{
			name:    "all present",
			records: []Record{rec("a", "Maths", true), rec("a", "Maths", true)},
			want: Stats{
				Total: 2, Present: 2, Percentage: 100,
				Subjects: []SubjectStats{{SubjectID: "a", SubjectName: "Maths", Total: 2, Present: 2, Percentage: 100}},
			},
		},
		{
			name: "rounded to two decimals",
			records: []Record{
				rec("b", "Physics", true),
				rec("a", "Maths", true),
				rec("a", "Maths", false),
				rec("a", "Maths", false),
			},
			want: Stats{
				Total: 4, Present: 2, Percentage: 50,
				Subjects: []SubjectStats{
					{SubjectID: "a", SubjectName: "Maths", Total: 3, Present: 1, Percentage: 33.33},
					{SubjectID: "b", SubjectName: "Physics", Total: 1, Present: 1, Percentage: 100},
				},
			},
		},
		{
			name:    "all absent",
			records: []Record{rec("a", "Maths", false), rec("a", "Maths", false), rec("a", "Maths", false)},
			want: Stats{
				Total:    3,
				Subjects: []SubjectStats{{SubjectID: "a", SubjectName: "Maths", Total: 3}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.records))
		})
	}
}
