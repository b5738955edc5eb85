package attendance

import (
	"sort"

	"github.com/Shubham414kumar/vidyasphere/core"
)

type SubjectStats struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Total       int     `json:"total"`
	Present     int     `json:"present"`
	Percentage  float64 `json:"percentage"`
}

type Stats struct {
	Total      int            `json:"total"`
	Present    int            `json:"present"`
	Percentage float64        `json:"percentage"`
	Subjects   []SubjectStats `json:"subjects"`
}

func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return core.Round2(float64(present) * 100 / float64(total))
}

// ComputeStats sums the records overall and per subject. Subjects are sorted by name.
func ComputeStats(records []Record) Stats {
	stats := Stats{Subjects: []SubjectStats{}}
	bySubject := make(map[string]*SubjectStats)

	for _, rec := range records {
		ss, ok := bySubject[rec.SubjectID]
		if !ok {
			ss = &SubjectStats{SubjectID: rec.SubjectID, SubjectName: rec.SubjectName}
			bySubject[rec.SubjectID] = ss
		}
		stats.Total++
		ss.Total++
		if rec.Present {
			stats.Present++
			ss.Present++
		}
	}

	stats.Percentage = percentage(stats.Present, stats.Total)
	for _, ss := range bySubject {
		ss.Percentage = percentage(ss.Present, ss.Total)
		stats.Subjects = append(stats.Subjects, *ss)
	}
	sort.Slice(stats.Subjects, func(i, j int) bool {
		if stats.Subjects[i].SubjectName == stats.Subjects[j].SubjectName {
			return stats.Subjects[i].SubjectID < stats.Subjects[j].SubjectID
		}
		return stats.Subjects[i].SubjectName < stats.Subjects[j].SubjectName
	})
	return stats
}
