package services

import (
	"fmt"
	"strings"
	"visit-model-service/internal/domain"
)

type groupBucket struct {
	key  string
	week int
	date string
}

// GroupVisits splits occurrences into standalone visits and visit groups.
// Occurrences are bucketed by (grouping key, week index, date), then each
// bucket is split into clusters whose windows all overlap one another. A
// cluster of two or more becomes a group; the rest stay standalone. Output
// order follows the first appearance of each bucket.
func GroupVisits(occs []domain.VisitOccurrence) (standalone []domain.VisitOccurrence, groups []domain.VisitGroup) {
	order := make([]groupBucket, 0)
	buckets := make(map[groupBucket][]domain.VisitOccurrence)

	standalone = make([]domain.VisitOccurrence, 0, len(occs))
	groups = make([]domain.VisitGroup, 0)

	for _, o := range occs {
		key := strings.TrimSpace(o.GroupKey)
		if key == "" {
			standalone = append(standalone, o)
			continue
		}

		b := groupBucket{key: key, week: o.WeekIndex, date: o.Date.Format("2006-01-02")}
		if _, ok := buckets[b]; !ok {
			order = append(order, b)
		}
		buckets[b] = append(buckets[b], o)
	}

	for _, b := range order {
		n := 0
		for _, members := range overlapClusters(buckets[b]) {
			if len(members) < 2 {
				standalone = append(standalone, members...)
				continue
			}
			n++
			groups = append(groups, domain.VisitGroup{
				ID:     groupID(b, n),
				Visits: members,
			})
		}
	}

	return standalone, groups
}

// overlapClusters places each occurrence in the first cluster whose members
// all overlap it, opening a new cluster otherwise.
func overlapClusters(occs []domain.VisitOccurrence) [][]domain.VisitOccurrence {
	clusters := make([][]domain.VisitOccurrence, 0, 1)
next:
	for _, o := range occs {
		for i, c := range clusters {
			if overlapsAll(o, c) {
				clusters[i] = append(c, o)
				continue next
			}
		}
		clusters = append(clusters, []domain.VisitOccurrence{o})
	}
	return clusters
}

func overlapsAll(o domain.VisitOccurrence, members []domain.VisitOccurrence) bool {
	for _, m := range members {
		if !o.Window.Overlaps(m.Window) {
			return false
		}
	}
	return true
}

// groupID numbers the second and later groups of one bucket.
func groupID(b groupBucket, n int) string {
	id := fmt.Sprintf("%s_w%d_%s", b.key, b.week, strings.ReplaceAll(b.date, "-", ""))
	if n > 1 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}
