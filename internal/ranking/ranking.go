// Package ranking derives dense ranks for the collection from current
// rating values. Ranks are a read-time projection: they are recomputed on
// every call and never written back to storage.
package ranking

import (
	"sort"

	"github.com/user/filmshelf/internal/model"
)

// Assign computes a dense rank for every rated movie and returns the
// collection ordered best-first. With N rated movies the highest rating
// receives rank N and the lowest rank 1, so a bigger rank number means a
// better movie. Unrated movies carry no rank and sort after all rated ones.
//
// Ties on rating break by ascending id, so the movie added earlier ranks
// higher. The order is deterministic for any input.
//
// Ranks are written onto the movies themselves; the ordering of the input
// slice is left untouched.
func Assign(movies []*model.Movie) []*model.Movie {
	rated := make([]*model.Movie, 0, len(movies))
	unrated := make([]*model.Movie, 0)
	for _, m := range movies {
		if m.Rated() {
			rated = append(rated, m)
		} else {
			unrated = append(unrated, m)
		}
	}

	sort.SliceStable(rated, func(i, j int) bool {
		if *rated[i].Rating != *rated[j].Rating {
			return *rated[i].Rating > *rated[j].Rating
		}
		return rated[i].ID < rated[j].ID
	})

	n := len(rated)
	for i, m := range rated {
		m.Ranking = n - i
	}
	for _, m := range unrated {
		m.Ranking = 0
	}

	sort.SliceStable(unrated, func(i, j int) bool {
		return unrated[i].ID < unrated[j].ID
	})

	return append(rated, unrated...)
}
