package matching

import (
	"errors"
	"math/rand"
)

// ErrUnsatisfiable is returned when no assignment can honor the exclusions
var ErrUnsatisfiable = errors.New("no valid assignment satisfies the exclusions")

// maxAttempts bounds the shuffle-retry loop. With satisfiable constraint
// sets a valid derangement appears within a handful of shuffles.
const maxAttempts = 1000

// Match assigns each giver a receiver: a random derangement of ids that
// avoids every excluded (giver, receiver) pair. Requires at least two ids.
func Match(ids []string, excluded map[string]map[string]bool) (map[string]string, error) {
	if len(ids) < 2 {
		return nil, ErrUnsatisfiable
	}

	receivers := make([]string, len(ids))
	copy(receivers, ids)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		rand.Shuffle(len(receivers), func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})

		if valid(ids, receivers, excluded) {
			assignments := make(map[string]string, len(ids))
			for i, giver := range ids {
				assignments[giver] = receivers[i]
			}
			return assignments, nil
		}
	}

	return nil, ErrUnsatisfiable
}

func valid(givers, receivers []string, excluded map[string]map[string]bool) bool {
	for i, giver := range givers {
		receiver := receivers[i]
		if giver == receiver {
			return false
		}
		if excluded[giver][receiver] {
			return false
		}
	}
	return true
}
