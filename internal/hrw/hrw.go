// Package hrw implements Rendezvous (highest-random-weight) hashing, used to
// route keys to pool members with minimal disruption when membership changes.
package hrw

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// TopK returns up to k members with the highest scores for key, best first.
// seed namespaces the scores so distinct pools route independently.
func TopK(key string, members []string, k int, seed string) []string {
	if k <= 0 || len(members) == 0 {
		return nil
	}
	if k > len(members) {
		k = len(members)
	}

	type entry struct {
		score uint64
		idx   int
	}
	top := make([]entry, 0, k)

	keyB := []byte(key)

	for i := range members {
		s := score64(keyB, members[i], seed)

		if len(top) < k {
			top = append(top, entry{score: s, idx: i})
			if len(top) == k {
				// keep the smallest selected score at top[0]
				sort.Slice(top, func(a, b int) bool { return top[a].score < top[b].score })
			}
			continue
		}

		if s > top[0].score {
			top[0] = entry{score: s, idx: i}
			sort.Slice(top, func(a, b int) bool { return top[a].score < top[b].score })
		}
	}

	sort.Slice(top, func(a, b int) bool { return top[a].score > top[b].score })

	out := make([]string, len(top))
	for i, e := range top {
		out[i] = members[e.idx]
	}
	return out
}

// Best returns the single best member for key. ok is false when members is
// empty.
func Best(key string, members []string, seed string) (best string, ok bool) {
	if len(members) == 0 {
		return best, false
	}
	return TopK(key, members, 1, seed)[0], true
}

func score64(key []byte, member string, seed string) uint64 {
	// 8-byte digest gives the uint64 score directly.
	h, _ := blake2b.New(8, nil)

	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}

	h.Write(key)
	h.Write([]byte{0})
	h.Write([]byte(member))

	return binary.BigEndian.Uint64(h.Sum(nil))
}
