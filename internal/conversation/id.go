// Package conversation derives the identity of a one-to-one chat channel
// from the unordered pair of its participants.
package conversation

import (
	"sort"
	"strconv"
	"strings"
)

// Separator joins the two participant ids of a conversation id.
const Separator = "__"

// ID returns the canonical conversation id for participants a and b.
// ID(a, b) == ID(b, a) for all a, b.
//
// Ids free of '_' are joined as "a__b" (sorted). Any id containing '_' could
// make the plain join ambiguous, so such pairs are length-prefixed instead:
// "<len>:<a>__<len>:<b>". The plain form always has exactly two underscores
// and the prefixed form at least three, so the two forms never collide.
func ID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)

	if !strings.Contains(a, "_") && !strings.Contains(b, "_") {
		return pair[0] + Separator + pair[1]
	}

	var sb strings.Builder
	for i, id := range pair {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(strconv.Itoa(len(id)))
		sb.WriteByte(':')
		sb.WriteString(id)
	}
	return sb.String()
}
