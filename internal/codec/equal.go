package codec

import (
	"bytes"
	"encoding/json"

	"github.com/lextri/tritime/internal/domain/temporal"
)

// Equal reports whether two timelines are equal under the interchange
// contract: same name and, per point in insertion order, the same event id,
// timestamps at serialized precision, event type and data payload. Timeline
// metadata is excluded since the codec injects bookkeeping keys.
func Equal(a, b *temporal.Timeline) bool {
	if a.Name() != b.Name() {
		return false
	}
	recsA := ToDocument(a).Points
	recsB := ToDocument(b).Points
	if len(recsA) != len(recsB) {
		return false
	}
	for i := range recsA {
		ja, err := json.Marshal(recsA[i])
		if err != nil {
			return false
		}
		jb, err := json.Marshal(recsB[i])
		if err != nil {
			return false
		}
		if !bytes.Equal(ja, jb) {
			return false
		}
	}
	return true
}
