// Package workitem normalizes (member, host) pairs into the pipeline's unit
// of work.
package workitem

import "fmt"

// WorkItem identifies one member's history to fetch from one host.
type WorkItem struct {
	MemberID int64
	HostID   string
}

// Key returns the composite identity used for deduplication.
func (w WorkItem) Key() string {
	return fmt.Sprintf("%d:%s", w.MemberID, w.HostID)
}

// Build deduplicates pairs by (MemberID, HostID), preserving first-seen
// order so the same input always produces the same sequence. Pairs missing
// either identifier are dropped. An empty result means there is nothing to
// process; it is not an error.
func Build(pairs []WorkItem) []WorkItem {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]WorkItem, 0, len(pairs))
	for _, pair := range pairs {
		if pair.MemberID == 0 || pair.HostID == "" {
			continue
		}
		key := pair.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, pair)
	}
	return out
}
