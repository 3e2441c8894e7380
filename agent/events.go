package agent

import "sync"

// EventKind identifies a progression change worth telling the host about.
type EventKind string

const (
	EventProductUnlocked  EventKind = "product_unlocked"
	EventUpgradeAvailable EventKind = "upgrade_available"
)

// Event is a progression change detected by diffing consecutive query
// results for the same company and niche.
type Event struct {
	Kind      EventKind
	CompanyID string
	NicheID   string
	Ref       string // SKU or upgrade id
}

// snapshot is what the tracker remembers from the previous query.
type snapshot struct {
	products map[string]bool
	upgrades map[string]bool
}

type snapshotKey struct {
	company string
	niche   string
}

// EventTracker diffs query results per (company, niche). The first
// observation only sets the baseline and yields no events.
type EventTracker struct {
	mu   sync.Mutex
	last map[snapshotKey]*snapshot
}

func NewEventTracker() *EventTracker {
	return &EventTracker{last: make(map[snapshotKey]*snapshot)}
}

// ObserveProducts records the unlocked SKUs and returns one event per SKU
// that was not unlocked last time.
func (t *EventTracker) ObserveProducts(companyID, nicheID string, skus []string) []Event {
	return t.observe(companyID, nicheID, skus, EventProductUnlocked,
		func(s *snapshot) *map[string]bool { return &s.products })
}

// ObserveUpgrades does the same for available upgrade ids.
func (t *EventTracker) ObserveUpgrades(companyID, nicheID string, ids []string) []Event {
	return t.observe(companyID, nicheID, ids, EventUpgradeAvailable,
		func(s *snapshot) *map[string]bool { return &s.upgrades })
}

func (t *EventTracker) observe(companyID, nicheID string, refs []string, kind EventKind, field func(*snapshot) *map[string]bool) []Event {
	// Anonymous states can't be tracked across queries.
	if companyID == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := snapshotKey{companyID, nicheID}
	snap, ok := t.last[key]
	if !ok {
		snap = &snapshot{}
		t.last[key] = snap
	}
	prev := *field(snap)

	cur := make(map[string]bool, len(refs))
	var events []Event
	for _, r := range refs {
		cur[r] = true
		if prev != nil && !prev[r] {
			events = append(events, Event{Kind: kind, CompanyID: companyID, NicheID: nicheID, Ref: r})
		}
	}
	*field(snap) = cur
	return events
}

