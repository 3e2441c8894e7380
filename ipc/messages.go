package ipc

import (
	"github.com/nstehr/venture/venture-core/ai"
	"github.com/nstehr/venture/venture-core/model"
)

// Message types understood by the sidecar. Requests on the left of each
// pair, replies on the right.
const (
	TypeHello         = "hello"
	TypeAck           = "ack"
	TypeTick          = "tick"
	TypeDecisions     = "decisions"
	TypeUnlocksQuery  = "unlocks_query"
	TypeUnlocks       = "unlocks"
	TypeUpgradesQuery = "upgrades_query"
	TypeUpgrades      = "upgrades"
	TypeError         = "error"
)

type HelloMessage struct {
	Client  string `json:"client"`
	Version string `json:"version,omitempty"`
}

type AckMessage struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId,omitempty"`
}

// TickMessage asks for one decision per brain. TickID is echoed back and
// keys the decision log; the sidecar assigns one when empty. Seed makes the
// tie-break rolls reproducible for a given tick.
type TickMessage struct {
	TickID string `json:"tickId,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
	ai.TickInput
}

type DecisionsMessage struct {
	TickID    string           `json:"tickId"`
	Decisions []model.Decision `json:"decisions"`
}

// UnlocksQuery asks which SKUs of a niche a company may sell.
type UnlocksQuery struct {
	NicheID string             `json:"nicheId"`
	State   model.CompanyState `json:"state"`
}

type UnlocksMessage struct {
	NicheID   string   `json:"nicheId"`
	CompanyID string   `json:"companyId,omitempty"`
	Unlocked  []string `json:"unlocked"`
	// NewlyUnlocked lists SKUs that were locked on this session's previous
	// query for the same company and niche.
	NewlyUnlocked []string `json:"newlyUnlocked,omitempty"`
}

type UpgradesQuery struct {
	NicheID string             `json:"nicheId"`
	State   model.CompanyState `json:"state"`
}

type UpgradesMessage struct {
	NicheID        string   `json:"nicheId"`
	CompanyID      string   `json:"companyId,omitempty"`
	Available      []string `json:"available"`
	NewlyAvailable []string `json:"newlyAvailable,omitempty"`
}

// ErrorMessage reports a request that could not be served. Request is the
// type of the envelope that failed.
type ErrorMessage struct {
	Request string `json:"request"`
	Error   string `json:"error"`
}
