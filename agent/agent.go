package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/venture/venture-core/ai"
	"github.com/nstehr/venture/venture-core/ipc"
	"github.com/nstehr/venture/venture-core/model"
	"github.com/nstehr/venture/venture-core/rules"
)

// Recorder persists the decisions of a tick. It is an audit sink only;
// nothing reads it back while deciding.
type Recorder interface {
	Record(ctx context.Context, tickID string, decisions []model.Decision) error
}

// Session owns the request handling for a single connected simulation host.
type Session struct {
	ID       string
	Conn     *ipc.Connection
	Client   string
	Registry *rules.Registry
	Recorder Recorder // optional
	Workers  int

	// ctx is the session lifetime context, cancelled when the sidecar shuts
	// down. Handlers have no per-request context, so ticks and recorder
	// writes run under it.
	ctx    context.Context
	events *EventTracker
}

// New creates a session bound to ctx for its whole lifetime.
func New(ctx context.Context, conn *ipc.Connection, registry *rules.Registry, recorder Recorder) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Conn:     conn,
		Registry: registry,
		Recorder: recorder,
		Workers:  4,
		ctx:      ctx,
		events:   NewEventTracker(),
	}
}

// Register installs the session's handlers on its connection.
func (s *Session) Register() {
	s.Conn.RegisterHandler(ipc.TypeHello, s.HandleHello)
	s.Conn.RegisterHandler(ipc.TypeTick, s.HandleTick)
	s.Conn.RegisterHandler(ipc.TypeUnlocksQuery, s.HandleUnlocks)
	s.Conn.RegisterHandler(ipc.TypeUpgradesQuery, s.HandleUpgrades)
}

// HandleHello completes the handshake so the host knows the sidecar is ready.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	s.Client = hello.Client
	s.Conn.Client = hello.Client
	slog.Info("client identified", "client", s.Client, "version", hello.Version, "session", s.ID)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", SessionID: s.ID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs the AI over every brain in the tick and replies with the
// decisions in brain order.
func (s *Session) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.TickMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	if msg.TickID == "" {
		msg.TickID = uuid.NewString()
	}

	tickID := msg.TickID
	decisions, err := ai.RunTickConcurrent(s.ctx, msg.TickInput, ai.TickRNG(msg.Seed, tickID), s.Workers)
	if err != nil {
		return nil, fmt.Errorf("tick %s: %w", tickID, err)
	}

	intents := make(map[string]int)
	for _, d := range decisions {
		intents[d.Intent.String()]++
	}
	slog.Info("tick decided",
		"tick", tickID,
		"client", s.Client,
		"brains", len(msg.Brains),
		"companies", len(msg.World.Companies),
		"intents", intents,
	)

	if s.Recorder != nil {
		if err := s.Recorder.Record(s.ctx, tickID, decisions); err != nil {
			slog.Error("decision log write failed", "tick", tickID, "error", err)
		}
	}

	reply, err := ipc.NewEnvelope(ipc.TypeDecisions, ipc.DecisionsMessage{TickID: tickID, Decisions: decisions})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *Session) HandleUnlocks(env ipc.Envelope) (*ipc.Envelope, error) {
	var q ipc.UnlocksQuery
	if err := json.Unmarshal(env.Data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal unlocks query: %w", err)
	}
	skus, err := s.Registry.UnlockedProducts(q.NicheID, q.State)
	if err != nil {
		return nil, err
	}

	msg := ipc.UnlocksMessage{NicheID: q.NicheID, CompanyID: q.State.CompanyID, Unlocked: skus}
	for _, ev := range s.events.ObserveProducts(q.State.CompanyID, q.NicheID, skus) {
		slog.Info("product unlocked", "company", ev.CompanyID, "niche", ev.NicheID, "sku", ev.Ref)
		msg.NewlyUnlocked = append(msg.NewlyUnlocked, ev.Ref)
	}

	reply, err := ipc.NewEnvelope(ipc.TypeUnlocks, msg)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *Session) HandleUpgrades(env ipc.Envelope) (*ipc.Envelope, error) {
	var q ipc.UpgradesQuery
	if err := json.Unmarshal(env.Data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal upgrades query: %w", err)
	}
	ids, err := s.Registry.AvailableUpgrades(q.NicheID, q.State)
	if err != nil {
		return nil, err
	}

	msg := ipc.UpgradesMessage{NicheID: q.NicheID, CompanyID: q.State.CompanyID, Available: ids}
	for _, ev := range s.events.ObserveUpgrades(q.State.CompanyID, q.NicheID, ids) {
		slog.Info("upgrade available", "company", ev.CompanyID, "niche", ev.NicheID, "upgrade", ev.Ref)
		msg.NewlyAvailable = append(msg.NewlyAvailable, ev.Ref)
	}

	reply, err := ipc.NewEnvelope(ipc.TypeUpgrades, msg)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
