package ai

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nstehr/venture/venture-core/model"
)

// TickInput is everything one AI tick needs; the caller owns all of it.
type TickInput struct {
	World  model.WorldState  `json:"worldState"`
	Market model.MarketState `json:"marketState"`
	Brains []model.Brain     `json:"brains"`
}

// RunTick decides one action per brain, in brain order. A brain whose
// company is missing from the world gets a hold instead of failing the batch.
func RunTick(in TickInput, rng RNG) []model.Decision {
	companies := indexCompanies(in.World)
	out := make([]model.Decision, len(in.Brains))
	for i, b := range in.Brains {
		out[i] = decide(b, companies, in.Market, rng)
	}
	return out
}

// RunTickConcurrent spreads brains over workers. Each brain draws from its
// own rngFor(companyID), so the result equals RunTick run brain by brain
// with the same per-company sources. Cancellation stops handing out brains
// and returns ctx.Err().
func RunTickConcurrent(ctx context.Context, in TickInput, rngFor func(companyID string) RNG, workers int) ([]model.Decision, error) {
	if workers <= 0 {
		workers = 1
	}
	companies := indexCompanies(in.World)
	out := make([]model.Decision, len(in.Brains))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				b := in.Brains[i]
				var rng RNG
				if rngFor != nil {
					rng = rngFor(b.CompanyID)
				}
				out[i] = decide(b, companies, in.Market, rng)
			}
		}()
	}

	var err error
feed:
	for i := range in.Brains {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decide(b model.Brain, companies map[string]model.CompanyContext, market model.MarketState, rng RNG) model.Decision {
	c, ok := companies[b.CompanyID]
	if !ok {
		slog.Warn("no company state for brain", "company", b.CompanyID)
		return model.Decision{CompanyID: b.CompanyID, Intent: model.Hold, Reason: model.ReasonMissingCompanyState}
	}
	if trend, ok := market.PriceTrends[b.CompanyID]; ok && isFinite(trend) {
		c.PriceTrend = trend
	}

	d := PickTopDecision(ScoreDecisions(b, c, model.AllIntents()), rng)
	d.CompanyID = b.CompanyID
	slog.Debug("decision", "company", b.CompanyID, "archetype", b.Archetype, "intent", d.Intent, "score", d.Score)
	return d
}

// indexCompanies keys the world by company id; the first entry wins on duplicates.
func indexCompanies(w model.WorldState) map[string]model.CompanyContext {
	m := make(map[string]model.CompanyContext, len(w.Companies))
	for _, c := range w.Companies {
		if _, dup := m[c.CompanyID]; !dup {
			m[c.CompanyID] = c
		}
	}
	return m
}
