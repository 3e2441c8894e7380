package ai

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/nstehr/venture/venture-core/model"
)

// RNG returns a value in [0, 1). Callers supply it so tests can pin ties.
type RNG func() float64

// maxRoll keeps floor(roll * n) strictly below n.
const maxRoll = 0.999999

// PickTopDecision returns the highest-scoring decision. Scores must match
// exactly to tie; among ties one is chosen uniformly with a single rng call.
// An empty list yields a hold tagged no_decisions.
func PickTopDecision(decisions []model.Decision, rng RNG) model.Decision {
	if len(decisions) == 0 {
		return model.Decision{Intent: model.Hold, Reason: model.ReasonNoDecisions}
	}

	best := decisions[0].Score
	for _, d := range decisions[1:] {
		if d.Score > best {
			best = d.Score
		}
	}

	ties := make([]int, 0, 2)
	for i, d := range decisions {
		if d.Score == best {
			ties = append(ties, i)
		}
	}
	if len(ties) <= 1 {
		if len(ties) == 0 {
			// every score was NaN
			return decisions[0]
		}
		return decisions[ties[0]]
	}

	roll := 0.0
	if rng != nil {
		roll = finiteOr(rng(), 0)
	}
	idx := int(math.Floor(clamp(roll, 0, maxRoll) * float64(len(ties))))
	return decisions[ties[idx]]
}

// SeededRNG derives a deterministic source for one company from a tick
// seed, so concurrent ticks reproduce regardless of scheduling.
func SeededRNG(seed int64, companyID string) RNG {
	h := fnv.New64a()
	h.Write([]byte(companyID))
	r := rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
	return r.Float64
}

// TickRNG returns the per-company sources for one tick. The same seed and
// tick id always yield the same rolls.
func TickRNG(seed int64, tickID string) func(companyID string) RNG {
	return func(companyID string) RNG {
		return SeededRNG(seed, tickID+"/"+companyID)
	}
}
