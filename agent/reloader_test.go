package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nstehr/venture/venture-core/rules"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for reload")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReloaderSwapsOnTrigger(t *testing.T) {
	reg := testRegistry(t)
	r := NewReloader(reg, func() ([]rules.Niche, error) {
		return []rules.Niche{{ID: "bakery"}}, nil
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Trigger()
	waitFor(t, func() bool { n, _ := r.Loads(); return n == 1 })

	if _, ok := reg.Niche("bakery"); !ok {
		t.Error("bakery not loaded after reload")
	}
	if _, ok := reg.Niche("sawmill"); ok {
		t.Error("sawmill still present after reload")
	}
}

func TestReloaderKeepsContentOnFailure(t *testing.T) {
	reg := testRegistry(t)
	var calls atomic.Int32
	r := NewReloader(reg, func() ([]rules.Niche, error) {
		calls.Add(1)
		return nil, errors.New("yaml on fire")
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Trigger()
	waitFor(t, func() bool { _, err := r.Loads(); return err != nil })

	if n, _ := r.Loads(); n != 0 {
		t.Errorf("loads = %d, want 0", n)
	}
	if _, ok := reg.Niche("sawmill"); !ok {
		t.Error("failed reload dropped the previous niches")
	}
}

func TestReloaderInterval(t *testing.T) {
	reg := testRegistry(t)
	r := NewReloader(reg, func() ([]rules.Niche, error) {
		return []rules.Niche{{ID: "sawmill"}}, nil
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	waitFor(t, func() bool { n, _ := r.Loads(); return n >= 2 })
}
