package model

import (
	"encoding/json"
	"testing"
)

func TestIntentText(t *testing.T) {
	for _, i := range AllIntents() {
		b, err := i.MarshalText()
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		var back Intent
		if err := back.UnmarshalText(b); err != nil || back != i {
			t.Errorf("%s: got %v, %v", b, back, err)
		}
	}
	if _, err := Intent(NumIntents).MarshalText(); err == nil {
		t.Error("expected error marshaling out-of-range intent")
	}
	if _, err := ParseIntent("panic_sell"); err == nil {
		t.Error("expected error for unknown intent")
	}
	if got := Intent(200).String(); got != "intent(200)" {
		t.Errorf("String = %q", got)
	}
}

func TestArchetypeJSON(t *testing.T) {
	var b Brain
	if err := json.Unmarshal([]byte(`{"companyId":"acme","archetype":"quality_artisan","debtTolerance":0.4}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Archetype != QualityArtisan || b.DebtTolerance != 0.4 {
		t.Errorf("got %+v", b)
	}

	tests := []struct {
		name string
		data string
	}{
		{"omitted", `{"companyId":"acme"}`},
		{"empty", `{"archetype":""}`},
		{"unknown", `{"archetype":"gambler"}`},
	}
	for _, tc := range tests {
		var got Brain
		if err := json.Unmarshal([]byte(tc.data), &got); err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got.Archetype != NoArchetype {
			t.Errorf("%s: archetype = %s, want none", tc.name, got.Archetype)
		}
	}
	if _, err := ParseArchetype("gambler"); err == nil {
		t.Error("expected ParseArchetype error for unknown archetype")
	}
	if NoArchetype.String() != "none" {
		t.Errorf("NoArchetype.String() = %q", NoArchetype.String())
	}
}

func TestDecisionJSON(t *testing.T) {
	d := Decision{CompanyID: "acme", Intent: PayDownDebt, Score: 0.5}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"companyId":"acme","intent":"pay_down_debt","score":0.5}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestCompanyStateQuantity(t *testing.T) {
	s := CompanyState{
		Assets:   map[string]float64{"a": 1},
		Staff:    map[string]float64{"s": 2},
		Machines: map[string]float64{"m": 3},
		Vehicles: map[string]float64{"v": 4},
	}
	tests := []struct {
		kind ResourceKind
		id   string
		want float64
	}{
		{Asset, "a", 1},
		{Staff, "s", 2},
		{Machine, "m", 3},
		{Vehicle, "v", 4},
		{Machine, "missing", 0},
		{ResourceKind(99), "a", 0},
	}
	for _, tc := range tests {
		if got := s.Quantity(tc.kind, tc.id); got != tc.want {
			t.Errorf("%s/%s: got %v, want %v", tc.kind, tc.id, got, tc.want)
		}
	}

	var zero CompanyState
	if zero.Quantity(Asset, "a") != 0 || zero.Flag("x") || zero.HasUpgrade("u") || zero.IsActive("sku") || zero.Score("m") != 0 {
		t.Error("zero state should read as empty")
	}
}
