package domain

import "testing"

func TestValidVersion(t *testing.T) {
	valid := []string{"1.0.0", "0.1.2", "10.20.30"}
	for _, v := range valid {
		if !ValidVersion(v) {
			t.Errorf("%q should be valid", v)
		}
	}

	invalid := []string{"", "1", "1.0", "1.0.0.0", "a.b.c", "1.0.x", "1..0", "-1.0.0"}
	for _, v := range invalid {
		if ValidVersion(v) {
			t.Errorf("%q should be invalid", v)
		}
	}
}

func TestModel_CalculateCost(t *testing.T) {
	model := &Model{CostPerRequest: 0.25}

	if got := model.CalculateCost(1); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := model.CalculateCost(4); got != 1.0 {
		t.Errorf("expected 1.0, got %f", got)
	}
	if got := model.CalculateCost(0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestUser_CanAfford(t *testing.T) {
	user := &User{Balance: 10}

	if !user.CanAfford(10) {
		t.Error("exact balance should be affordable")
	}
	if user.CanAfford(10.01) {
		t.Error("amount above balance should not be affordable")
	}
}
