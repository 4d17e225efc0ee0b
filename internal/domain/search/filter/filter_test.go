package filter

import (
	"strings"
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestNewExpression_TooManyConditions(t *testing.T) {
	conds := make([]Condition, MaxConditionsPerGroup+1)
	for i := range conds {
		c, err := NewMatch("site", "example.com")
		if err != nil {
			t.Fatalf("NewMatch: %v", err)
		}
		conds[i] = c
	}

	if _, err := NewExpression(conds, nil); err == nil {
		t.Error("expected error for too many must conditions")
	}
	if _, err := NewExpression(nil, conds); err == nil {
		t.Error("expected error for too many must_not conditions")
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	var empty Expression
	if !empty.IsEmpty() {
		t.Error("zero expression should be empty")
	}

	c, err := NewMatch("category", "docs")
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	expr, err := NewExpression([]Condition{c}, nil)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if expr.IsEmpty() {
		t.Error("expression with a must condition should not be empty")
	}
}

func TestNewMatch_Validation(t *testing.T) {
	if _, err := NewMatch("", "v"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("k", ""); err == nil {
		t.Error("expected error for empty match value")
	}

	c, err := NewMatch("lang", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsMatch() || c.IsRange() {
		t.Error("match condition misclassified")
	}
	if c.Key() != "lang" || c.Match() != "en" {
		t.Errorf("condition = %q=%q", c.Key(), c.Match())
	}
}

func TestNewBounds(t *testing.T) {
	tests := []struct {
		name               string
		gt, gte, lt, lte   *float64
		wantErr            string
	}{
		{name: "no boundaries", wantErr: "at least one"},
		{name: "gt and gte", gt: f64(1), gte: f64(2), wantErr: "both gt and gte"},
		{name: "lt and lte", lt: f64(1), lte: f64(2), wantErr: "both lt and lte"},
		{name: "gte only", gte: f64(0.5)},
		{name: "gt and lte", gt: f64(0), lte: f64(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewBounds(tt.gt, tt.gte, tt.lt, tt.lte)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cond, err := NewRange("score", r)
			if err != nil {
				t.Fatalf("NewRange: %v", err)
			}
			if !cond.IsRange() || cond.IsMatch() {
				t.Error("range condition misclassified")
			}
		})
	}
}
