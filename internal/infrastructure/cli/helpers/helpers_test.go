package helpers

import (
	"reflect"
	"testing"

	"github.com/doeshing/aura-go/internal/domain"
)

func TestNestedMapRoundTrip(t *testing.T) {
	root := map[string]interface{}{
		"preferences": map[string]interface{}{"min_confidence": 0.2},
		"speech":      "disabled",
	}

	if !SetNestedMapValue(root, SplitKeyPath("preferences.history_size"), 25) {
		t.Fatal("set failed")
	}
	if !SetNestedMapValue(root, SplitKeyPath("speech.enabled"), false) {
		t.Fatal("set over scalar failed")
	}
	if SetNestedMapValue(root, SplitKeyPath(" . "), 1) {
		t.Fatal("empty key path must be rejected")
	}

	if v, ok := TraverseNestedMap(root, []string{"preferences", "history_size"}); !ok || v != 25 {
		t.Fatalf("history_size = %v, %v", v, ok)
	}
	if v, ok := TraverseNestedMap(root, []string{"preferences", "min_confidence"}); !ok || v != 0.2 {
		t.Fatalf("min_confidence = %v, %v", v, ok)
	}
	if v, ok := TraverseNestedMap(root, []string{"speech", "enabled"}); !ok || v != false {
		t.Fatalf("speech.enabled = %v, %v", v, ok)
	}
	if _, ok := TraverseNestedMap(root, []string{"preferences", "min_confidence", "deeper"}); ok {
		t.Fatal("traversal through a scalar must fail")
	}
}

func TestParseYAMLValue(t *testing.T) {
	tests := []struct {
		input string
		want  interface{}
	}{
		{"25", 25},
		{"true", true},
		{"0.35", 0.35},
		{"[a, b]", []interface{}{"a", "b"}},
		{"hello world", "hello world"},
		{"{unclosed", "{unclosed"},
	}
	for _, tt := range tests {
		if got := ParseYAMLValue(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseYAMLValue(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestConfigMapConversion(t *testing.T) {
	cfg := domain.Config{Preferences: domain.Preferences{MinConfidence: 0.3, HistorySize: 40}}
	m, err := ConfigToMap(cfg)
	if err != nil {
		t.Fatalf("ConfigToMap: %v", err)
	}
	if !SetNestedMapValue(m, []string{"preferences", "history_size"}, 12) {
		t.Fatal("set failed")
	}
	back, err := MapToConfig(m)
	if err != nil {
		t.Fatalf("MapToConfig: %v", err)
	}
	if back.Preferences.HistorySize != 12 || back.Preferences.MinConfidence != 0.3 {
		t.Fatalf("unexpected preferences: %+v", back.Preferences)
	}
}

func TestCalculateCategoryShares(t *testing.T) {
	counts := []domain.CategoryCount{
		{Category: "system", Count: 1},
		{Category: "communication", Count: 3},
		{Category: "", Count: 1},
		{Category: "information", Count: 3},
	}
	stats, total := CalculateCategoryShares(counts, 3)
	if total != 8 {
		t.Fatalf("total = %d, want 8", total)
	}
	want := []CategoryStatistic{
		{Category: "communication", Count: 3, Share: 37.5},
		{Category: "information", Count: 3, Share: 37.5},
		{Category: "system", Count: 1, Share: 12.5},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Fatalf("stats = %+v", stats)
	}

	all, _ := CalculateCategoryShares(counts, 0)
	if len(all) != 4 || all[3].Category != "unmatched" {
		t.Fatalf("unexpected full list: %+v", all)
	}
}

func TestCalculateSuccessRate(t *testing.T) {
	if got := CalculateSuccessRate(nil); got != 0 {
		t.Fatalf("empty rate = %v", got)
	}
	entries := []domain.HistoryEntry{
		{Status: domain.StatusSuccess},
		{Status: domain.StatusError},
		{Status: domain.StatusSuccess},
		{Status: domain.StatusWarning},
	}
	if got := CalculateSuccessRate(entries); got != 50 {
		t.Fatalf("rate = %v, want 50", got)
	}
}
