package result

import (
	"encoding/json"
	"testing"
)

func TestUnmarshal_StringID(t *testing.T) {
	var it Item
	data := []byte(`{"id":"doc-1","title":"Pricing","url":"https://example.com/p","snippet":"...","score":0.91}`)
	if err := json.Unmarshal(data, &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID != "doc-1" {
		t.Errorf("ID = %q, want doc-1", it.ID)
	}
	if it.Title != "Pricing" || it.Score != 0.91 {
		t.Errorf("item = %+v", it)
	}
}

func TestUnmarshal_NumericID(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id":1}`), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.ID != "1" {
		t.Errorf("ID = %q, want 1", it.ID)
	}
}

func TestMarshal_RoundTripsRaw(t *testing.T) {
	raw := `{"id":"a","extra_field":{"nested":true}}`
	var it Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("round trip = %s, want %s", out, raw)
	}
}
