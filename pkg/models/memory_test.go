package models

import "testing"

func TestValidLayer(t *testing.T) {
	tests := []struct {
		layer Layer
		want  bool
	}{
		{LayerWorking, true},
		{LayerShortTerm, true},
		{LayerLongTerm, true},
		{Layer("archived"), false},
		{Layer(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.layer), func(t *testing.T) {
			if got := ValidLayer(tt.layer); got != tt.want {
				t.Errorf("ValidLayer(%q) = %v, want %v", tt.layer, got, tt.want)
			}
		})
	}
}

func TestValidSource(t *testing.T) {
	tests := []struct {
		source Source
		want   bool
	}{
		{SourceUser, true},
		{SourceAgent, true},
		{SourceSystem, true},
		{Source("robot"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			if got := ValidSource(tt.source); got != tt.want {
				t.Errorf("ValidSource(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}

func TestClampImportance(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, MinImportance},
		{0, MinImportance},
		{0.05, MinImportance},
		{0.5, 0.5},
		{1.0, MaxImportance},
		{5, MaxImportance},
	}
	for _, tt := range tests {
		if got := ClampImportance(tt.in); got != tt.want {
			t.Errorf("ClampImportance(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecord_Clone(t *testing.T) {
	r := &Record{
		ID:         "rec-1",
		Content:    "hello",
		Embedding:  []float32{0.1, 0.2, 0.3},
		Tags:       []string{"a", "b"},
		Importance: 0.5,
		Layer:      LayerWorking,
	}

	cp := r.Clone()
	cp.Tags[0] = "mutated"
	cp.Embedding[0] = 9

	if r.Tags[0] != "a" {
		t.Error("mutating clone's tags leaked into original")
	}
	if r.Embedding[0] != 0.1 {
		t.Error("mutating clone's embedding leaked into original")
	}
	if cp.ID != r.ID || cp.Content != r.Content {
		t.Error("clone lost scalar fields")
	}
}

func TestRecord_CloneNil(t *testing.T) {
	var r *Record
	if r.Clone() != nil {
		t.Error("Clone of nil record should be nil")
	}
}
