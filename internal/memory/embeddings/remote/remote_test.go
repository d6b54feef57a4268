package remote

import "testing"

func TestNew(t *testing.T) {
	t.Run("missing API key returns error", func(t *testing.T) {
		if _, err := New(Config{}); err == nil {
			t.Error("expected error for missing API key")
		}
	})

	t.Run("API key provided succeeds", func(t *testing.T) {
		p, err := New(Config{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		if p.model != "text-embedding-3-small" {
			t.Errorf("model = %q, want %q", p.model, "text-embedding-3-small")
		}
		if p.Dimensions() != 1536 {
			t.Errorf("Dimensions() = %d, want 1536", p.Dimensions())
		}
	})

	t.Run("custom model and dimension", func(t *testing.T) {
		p, err := New(Config{APIKey: "test-key", Model: "text-embedding-3-large"})
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		if p.Dimensions() != 3072 {
			t.Errorf("Dimensions() = %d, want 3072", p.Dimensions())
		}
	})

	t.Run("name", func(t *testing.T) {
		p, _ := New(Config{APIKey: "test-key"})
		if p.Name() != "remote" {
			t.Errorf("Name() = %q, want %q", p.Name(), "remote")
		}
	})
}

func TestNormalize(t *testing.T) {
	v := normalize([]float32{3, 4})
	if diff := v[0] - 0.6; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("v[0] = %v, want ~0.6", v[0])
	}
	if diff := v[1] - 0.8; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("v[1] = %v, want ~0.8", v[1])
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := normalize([]float32{0, 0, 0})
	for _, x := range v {
		if x != 0 {
			t.Errorf("zero vector should normalize to itself, got %v", v)
		}
	}
}
