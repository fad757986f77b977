package candidate

import "testing"

func TestScore_Precedence(t *testing.T) {
	c := New("d1", "a", "text", "", 1, 2).WithCosine(0.4)
	if c.Score() != 0.4 {
		t.Errorf("cosine-only Score() = %f", c.Score())
	}

	c = c.WithHybrid(0.6)
	if c.Score() != 0.6 {
		t.Errorf("hybrid Score() = %f", c.Score())
	}

	c = c.WithRerank(0.9)
	if c.Score() != 0.9 {
		t.Errorf("rerank Score() = %f", c.Score())
	}
}

func TestWith_ReturnsCopy(t *testing.T) {
	base := New("d1", "a", "text", "english", 1, 2)
	fused := base.WithLexical(3).WithHybrid(0.5)

	if _, ok := base.HybridScore(); ok {
		t.Error("original must not gain a hybrid score")
	}
	if _, ok := base.Lexical(); ok {
		t.Error("original must not gain a lexical score")
	}
	if s, ok := fused.HybridScore(); !ok || s != 0.5 {
		t.Errorf("HybridScore() = %f, %v", s, ok)
	}
	if s, ok := fused.Lexical(); !ok || s != 3 {
		t.Errorf("Lexical() = %f, %v", s, ok)
	}
}

func TestRerank_KeepsHybridMetadata(t *testing.T) {
	c := New("d1", "a", "text", "", 1, 2).
		WithCosine(0.8).
		WithLexical(2).
		WithNormalized(1, 0.5).
		WithHybrid(0.85).
		WithRerank(0.3)

	if c.Cosine() != 0.8 || c.NormalizedCosine() != 1 || c.NormalizedLexical() != 0.5 {
		t.Errorf("scores lost: %+v", c)
	}
	if h, ok := c.HybridScore(); !ok || h != 0.85 {
		t.Errorf("HybridScore() = %f, %v", h, ok)
	}
	if r, ok := c.RerankScore(); !ok || r != 0.3 {
		t.Errorf("RerankScore() = %f, %v", r, ok)
	}
}

func TestAccessors(t *testing.T) {
	c := New("d1", "news", "body", "indonesian", 10, 20).WithVector([]float32{1, 0})
	if c.ID() != "d1" || c.Namespace() != "news" || c.Content() != "body" || c.Language() != "indonesian" {
		t.Errorf("unexpected identity fields: %+v", c)
	}
	if c.CreatedAt() != 10 || c.UpdatedAt() != 20 {
		t.Errorf("timestamps = %d/%d", c.CreatedAt(), c.UpdatedAt())
	}
	if len(c.Vector()) != 2 {
		t.Errorf("Vector() = %v", c.Vector())
	}
}
