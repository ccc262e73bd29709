package sha256

import "testing"

const emptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestHasherHash(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash(nil)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if got != emptyDigest {
		t.Fatalf("empty digest = %s", got)
	}

	a, _ := h.Hash([]byte("id,title\n1,Analyst\n"))
	b, _ := h.Hash([]byte("id,title\n1,Analyst\n"))
	c, _ := h.Hash([]byte("id,title\n2,Analyst\n"))
	if a != b {
		t.Fatalf("expected deterministic digest, got %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("expected different bodies to hash differently")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
