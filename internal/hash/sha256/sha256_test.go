package sha256

import "testing"

// TestHashStableAcrossCalls pins the digest used for image object names:
// the same image URL must always map to the same stored object.
func TestHashStableAcrossCalls(t *testing.T) {
	t.Parallel()

	h := New()
	imageURL := "https://img.example/phone-x/front.jpg"
	got, err := h.Hash([]byte(imageURL))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d (%s)", len(got), got)
	}
	again, err := h.Hash([]byte(imageURL))
	if err != nil {
		t.Fatalf("Hash() repeat error = %v", err)
	}
	if again != got {
		t.Fatalf("expected stable digest for the same url, got %s vs %s", got, again)
	}

	other, err := h.Hash([]byte("https://img.example/phone-x/back.jpg"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if other == got {
		t.Fatalf("different urls must not collide on %s", got)
	}
}
