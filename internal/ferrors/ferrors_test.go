package ferrors

import (
	"errors"
	"testing"
)

func TestCodeValid(t *testing.T) {
	if !DDuplicateURL.Valid() {
		t.Fatalf("expected %q to be a valid code", DDuplicateURL)
	}
	if Code("bad").Valid() {
		t.Fatal("expected lowercase code to be invalid")
	}
}

func TestNewAndAs(t *testing.T) {
	err := New(DDuplicateURL, "posts/a.md", errors.New("boom"))
	fe, ok := As(err)
	if !ok {
		t.Fatal("expected As to unwrap the ferrors.Error")
	}
	if fe.Code != DDuplicateURL {
		t.Fatalf("expected code %q, got %q", DDuplicateURL, fe.Code)
	}
}

func TestSessionDedupes(t *testing.T) {
	s := NewSession()
	s.Warn(New(DDuplicateURL, "posts/a.md", errors.New("x")))
	s.Warn(New(DDuplicateURL, "posts/a.md", errors.New("x again")))
	if warnings, _ := s.Summary(); warnings != 1 {
		t.Fatalf("expected deduped warning count of 1, got %d", warnings)
	}
}

func TestSessionHasFatal(t *testing.T) {
	s := NewSession()
	if s.HasFatal() {
		t.Fatal("expected no fatal errors on a fresh session")
	}
	s.Fail(New(TExecFailed, "layouts/post.html", errors.New("boom")))
	if !s.HasFatal() {
		t.Fatal("expected HasFatal to be true after Fail")
	}
}
