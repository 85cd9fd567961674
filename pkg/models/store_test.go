package models

import (
	"testing"
)

func TestStoreAddGet(t *testing.T) {
	s := NewStore(nil)
	m, _ := NewMesh("tri", unitTriangle())

	id := s.Add(m)
	if id == "" {
		t.Fatal("Add returned empty id")
	}
	got, ok := s.Get(id)
	if !ok || got != m {
		t.Errorf("Get(%q) = %p, %v; want the added mesh", id, got, ok)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestStoreIDsAreUnique(t *testing.T) {
	s := NewStore(nil)
	m, _ := NewMesh("tri", unitTriangle())

	a := s.Add(m)
	b := s.Add(m)
	if a == b {
		t.Errorf("two adds returned the same id %q", a)
	}
}

func TestStoreGetMissing(t *testing.T) {
	if _, ok := NewStore(nil).Get("missing"); ok {
		t.Error("Get on empty store reported a mesh")
	}
}

func TestStoreLoadError(t *testing.T) {
	s := NewStore(nil)
	if _, _, err := s.Load("/nonexistent/model.glb"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
	if s.Len() != 0 {
		t.Errorf("failed load left %d meshes in store", s.Len())
	}
}
