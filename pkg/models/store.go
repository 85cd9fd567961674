package models

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MeshID identifies a mesh owned by a Store.
type MeshID string

// Store owns meshes on behalf of the objects that instance them. Objects
// borrow *Mesh pointers from it; the store must outlive every borrower.
type Store struct {
	mu     sync.RWMutex
	loader *GLTFLoader
	meshes map[MeshID]*Mesh
	byPath map[string]MeshID
}

// NewStore creates an empty store that loads files with loader. A nil loader
// uses NewGLTFLoader defaults.
func NewStore(loader *GLTFLoader) *Store {
	if loader == nil {
		loader = NewGLTFLoader()
	}
	return &Store{
		loader: loader,
		meshes: make(map[MeshID]*Mesh),
		byPath: make(map[string]MeshID),
	}
}

// Add takes ownership of mesh and returns its new ID.
func (s *Store) Add(mesh *Mesh) MeshID {
	id := MeshID(uuid.NewString())
	s.mu.Lock()
	s.meshes[id] = mesh
	s.mu.Unlock()
	return id
}

// Get returns the mesh with the given ID.
func (s *Store) Get(id MeshID) (*Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[id]
	return m, ok
}

// Load returns the mesh for a model file, loading it on first use. Every
// later call with the same path returns the same mesh.
func (s *Store) Load(path string) (MeshID, *Mesh, error) {
	s.mu.RLock()
	id, ok := s.byPath[path]
	s.mu.RUnlock()
	if ok {
		m, _ := s.Get(id)
		return id, m, nil
	}

	mesh, err := s.loader.Load(path)
	if err != nil {
		return "", nil, fmt.Errorf("load %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have won the race while the file was parsed.
	if id, ok := s.byPath[path]; ok {
		return id, s.meshes[id], nil
	}
	id = MeshID(uuid.NewString())
	s.meshes[id] = mesh
	s.byPath[path] = id
	return id, mesh, nil
}

// Len returns the number of meshes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}
