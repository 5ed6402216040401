package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"blocksgraph/internal/domain"
)

// BlockStore owns the set of blocks and their geometry. It is the
// single source of truth for where things are; the spatial index and
// every subscriber derive from it.
type BlockStore struct {
	blocks map[string]domain.Block
	nextZ  int64
}

func NewBlockStore() *BlockStore {
	return &BlockStore{blocks: make(map[string]domain.Block)}
}

// Add validates the geometry, allocates a fresh id, and inserts the
// block on top of the z-order.
func (s *BlockStore) Add(g domain.Geometry, meta domain.BlockMeta) (domain.Block, error) {
	if err := g.Validate(); err != nil {
		return domain.Block{}, err
	}
	now := time.Now()
	s.nextZ++
	b := domain.Block{
		ID:        uuid.New().String(),
		Geometry:  g,
		Label:     meta.Label,
		Kind:      meta.Kind,
		Z:         s.nextZ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.blocks[b.ID] = b
	return b, nil
}

// Get returns the block by id.
func (s *BlockStore) Get(id string) (domain.Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// Contains reports whether the store holds the id.
func (s *BlockStore) Contains(id string) bool {
	_, ok := s.blocks[id]
	return ok
}

// List returns all blocks ordered by z, bottom to top.
func (s *BlockStore) List() []domain.Block {
	out := make([]domain.Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// Len returns the number of blocks.
func (s *BlockStore) Len() int {
	return len(s.blocks)
}

// SetGeometry atomically replaces a block's geometry.
func (s *BlockStore) SetGeometry(id string, g domain.Geometry) (domain.Block, error) {
	if err := g.Validate(); err != nil {
		return domain.Block{}, err
	}
	b, ok := s.blocks[id]
	if !ok {
		return domain.Block{}, domain.NewError(domain.ErrCodeBlockNotFound, "block %s", id)
	}
	b.Geometry = g
	b.UpdatedAt = time.Now()
	s.blocks[id] = b
	return b, nil
}

// SetMeta replaces a block's display metadata.
func (s *BlockStore) SetMeta(id string, meta domain.BlockMeta) (domain.Block, error) {
	b, ok := s.blocks[id]
	if !ok {
		return domain.Block{}, domain.NewError(domain.ErrCodeBlockNotFound, "block %s", id)
	}
	b.Label = meta.Label
	b.Kind = meta.Kind
	b.UpdatedAt = time.Now()
	s.blocks[id] = b
	return b, nil
}

// Raise moves a block to the top of the z-order.
func (s *BlockStore) Raise(id string) (domain.Block, error) {
	b, ok := s.blocks[id]
	if !ok {
		return domain.Block{}, domain.NewError(domain.ErrCodeBlockNotFound, "block %s", id)
	}
	s.nextZ++
	b.Z = s.nextZ
	b.UpdatedAt = time.Now()
	s.blocks[id] = b
	return b, nil
}

// Remove deletes a block. Connection cascade happens at the engine
// layer inside the same commit.
func (s *BlockStore) Remove(id string) error {
	if _, ok := s.blocks[id]; !ok {
		return domain.NewError(domain.ErrCodeBlockNotFound, "block %s", id)
	}
	delete(s.blocks, id)
	return nil
}

// Restore replaces the whole block set from a snapshot, preserving ids
// and z-order. The z counter resumes above the highest restored rank so
// later inserts still land on top.
func (s *BlockStore) Restore(blocks []domain.Block) {
	s.blocks = make(map[string]domain.Block, len(blocks))
	for _, b := range blocks {
		s.blocks[b.ID] = b
		if b.Z > s.nextZ {
			s.nextZ = b.Z
		}
	}
}
