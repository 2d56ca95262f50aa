package vehicles

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// StaticRepository keeps vehicles in memory, seeded from YAML, for local development and tests.
type StaticRepository struct {
	mu       sync.RWMutex
	vehicles map[int64]Vehicle
	nextID   int64
	now      func() time.Time
}

// NewStaticRepository seeds the repository with the given vehicles.
func NewStaticRepository(seed []Vehicle) *StaticRepository {
	repo := &StaticRepository{
		vehicles: make(map[int64]Vehicle, len(seed)),
		nextID:   1,
		now:      time.Now,
	}
	for _, v := range seed {
		if v.ID == 0 {
			v.ID = repo.nextID
		}
		if v.Slug == "" {
			v.Slug = Slugify(v.Title)
		}
		repo.vehicles[v.ID] = v
		if v.ID >= repo.nextID {
			repo.nextID = v.ID + 1
		}
	}
	return repo
}

// List returns vehicles ordered by id.
func (r *StaticRepository) List(_ context.Context) ([]Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a vehicle by id.
func (r *StaticRepository) Get(_ context.Context, id int64) (Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrNotFound)
	}
	return v, nil
}

// GetBySlug returns a vehicle by slug.
func (r *StaticRepository) GetBySlug(_ context.Context, slug string) (Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vehicles {
		if v.Slug == slug {
			return v, nil
		}
	}
	return Vehicle{}, fmt.Errorf("vehicle %q: %w", slug, ErrNotFound)
}

// Save inserts a vehicle without id or replaces an existing one.
func (r *StaticRepository) Save(_ context.Context, v Vehicle) (Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.ID == 0 {
		v.ID = r.nextID
		r.nextID++
	} else if _, ok := r.vehicles[v.ID]; !ok {
		return Vehicle{}, fmt.Errorf("vehicle %d: %w", v.ID, ErrNotFound)
	}
	if v.Slug == "" {
		v.Slug = Slugify(v.Title)
	}
	v.UpdatedAt = r.now().UTC()
	r.vehicles[v.ID] = v
	return v, nil
}
