package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rebooked/campus-service/internal/models"
)

const (
	savedCalculationsKeyPrefix = "saved_calculations:"
	DefaultSavedCalculationCap = 20
)

// CalculationStore keeps each owner's saved calculations as one collection under one key.
// Every write replaces the whole collection.
type CalculationStore struct {
	kv    KeyValueStore
	limit int
}

func NewCalculationStore(kv KeyValueStore, limit int) *CalculationStore {
	if limit <= 0 {
		limit = DefaultSavedCalculationCap
	}
	return &CalculationStore{kv: kv, limit: limit}
}

// Load returns the owner's snapshots, newest first. A missing collection is empty, not an error.
func (s *CalculationStore) Load(ctx context.Context, owner string) ([]models.SavedCalculation, error) {
	var snapshots []models.SavedCalculation
	if err := s.kv.Get(ctx, savedCalculationsKey(owner), &snapshots); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []models.SavedCalculation{}, nil
		}
		return nil, fmt.Errorf("failed to load saved calculations: %w", err)
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// Save prepends the snapshot, replacing any snapshot with the same id, and drops the oldest
// entries beyond the cap.
func (s *CalculationStore) Save(ctx context.Context, owner string, snapshot models.SavedCalculation) error {
	existing, err := s.Load(ctx, owner)
	if err != nil {
		return err
	}

	updated := make([]models.SavedCalculation, 0, len(existing)+1)
	updated = append(updated, snapshot)
	for _, c := range existing {
		if c.ID != snapshot.ID {
			updated = append(updated, c)
		}
	}
	if len(updated) > s.limit {
		updated = updated[:s.limit]
	}

	if err := s.kv.Set(ctx, savedCalculationsKey(owner), updated); err != nil {
		return fmt.Errorf("failed to save calculations: %w", err)
	}
	return nil
}

// Delete removes one snapshot. ErrKeyNotFound is returned when the id is unknown.
func (s *CalculationStore) Delete(ctx context.Context, owner string, id string) error {
	existing, err := s.Load(ctx, owner)
	if err != nil {
		return err
	}

	remaining := make([]models.SavedCalculation, 0, len(existing))
	for _, c := range existing {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(existing) {
		return ErrKeyNotFound
	}

	if len(remaining) == 0 {
		return s.kv.Delete(ctx, savedCalculationsKey(owner))
	}
	if err := s.kv.Set(ctx, savedCalculationsKey(owner), remaining); err != nil {
		return fmt.Errorf("failed to save calculations: %w", err)
	}
	return nil
}

func savedCalculationsKey(owner string) string {
	return savedCalculationsKeyPrefix + owner
}
