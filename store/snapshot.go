package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relenghq/shipit/model"
)

// Snapshot is a file-based dump of the full release and event collections,
// usable without a NATS connection for offline export runs and as seed data.
type Snapshot struct {
	Releases []model.Release    `yaml:"releases"`
	Events   []model.BuildEvent `yaml:"events,omitempty"`
}

// LoadSnapshot reads a snapshot from a YAML file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// SaveSnapshot writes a snapshot to a YAML file.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Dump exports the store's current contents as a snapshot.
func (s *Store) Dump(ctx context.Context) (*Snapshot, error) {
	releases, err := s.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Releases: releases, Events: events}, nil
}

// Restore loads a snapshot's contents into the store.
func (s *Store) Restore(ctx context.Context, snap *Snapshot) error {
	for _, r := range snap.Releases {
		if err := s.PutRelease(ctx, r); err != nil {
			return err
		}
	}
	for _, e := range snap.Events {
		if err := s.PutEvent(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
