// Package store persists release records and build events in NATS KV, with
// a YAML snapshot loader for offline export runs. The engines never touch
// storage directly: callers load full collections here and pass them in.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/relenghq/shipit/model"
)

// Bucket names for each entity type.
const (
	BucketReleases = "SHIPIT_RELEASES"
	BucketEvents   = "SHIPIT_EVENTS"
)

// Store provides release and event storage backed by NATS KV. Releases are
// keyed by release name; events by release name plus event name, which also
// makes event submission idempotent.
type Store struct {
	releases jetstream.KeyValue
	events   jetstream.KeyValue
}

// New creates a Store with the given JetStream context, creating the KV
// buckets if they don't exist.
func New(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	releases, err := getOrCreateBucket(ctx, js, BucketReleases)
	if err != nil {
		return nil, fmt.Errorf("create releases bucket: %w", err)
	}

	events, err := getOrCreateBucket(ctx, js, BucketEvents)
	if err != nil {
		return nil, fmt.Errorf("create events bucket: %w", err)
	}

	return &Store{releases: releases, events: events}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Shipit %s storage", strings.ToLower(strings.TrimPrefix(name, "SHIPIT_"))),
		History:     5, // Keep last 5 revisions
	})
}

// PutRelease stores a release record under its name.
func (s *Store) PutRelease(ctx context.Context, r model.Release) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal release: %w", err)
	}
	if _, err := s.releases.Put(ctx, releaseKey(r.Name), data); err != nil {
		return fmt.Errorf("store release %s: %w", r.Name, err)
	}
	return nil
}

// GetRelease retrieves a release by name.
func (s *Store) GetRelease(ctx context.Context, name string) (model.Release, error) {
	entry, err := s.releases.Get(ctx, releaseKey(name))
	if err != nil {
		if isNotFound(err) {
			return model.Release{}, ErrNotFound
		}
		return model.Release{}, fmt.Errorf("get release %s: %w", name, err)
	}

	var r model.Release
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return model.Release{}, fmt.Errorf("unmarshal release %s: %w", name, err)
	}
	return r, nil
}

// ListReleases loads every release record.
func (s *Store) ListReleases(ctx context.Context) ([]model.Release, error) {
	keys, err := s.releases.Keys(ctx)
	if err != nil {
		if isNoKeys(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list releases: %w", err)
	}

	releases := make([]model.Release, 0, len(keys))
	for _, key := range keys {
		entry, err := s.releases.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get release %s: %w", key, err)
		}
		var r model.Release
		if err := json.Unmarshal(entry.Value(), &r); err != nil {
			return nil, fmt.Errorf("unmarshal release %s: %w", key, err)
		}
		releases = append(releases, r)
	}
	return releases, nil
}

// PutEvent stores a build event. Storing the same (release, event name)
// twice overwrites rather than duplicating.
func (s *Store) PutEvent(ctx context.Context, e model.BuildEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.events.Put(ctx, eventKey(e), data); err != nil {
		return fmt.Errorf("store event %s/%s: %w", e.ReleaseName, e.EventName, err)
	}
	return nil
}

// HasEvent reports whether an event with the same release and event name is
// already stored.
func (s *Store) HasEvent(ctx context.Context, e model.BuildEvent) (bool, error) {
	_, err := s.events.Get(ctx, eventKey(e))
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("get event %s/%s: %w", e.ReleaseName, e.EventName, err)
}

// ListEvents loads every build event.
func (s *Store) ListEvents(ctx context.Context) ([]model.BuildEvent, error) {
	keys, err := s.events.Keys(ctx)
	if err != nil {
		if isNoKeys(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]model.BuildEvent, 0, len(keys))
	for _, key := range keys {
		entry, err := s.events.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get event %s: %w", key, err)
		}
		var e model.BuildEvent
		if err := json.Unmarshal(entry.Value(), &e); err != nil {
			return nil, fmt.Errorf("unmarshal event %s: %w", key, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// releaseKey makes a release name safe for use as a KV key. Dots are valid;
// the name convention contains no other special characters.
func releaseKey(name string) string {
	return name
}

func eventKey(e model.BuildEvent) string {
	return e.ReleaseName + "." + sanitize(e.EventName)
}

// sanitize replaces characters NATS KV keys don't allow.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound)
}

func isNoKeys(err error) bool {
	return errors.Is(err, jetstream.ErrNoKeysFound)
}
