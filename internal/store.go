package internal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultStorageKey is the key the subscription list is persisted under
const DefaultStorageKey = "subscriptions"

// StoreOptions configures a Store. Zero values select the defaults.
type StoreOptions struct {
	Key    string           // storage key, default "subscriptions"
	Logger *zap.Logger      // default no-op
	Now    func() time.Time // clock used for "today", default time.Now
	NewID  func() string    // id generator, default random UUID
}

// Store owns the subscription list. It is the only writer and persists the full
// list after every change.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
	subs    []Subscription
}

func NewStore(storage Storage, opts StoreOptions) *Store {
	s := &Store{
		storage: storage,
		key:     opts.Key,
		log:     opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.key == "" {
		s.key = DefaultStorageKey
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Open runs the startup sequence: load from storage, then roll overdue dates
// forward and persist the result.
func Open(ctx context.Context, storage Storage, opts StoreOptions) (*Store, Outcome, error) {
	s := NewStore(storage, opts)
	outcome, err := s.Load(ctx)
	if err != nil {
		return nil, outcome, err
	}
	if _, err := s.RollForward(ctx); err != nil {
		return nil, outcome, err
	}
	return s, outcome, nil
}

// Load replaces the in-memory list with the persisted one. A missing blob gives an
// empty list. A blob that cannot be decoded is logged and discarded, also giving an
// empty list, and is reported as OutcomeCorruptState rather than an error.
func (s *Store) Load(ctx context.Context) (Outcome, error) {
	blob, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return OutcomeOK, fmt.Errorf("loading subscriptions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.subs = nil
		s.log.Debug("no stored subscriptions", zap.String("key", s.key))
		return OutcomeOK, nil
	}

	subs, err := DecodeSubscriptions(blob)
	if err != nil {
		s.subs = nil
		s.log.Warn("stored subscriptions are corrupt, starting with an empty list",
			zap.String("key", s.key), zap.Error(err))
		return OutcomeCorruptState, nil
	}

	s.subs = subs
	s.log.Debug("loaded subscriptions", zap.String("key", s.key), zap.Int("count", len(subs)))
	return OutcomeOK, nil
}

// Save persists the current list
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.subs)
}

// persist writes subs to storage. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, subs []Subscription) error {
	blob, err := EncodeSubscriptions(subs)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.key, blob); err != nil {
		return fmt.Errorf("saving subscriptions: %w", err)
	}
	s.log.Debug("saved subscriptions", zap.String("key", s.key), zap.Int("count", len(subs)))
	return nil
}

// RollForward advances every next date that lies before today by whole billing
// periods until it is today or later, then persists the list. It returns the
// number of subscriptions that moved.
func (s *Store) RollForward(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := Today(s.now())
	next := slices.Clone(s.subs)
	rolled := 0
	for i := range next {
		from := next[i].NextDate
		next[i].NextDate = RollDate(from, next[i].Frequency, today)
		if next[i].NextDate != from {
			rolled++
			s.log.Info("rolled subscription forward",
				zap.String("id", next[i].ID),
				zap.String("name", next[i].Name),
				zap.Stringer("from", from),
				zap.Stringer("to", next[i].NextDate))
		}
	}

	if err := s.persist(ctx, next); err != nil {
		return 0, err
	}
	s.subs = next
	return rolled, nil
}

// RollDate applies AddPeriod to d until it is no longer before today. Every
// frequency advances at least one day per step, so the loop ends.
func RollDate(d Date, f Frequency, today Date) Date {
	for DaysUntil(today, d) < 0 {
		d = AddPeriod(d, f)
	}
	return d
}

// Add assigns a fresh id, appends the subscription and persists
func (s *Store) Add(ctx context.Context, in NewSubscription) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := Subscription{
		ID:        s.newID(),
		Name:      in.Name,
		Category:  in.Category,
		Cost:      in.Cost,
		Frequency: ParseFrequency(string(in.Frequency)),
		NextDate:  in.NextDate,
		Notes:     in.Notes,
	}

	next := append(slices.Clone(s.subs), sub)
	if err := s.persist(ctx, next); err != nil {
		return Subscription{}, err
	}
	s.subs = next
	s.log.Info("added subscription", zap.String("id", sub.ID), zap.String("name", sub.Name))
	return sub, nil
}

// Edit looks up the edit target for id and returns a copy of it, so a caller can
// populate a form and later hand the same id to Update.
func (s *Store) Edit(id string) (Subscription, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Subscription{}, OutcomeNotFound
	}
	return s.subs[i], OutcomeOK
}

// Update merges patch over the subscription with id, keeping its id and position.
// An unknown id is not an error: nothing changes and OutcomeNotFound is returned.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("update target not found", zap.String("id", id))
		return OutcomeNotFound, nil
	}

	next := slices.Clone(s.subs)
	next[i] = patch.apply(next[i])
	if err := s.persist(ctx, next); err != nil {
		return OutcomeOK, err
	}
	s.subs = next
	s.log.Info("updated subscription", zap.String("id", id))
	return OutcomeOK, nil
}

// Delete removes the subscription with id. An unknown id returns OutcomeNotFound.
func (s *Store) Delete(ctx context.Context, id string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("delete target not found", zap.String("id", id))
		return OutcomeNotFound, nil
	}

	next := slices.Delete(slices.Clone(s.subs), i, i+1)
	if err := s.persist(ctx, next); err != nil {
		return OutcomeOK, err
	}
	s.subs = next
	s.log.Info("deleted subscription", zap.String("id", id))
	return OutcomeOK, nil
}

// List returns a copy of the subscriptions in insertion order
func (s *Store) List() []Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.subs)
}

// Summary summarizes the current list against the store's clock
func (s *Store) Summary() Summary {
	return Summarize(s.List(), s.now())
}

// ResolveID resolves a full id or a unique id prefix, as shown in the table view
func (s *Store) ResolveID(prefix string) (string, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(prefix); i >= 0 {
		return s.subs[i].ID, OutcomeOK
	}
	match := ""
	for _, sub := range s.subs {
		if prefix != "" && strings.HasPrefix(sub.ID, prefix) {
			if match != "" {
				return "", OutcomeNotFound // ambiguous
			}
			match = sub.ID
		}
	}
	if match == "" {
		return "", OutcomeNotFound
	}
	return match, OutcomeOK
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.subs, func(sub Subscription) bool {
		return sub.ID == id
	})
}
