package internal

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// storedSubscription is the persisted form of a Subscription. Cost is kept as a
// JSON number rather than decimal's default quoted string.
type storedSubscription struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Cost      json.Number `json:"cost"`
	Frequency Frequency   `json:"frequency"`
	NextDate  Date        `json:"nextDate"`
	Notes     string      `json:"notes"`
}

// EncodeSubscriptions serializes the list to the persisted JSON array
func EncodeSubscriptions(subs []Subscription) ([]byte, error) {
	stored := make([]storedSubscription, 0, len(subs))
	for _, sub := range subs {
		stored = append(stored, storedSubscription{
			ID:        sub.ID,
			Name:      sub.Name,
			Category:  sub.Category,
			Cost:      json.Number(sub.Cost.String()),
			Frequency: sub.Frequency,
			NextDate:  sub.NextDate,
			Notes:     sub.Notes,
		})
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshaling subscriptions: %w", err)
	}
	return data, nil
}

// DecodeSubscriptions parses the persisted JSON array. Any malformed record fails
// the whole blob.
func DecodeSubscriptions(data []byte) ([]Subscription, error) {
	var stored []storedSubscription
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing subscriptions: %w", err)
	}

	subs := make([]Subscription, 0, len(stored))
	for i, s := range stored {
		if s.ID == "" {
			return nil, fmt.Errorf("subscription %d: missing id", i)
		}
		if s.NextDate.IsZero() {
			return nil, fmt.Errorf("subscription %q: missing nextDate", s.ID)
		}
		cost, err := decimal.NewFromString(s.Cost.String())
		if err != nil {
			return nil, fmt.Errorf("subscription %q: invalid cost %q: %w", s.ID, s.Cost, err)
		}
		subs = append(subs, Subscription{
			ID:        s.ID,
			Name:      s.Name,
			Category:  s.Category,
			Cost:      cost,
			Frequency: s.Frequency,
			NextDate:  s.NextDate,
			Notes:     s.Notes,
		})
	}
	return subs, nil
}
