// Package relay tracks per-participant display names and last-known
// locations via the PresenceStore type.
package relay

import (
	"sync"

	"github.com/samber/lo"
)

// Location is a raw latitude/longitude pair. Values pass through exactly as
// received from the client; the relay performs no semantic validation of
// geographic data.
type Location struct {
	Lat float64
	Lon float64
}

// PresenceEntry is one row of the presence snapshot delivered in init frames.
// Name is null until the participant has logged in a display name.
type PresenceEntry struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// PresenceStore maps participant ids to display names and locations. All
// updates are idempotent last-write-wins; operations are safe under
// concurrent invocation from many connection tasks.
type PresenceStore struct {
	mu        sync.RWMutex
	names     map[string]string
	locations map[string]Location
}

// NewPresenceStore returns an empty store.
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{
		names:     make(map[string]string),
		locations: make(map[string]Location),
	}
}

// SetName records the display name for a participant.
func (p *PresenceStore) SetName(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[id] = name
}

// SetLocation records the last-known location for a participant.
func (p *PresenceStore) SetLocation(id string, lat, lon float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locations[id] = Location{Lat: lat, Lon: lon}
}

// Name returns the display name for a participant, if one has been set.
func (p *PresenceStore) Name(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[id]
	return name, ok
}

// Location returns the last-known location for a participant, if one has
// been reported.
func (p *PresenceStore) Location(id string) (Location, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loc, ok := p.locations[id]
	return loc, ok
}

// Remove deletes both the name and location entries for a participant.
// Removing an unknown id is a no-op.
func (p *PresenceStore) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.names, id)
	delete(p.locations, id)
}

// Snapshot returns an entry for every participant with a known location.
// A participant who has only set a name is not included; that matches the
// snapshot joiners receive in their init frame. Order is unspecified.
func (p *PresenceStore) Snapshot() []PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return lo.MapToSlice(p.locations, func(id string, loc Location) PresenceEntry {
		var name *string
		if n, ok := p.names[id]; ok {
			name = &n
		}
		return PresenceEntry{ID: id, Name: name, Lat: loc.Lat, Lon: loc.Lon}
	})
}
