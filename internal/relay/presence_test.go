package relay

import "testing"

// TestPresenceSnapshotOnlyLocatedParticipants verifies that a participant who
// has only set a name does not appear in the snapshot until a location is
// reported.
func TestPresenceSnapshotOnlyLocatedParticipants(t *testing.T) {
	p := NewPresenceStore()
	p.SetName("a", "Alice")

	if got := p.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(got))
	}

	p.SetLocation("a", 10, 20)
	got := p.Snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	entry := got[0]
	if entry.ID != "a" || entry.Lat != 10 || entry.Lon != 20 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Name == nil || *entry.Name != "Alice" {
		t.Errorf("expected name Alice, got %v", entry.Name)
	}
}

// TestPresenceSnapshotNullName verifies that a located participant without a
// name appears with a nil name.
func TestPresenceSnapshotNullName(t *testing.T) {
	p := NewPresenceStore()
	p.SetLocation("a", 1, 2)

	got := p.Snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Name != nil {
		t.Errorf("expected nil name, got %q", *got[0].Name)
	}
}

// TestPresenceLastWriteWins verifies that repeated updates simply replace the
// stored values.
func TestPresenceLastWriteWins(t *testing.T) {
	p := NewPresenceStore()
	p.SetName("a", "first")
	p.SetName("a", "second")
	p.SetLocation("a", 1, 1)
	p.SetLocation("a", 3, 4)

	if name, _ := p.Name("a"); name != "second" {
		t.Errorf("expected name second, got %q", name)
	}
	loc, ok := p.Location("a")
	if !ok || loc.Lat != 3 || loc.Lon != 4 {
		t.Errorf("unexpected location: %+v ok=%v", loc, ok)
	}
}

// TestPresenceRemove verifies that Remove deletes both the name and location
// entries and is safe to call for unknown ids.
func TestPresenceRemove(t *testing.T) {
	p := NewPresenceStore()
	p.SetName("a", "Alice")
	p.SetLocation("a", 1, 2)

	p.Remove("a")
	if _, ok := p.Name("a"); ok {
		t.Error("name survived Remove")
	}
	if _, ok := p.Location("a"); ok {
		t.Error("location survived Remove")
	}

	p.Remove("a")
	p.Remove("never-seen")
}

// TestPresenceConcurrentAccess exercises the store from many goroutines to
// catch races under the -race detector.
func TestPresenceConcurrentAccess(t *testing.T) {
	p := NewPresenceStore()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			id := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				p.SetName(id, "name")
				p.SetLocation(id, float64(j), float64(-j))
				p.Snapshot()
				p.Remove(id)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
