package updatable

// Snapshot is a read-only view of a registry for logs and dumps.
type Snapshot struct {
	ID           string          `json:"id" yaml:"id"`
	Participants int             `json:"participants" yaml:"participants"`
	Passes       uint64          `json:"passes" yaml:"passes"`
	Started      bool            `json:"started" yaml:"started"`
	LastTick     uint32          `json:"last_tick" yaml:"last_tick"`
	DebugMode    bool            `json:"debug_mode" yaml:"debug_mode"`
	Entries      []SnapshotEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// SnapshotEntry describes one registration, in dispatch order.
type SnapshotEntry struct {
	Handle    string `json:"handle" yaml:"handle"`
	Type      string `json:"type" yaml:"type"`
	DebugMode bool   `json:"debug_mode" yaml:"debug_mode"`
}

// Snapshot captures the registry state. Registrations pending removal are
// left out.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           r.id.String(),
		Participants: r.Len(),
		Passes:       r.passes,
		Started:      r.started,
		LastTick:     r.last,
		DebugMode:    r.debug,
		Entries:      make([]SnapshotEntry, 0, r.Len()),
	}
	for _, idx := range r.order {
		s := &r.slots[idx]
		if s.doomed {
			continue
		}
		snap.Entries = append(snap.Entries, SnapshotEntry{
			Handle:    Handle{index: idx, gen: s.gen}.String(),
			Type:      typeName(s.p),
			DebugMode: s.p.DebugMode(),
		})
	}
	return snap
}
