package emit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"busindex/internal/index"
)

// SchemaVersion is bumped whenever Snapshot changes incompatibly.
const SchemaVersion = 1

// Snapshot is the serializable form of a merged table.
type Snapshot struct {
	Schema      int                  `json:"schema" msgpack:"schema"`
	Generator   string               `json:"generator" msgpack:"generator"`
	Subscribers []SnapshotSubscriber `json:"subscribers" msgpack:"subscribers"`
}

// SnapshotSubscriber is one subscriber type and its complete entry list.
type SnapshotSubscriber struct {
	Type    string          `json:"type" msgpack:"type"`
	Entries []SnapshotEntry `json:"entries" msgpack:"entries"`
}

// SnapshotEntry mirrors subscriber.Method with types spelled out.
type SnapshotEntry struct {
	Declaring  string `json:"declaring" msgpack:"declaring"`
	Method     string `json:"method" msgpack:"method"`
	Event      string `json:"event" msgpack:"event"`
	ThreadMode string `json:"thread_mode" msgpack:"thread_mode"`
	Priority   int    `json:"priority" msgpack:"priority"`
	Sticky     bool   `json:"sticky" msgpack:"sticky"`
	Inherited  bool   `json:"inherited,omitempty" msgpack:"inherited,omitempty"`
}

// NewSnapshot converts t.
func NewSnapshot(t *index.Table, generator string) Snapshot {
	snap := Snapshot{Schema: SchemaVersion, Generator: generator, Subscribers: []SnapshotSubscriber{}}
	if t == nil {
		return snap
	}
	for _, sub := range t.Subscribers {
		s := SnapshotSubscriber{Type: sub.Type.String(), Entries: make([]SnapshotEntry, 0, len(sub.Entries))}
		for _, e := range sub.Entries {
			s.Entries = append(s.Entries, SnapshotEntry{
				Declaring:  e.Declaring.String(),
				Method:     e.Method,
				Event:      e.Event.Key,
				ThreadMode: e.ThreadMode.String(),
				Priority:   e.Priority,
				Sticky:     e.Sticky,
				Inherited:  e.Inherited,
			})
		}
		snap.Subscribers = append(snap.Subscribers, s)
	}
	return snap
}

// Entries returns the total number of entries.
func (s Snapshot) Entries() int {
	n := 0
	for _, sub := range s.Subscribers {
		n += len(sub.Entries)
	}
	return n
}

// JSONRenderer writes indented JSON snapshots.
type JSONRenderer struct {
	Generator string
}

// Render implements Renderer.
func (r JSONRenderer) Render(t *index.Table) ([]byte, error) {
	data, err := json.MarshalIndent(NewSnapshot(t, r.Generator), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// MsgpackRenderer writes msgpack snapshots.
type MsgpackRenderer struct {
	Generator string
}

// Render implements Renderer.
func (r MsgpackRenderer) Render(t *index.Table) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(NewSnapshot(t, r.Generator)); err != nil {
		return nil, fmt.Errorf("encode msgpack snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reads a JSON or msgpack snapshot. JSON is recognised by its
// leading '{'.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
		}
	} else {
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode msgpack snapshot: %w", err)
		}
	}
	if snap.Schema != SchemaVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot schema %d (want %d)", snap.Schema, SchemaVersion)
	}
	return snap, nil
}
