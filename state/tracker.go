package state

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/relloyd/billpipe/logger"
)

const loadedExecutionsKey = "loaded_executions"

// LoadRecord is the current on-disk shape of a per-month load state entry:
// the single most recent successful load for that billing month.
type LoadRecord struct {
	ExecutionID string `json:"execution_id" mapstructure:"execution_id"`
	LoadedAt    string `json:"loaded_at" mapstructure:"loaded_at"`
}

// Tracker decides skip-vs-reload per billing month and records successful loads.
// Two historical entry shapes must both be read correctly:
// legacy entries are a list of every execution id ever loaded for the month;
// current entries are a single LoadRecord. Writes always produce the current shape.
type Tracker struct {
	log    logger.Logger
	state  map[string]interface{}
	months map[string]interface{}
}

// NewTracker wraps the state mapping loaded from a Store.
// The mapping is mutated in place so the caller can save it back after the run.
func NewTracker(log logger.Logger, st map[string]interface{}) *Tracker {
	if st == nil {
		st = make(map[string]interface{})
	}
	months, ok := st[loadedExecutionsKey].(map[string]interface{})
	if !ok { // if there is no per-month state yet...
		months = make(map[string]interface{})
		st[loadedExecutionsKey] = months
	}
	return &Tracker{log: log, state: st, months: months}
}

// ShouldLoad reports whether the manifest identified by execID needs (re)loading
// for the given billing month.
// Absent entry: load. Legacy list: load unless execID is a member.
// Current record: load unless the stored id matches - an id change for the same
// month means the provider republished the export and the prior load must be
// superseded.
func (t *Tracker) ShouldLoad(billingMonth, execID string) bool {
	entry, ok := t.months[billingMonth]
	if !ok { // if this month has never been loaded...
		return true
	}
	switch v := entry.(type) {
	case []interface{}: // legacy shape: list of execution ids...
		for _, id := range v {
			if s, ok := id.(string); ok && s == execID {
				return false
			}
		}
		return true
	case []string: // legacy shape as written by old code in-process...
		for _, id := range v {
			if id == execID {
				return false
			}
		}
		return true
	default: // current shape: single record...
		var rec LoadRecord
		if err := mapstructure.Decode(entry, &rec); err != nil {
			t.log.Warn("unreadable load state entry for ", billingMonth, ", forcing reload: ", err)
			return true
		}
		return rec.ExecutionID != execID
	}
}

// RecordLoaded marks the billing month as loaded by execID.
// It always writes the current shape, replacing a legacy list entry if present.
func (t *Tracker) RecordLoaded(billingMonth, execID string, loadedAt time.Time) {
	t.months[billingMonth] = LoadRecord{
		ExecutionID: execID,
		LoadedAt:    loadedAt.UTC().Format(time.RFC3339),
	}
}

// State returns the underlying mapping for persistence via a Store.
func (t *Tracker) State() map[string]interface{} {
	return t.state
}
