// pkg/session/session.go
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/cleaner"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/fixer"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
)

// Session is the in-memory state for one working file: the untouched
// upload, the confirmed mapping, the cleaned copy, pending fix proposals,
// and the undo history. A session has a single mutator at a time; every
// operation serializes on the session lock. Sessions are never shared
// across working files.
type Session struct {
	mu sync.Mutex

	ID     string
	schema *schema.Schema
	logger *zap.Logger

	raw     *model.Dataset
	mapping map[string]string // source column -> target
	cleaned *model.Dataset
	log     []model.ChangeEntry

	pending []model.FixProposal
	applied map[string]model.FixProposal
	order   map[string]int // detection order, for stable re-queue on undo
	history []model.UndoEntry
	byToken map[string]int
}

// New opens a session over an uploaded dataset. The dataset is copied;
// the caller's value is never mutated.
func New(s *schema.Schema, raw *model.Dataset, logger *zap.Logger) (*Session, error) {
	if s == nil {
		return nil, errors.New("canonical schema cannot be nil")
	}
	if raw == nil {
		return nil, errors.New("dataset cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	sess := &Session{
		ID:      uuid.New().String(),
		schema:  s,
		logger:  logger,
		raw:     raw.Clone(),
		mapping: make(map[string]string),
		applied: make(map[string]model.FixProposal),
		order:   make(map[string]int),
		byToken: make(map[string]int),
	}
	logger.Info("Opened session",
		zap.String("session", sess.ID),
		zap.Int("rows", len(raw.Rows)),
		zap.Int("columns", len(raw.Columns)))
	return sess, nil
}

// SetMapping installs the user-confirmed mapping. Unmapped rules are
// dropped; cleaning and detection only see real assignments.
func (s *Session) SetMapping(rules []model.MappingRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping = make(map[string]string, len(rules))
	for _, r := range rules {
		if r.TargetColumn == "" || r.TargetColumn == model.Unmapped {
			continue
		}
		s.mapping[r.SourceColumn] = r.TargetColumn
	}
}

// Mapping returns a copy of the active source→target assignments.
func (s *Session) Mapping() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

// Clean runs the pipeline over the raw upload and replaces the session's
// cleaned table and change log. Earlier fixes and undo history belong to
// the replaced table and are discarded.
func (s *Session) Clean(p *cleaner.Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cleaned, log, err := p.Clean(s.raw, s.mapping)
	if err != nil {
		return err
	}
	s.cleaned = cleaned
	s.log = log
	s.pending = nil
	s.applied = make(map[string]model.FixProposal)
	s.order = make(map[string]int)
	s.history = nil
	s.byToken = make(map[string]int)
	return nil
}

// Detect refreshes the pending proposal queue from the cleaned table.
func (s *Session) Detect(e *fixer.Engine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned == nil {
		return errors.New("no cleaned data: run Clean first")
	}
	s.pending = e.Detect(s.cleaned, s.mapping)
	s.order = make(map[string]int, len(s.pending))
	for i, p := range s.pending {
		s.order[p.ID] = i
	}
	return nil
}

// Pending returns the queue of proposals not yet applied or dismissed.
func (s *Session) Pending() []model.FixProposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FixProposal(nil), s.pending...)
}

// ChangeLog returns the cleaning change log, including applied fixes.
func (s *Session) ChangeLog() []model.ChangeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChangeEntry(nil), s.log...)
}

// Cleaned returns a copy of the current cleaned table.
func (s *Session) Cleaned() *model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned == nil {
		return nil
	}
	return s.cleaned.Clone()
}

// Apply mutates the cleaned table with one proposal (row scope) or every
// pending proposal sharing the column and issue kind (column-bulk scope).
// Exactly one UndoEntry is recorded per call, capturing the previous
// value of every touched cell.
func (s *Session) Apply(fixID string, scope model.FixScope) (model.UndoEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned == nil {
		return model.UndoEntry{}, errors.New("no cleaned data: run Clean first")
	}
	idx := s.findPending(fixID)
	if idx < 0 {
		return model.UndoEntry{}, fmt.Errorf("fix %s is not pending", fixID)
	}
	root := s.pending[idx]

	batch := []model.FixProposal{root}
	if scope == model.ScopeColumn {
		for _, p := range s.pending {
			if p.ID != root.ID && p.Column == root.Column && p.Kind == root.Kind {
				batch = append(batch, p)
			}
		}
	}

	entry := model.UndoEntry{
		Token:          uuid.New().String(),
		Column:         root.Column,
		PreviousValues: make(map[int]string, len(batch)),
	}
	for _, p := range batch {
		entry.FixIDs = append(entry.FixIDs, p.ID)
		entry.PreviousValues[p.RowIndex] = s.cleaned.Get(p.RowIndex, p.Column)
		s.cleaned.Set(p.RowIndex, p.Column, p.ProposedValue)
		s.log = append(s.log, model.ChangeEntry{
			RowIndex: p.RowIndex, Column: p.Column,
			OldValue: entry.PreviousValues[p.RowIndex], NewValue: p.ProposedValue,
			Stage: model.StageFix, Reason: string(p.Kind),
		})
		s.applied[p.ID] = p
	}
	s.removePending(entry.FixIDs)

	s.byToken[entry.Token] = len(s.history)
	s.history = append(s.history, entry)
	s.logger.Info("Applied fix",
		zap.String("session", s.ID),
		zap.String("fix", fixID),
		zap.String("scope", string(scope)),
		zap.Int("rows", len(batch)))
	return entry, nil
}

// Dismiss removes a pending proposal without mutating data.
func (s *Session) Dismiss(fixID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findPending(fixID) < 0 {
		return false
	}
	s.removePending([]string{fixID})
	return true
}

// Undo restores every cell recorded in the token's UndoEntry and deletes
// the entry. The restored proposals re-enter the pending queue in their
// original detection order. A consumed or unknown token is a no-op,
// reported as applied=false.
func (s *Session) Undo(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byToken[token]
	if !ok {
		s.logger.Info("Undo token not found, nothing to do",
			zap.String("session", s.ID), zap.String("token", token))
		return false, nil
	}
	entry := s.history[idx]
	for row, prev := range entry.PreviousValues {
		s.cleaned.Set(row, entry.Column, prev)
	}
	for _, fixID := range entry.FixIDs {
		if p, ok := s.applied[fixID]; ok {
			s.pending = append(s.pending, p)
			delete(s.applied, fixID)
		}
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.order[s.pending[i].ID] < s.order[s.pending[j].ID]
	})

	s.history = append(s.history[:idx], s.history[idx+1:]...)
	delete(s.byToken, token)
	for t, i := range s.byToken {
		if i > idx {
			s.byToken[t] = i - 1
		}
	}
	s.logger.Info("Undid fix",
		zap.String("session", s.ID),
		zap.Strings("fixes", entry.FixIDs))
	return true, nil
}

// Promote materializes a cleaning rule from an applied or pending fix.
func (s *Session) Promote(e *fixer.Engine, fixID string) (model.CleaningRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var proposal model.FixProposal
	if idx := s.findPending(fixID); idx >= 0 {
		proposal = s.pending[idx]
	} else if p, ok := s.applied[fixID]; ok {
		proposal = p
	} else {
		return model.CleaningRule{}, fmt.Errorf("unknown fix %s", fixID)
	}
	target, ok := s.mapping[proposal.Column]
	if !ok {
		return model.CleaningRule{}, fmt.Errorf("fix %s column %q is no longer mapped", fixID, proposal.Column)
	}
	return e.Promote(proposal, target)
}

// History returns the outstanding undo entries, oldest first.
func (s *Session) History() []model.UndoEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.UndoEntry(nil), s.history...)
}

func (s *Session) findPending(fixID string) int {
	for i, p := range s.pending {
		if p.ID == fixID {
			return i
		}
	}
	return -1
}

func (s *Session) removePending(fixIDs []string) {
	drop := make(map[string]bool, len(fixIDs))
	for _, id := range fixIDs {
		drop[id] = true
	}
	kept := s.pending[:0]
	for _, p := range s.pending {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}
