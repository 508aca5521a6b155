package book

import "marketfeed/wire"

// BinanceStyleSequencer implements the "REST snapshot + buffered WebSocket
// diffs" regime (spec.md §4.5): a book is seeded with lastUpdateId from a
// REST snapshot, then each streamed update carries [firstUpdateID,
// lastUpdateID] and must fit the running boundary exactly once started.
type BinanceStyleSequencer struct {
	lastUpdateID uint64
	started      bool
}

// NewBinanceStyleSequencer seeds the boundary from the REST snapshot's
// lastUpdateId.
func NewBinanceStyleSequencer(restLastUpdateID uint64) *BinanceStyleSequencer {
	return &BinanceStyleSequencer{lastUpdateID: restLastUpdateID}
}

// Check reports whether the update [firstID, lastID] should be applied.
// A false, nil result means the update is a stale duplicate from the
// buffering window and must be silently dropped. A non-nil error is
// terminal (spec.md §7: InvalidSequence).
func (s *BinanceStyleSequencer) Check(symbol string, firstID, lastID uint64) (bool, *wire.Error) {
	if !s.started {
		if lastID <= s.lastUpdateID {
			return false, nil
		}
		if firstID > s.lastUpdateID+1 || lastID < s.lastUpdateID+1 {
			return false, wire.NewInvalidSequence(symbol, s.lastUpdateID, firstID)
		}
		s.started = true
		s.lastUpdateID = lastID
		return true, nil
	}
	if lastID <= s.lastUpdateID {
		return false, nil
	}
	if firstID != s.lastUpdateID+1 {
		return false, wire.NewInvalidSequence(symbol, s.lastUpdateID, firstID)
	}
	s.lastUpdateID = lastID
	return true, nil
}

// PoloniexStyleSequencer implements the "explicit snapshot/update action"
// regime: a "snapshot" message seeds the running id, and each "update"
// must carry exactly prevID+1.
type PoloniexStyleSequencer struct {
	prevID  uint64
	started bool
}

// Seed resets the sequencer from a fresh "snapshot" message's id.
func (s *PoloniexStyleSequencer) Seed(id uint64) {
	s.prevID = id
	s.started = true
}

// CheckUpdate validates an "update" message's id against the running
// boundary. A non-nil error is terminal.
func (s *PoloniexStyleSequencer) CheckUpdate(symbol string, id uint64) *wire.Error {
	if !s.started {
		return wire.NewInvalidSequence(symbol, 0, id)
	}
	if id != s.prevID+1 {
		return wire.NewInvalidSequence(symbol, s.prevID, id)
	}
	s.prevID = id
	return nil
}

// PhemexStyleSequencer implements the "monotone sequence, snapshot
// resets" regime: both snapshot and incremental frames carry a sequence
// number; a snapshot is always an unconditional reset point (the venue
// sends one whenever it detects its own inconsistency), while an
// incremental must strictly increase.
type PhemexStyleSequencer struct {
	prevSeq uint64
	started bool
}

// AcceptSnapshot records a snapshot frame's sequence as the new
// boundary, unconditionally.
func (s *PhemexStyleSequencer) AcceptSnapshot(symbol string, seq uint64) *wire.Error {
	s.prevSeq = seq
	s.started = true
	return nil
}

// AcceptIncremental validates and records an incremental frame's sequence.
func (s *PhemexStyleSequencer) AcceptIncremental(symbol string, seq uint64) *wire.Error {
	if !s.started || seq <= s.prevSeq {
		return wire.NewInvalidSequence(symbol, s.prevSeq, seq)
	}
	s.prevSeq = seq
	return nil
}
