package ferrors

import "sync"

// Session accumulates warnings and errors across a single build, deduping
// by (code, file) so the same underlying problem reported from multiple
// pages (e.g. a missing partial template referenced by every post) shows up
// once in the summary rather than once per page. Safe for concurrent use
// from the rendering worker pool.
type Session struct {
	mu       sync.Mutex
	seen     map[[2]string]bool
	Warnings []*Error
	Fatal    []*Error
}

// NewSession returns an empty error session.
func NewSession() *Session {
	return &Session{seen: make(map[[2]string]bool)}
}

// Warn records a non-fatal error. Duplicate (code, file) pairs are dropped.
func (s *Session) Warn(e *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{string(e.Code), e.File}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.Warnings = append(s.Warnings, e)
}

// Fail records a fatal error. Duplicate (code, file) pairs are dropped.
func (s *Session) Fail(e *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{string(e.Code), e.File}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.Fatal = append(s.Fatal, e)
}

// HasFatal reports whether any fatal error has been recorded.
func (s *Session) HasFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Fatal) > 0
}

// Summary returns a short count of warnings/errors for end-of-phase logging.
func (s *Session) Summary() (warnings, fatal int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Warnings), len(s.Fatal)
}
