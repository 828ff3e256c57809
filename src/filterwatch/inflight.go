// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package filterwatch

import "sync"

// inflightSet tracks which domains are being checked right now, so a
// manually triggered cycle overlapping the periodic one cannot check
// the same domain twice concurrently.
type inflightSet struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{names: make(map[string]struct{})}
}

// begin marks name as in flight. It returns false if the name is
// already being checked, in which case the caller must skip it and not
// call end.
func (s *inflightSet) begin(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.names[name]; busy {
		return false
	}
	s.names[name] = struct{}{}
	return true
}

// end clears the in-flight mark for name.
func (s *inflightSet) end(name string) {
	s.mu.Lock()
	delete(s.names, name)
	s.mu.Unlock()
}
