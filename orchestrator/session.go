package orchestrator

// Session remembers the simulation binaries built during one invocation.
// A locked binary is never rebuilt because of a netlist change, so tests
// sharing a compilation reuse the first build.
type Session struct {
	locked map[string]struct{}
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{locked: make(map[string]struct{})}
}

// Locked reports whether the binary at path was built or accepted already.
func (s *Session) Locked(path string) bool {
	_, ok := s.locked[path]
	return ok
}

// Lock marks the binary at path as settled for the rest of the session.
func (s *Session) Lock(path string) {
	s.locked[path] = struct{}{}
}
