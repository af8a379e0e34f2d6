package session

import "github.com/iliyamo/tourism-portal/internal/model"

// Status is the tag of a State.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "uninitialized"
}

// State is the session's view of who is using the client. The fields are
// unexported so only the constructors below can build one; an identity is
// present exactly when the status is StatusAuthenticated.
type State struct {
	status   Status
	identity model.Identity
}

func Uninitialized() State { return State{status: StatusUninitialized} }
func Loading() State       { return State{status: StatusLoading} }
func Anonymous() State     { return State{status: StatusAnonymous} }

// Authenticated is the state of a client signed in as id.
func Authenticated(id model.Identity) State {
	return State{status: StatusAuthenticated, identity: id}
}

func (s State) Status() Status { return s.status }

// Identity returns the current identity and whether there is one.
func (s State) Identity() (model.Identity, bool) {
	if s.status != StatusAuthenticated {
		return model.Identity{}, false
	}
	return s.identity, true
}

// IdentityPtr is Identity as a nil-able pointer, the form the access
// policy takes.
func (s State) IdentityPtr() *model.Identity {
	if s.status != StatusAuthenticated {
		return nil
	}
	id := s.identity
	return &id
}

func (s State) IsLoading() bool       { return s.status == StatusLoading }
func (s State) IsAuthenticated() bool { return s.status == StatusAuthenticated }

// Settled reports whether a decision can be made from s.
func (s State) Settled() bool {
	return s.status == StatusAnonymous || s.status == StatusAuthenticated
}

func (s State) String() string { return s.status.String() }
