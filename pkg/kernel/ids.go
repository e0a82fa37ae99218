package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// SessionID identifies one buyer conversation. Session ids are scoped to
// their owner with ScopedSessionID before they reach a store.
type SessionID string

func NewSessionID(id string) SessionID { return SessionID(id) }
func (s SessionID) String() string     { return string(s) }
func (s SessionID) IsEmpty() bool      { return string(s) == "" }

// ScopedSessionID namespaces a client-chosen session id under its owner.
func ScopedSessionID(owner UserID, id string) SessionID {
	return SessionID(owner.String() + "/" + id)
}
