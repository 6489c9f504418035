package contextkeys

// contextKey is an unexported type to prevent collisions with context keys
// defined in other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "stashbox context key " + string(c)
}

// UserUIDKey is the key for the authenticated user's uid in context.Context.
const UserUIDKey = contextKey("userUID")

// RequestIDKey is the key for the request ID in context.Context.
const RequestIDKey = contextKey("requestID")

// ComponentKey is the key for the emitting component name in context.Context.
const ComponentKey = contextKey("component")
