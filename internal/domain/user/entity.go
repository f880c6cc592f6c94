package user

// Entity tags a type as a persisted record. It carries no behavior; storage
// and cache adapters use the kind to namespace rows and keys.
type Entity interface {
	EntityKind() string
}

// Kind is the category label reported by User.
const Kind = "user"

// SchemaVersion identifies the serialized shape of User. Bump it when a field
// is added or changes meaning so stale cached payloads are rejected.
const SchemaVersion = 1

var _ Entity = (*User)(nil)
