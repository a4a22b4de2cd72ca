package auth

import "github.com/google/uuid"

// DecisionReason explains an authorization outcome.
type DecisionReason string

const (
	ReasonOwner           DecisionReason = "OWNER"
	ReasonAdmin           DecisionReason = "ADMIN"
	ReasonNotOwner        DecisionReason = "NOT_OWNER"
	ReasonUnauthenticated DecisionReason = "UNAUTHENTICATED"
)

// Decision is the computed outcome of an authorization check.
type Decision struct {
	Allow  bool
	Reason DecisionReason
}

// CanMutate applies the owner-or-admin rule for update/delete operations.
// An unresolved caller identity always denies.
func CanMutate(caller Identity, ownerID uuid.UUID) Decision {
	if caller.ID == uuid.Nil {
		return Decision{Allow: false, Reason: ReasonUnauthenticated}
	}
	if caller.ID == ownerID {
		return Decision{Allow: true, Reason: ReasonOwner}
	}
	if caller.IsAdmin {
		return Decision{Allow: true, Reason: ReasonAdmin}
	}
	return Decision{Allow: false, Reason: ReasonNotOwner}
}
