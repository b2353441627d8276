package lifecycle

// InvalidTransitionError reports a status change the transition table
// forbids. It is recoverable: the caller should surface the reason and the
// allowed next statuses and let the user pick a legal move.
type InvalidTransitionError struct {
	Kind      EntityKind // which table rejected the move
	Current   string     // status the entity was in
	Requested string     // status the caller asked for
	Reason    string     // validator's reason, verbatim
}

// Error returns the validator's reason text.
func (e *InvalidTransitionError) Error() string {
	return e.Reason
}

// MissingRequiredFieldError reports a transition whose kind-specific
// precondition was not met, such as marking a finding FIXED without fix
// notes. It is recoverable: the caller should prompt for the named field.
type MissingRequiredFieldError struct {
	Field  string // snake_case field the precondition is about
	Reason string
}

// Error returns the precondition's reason text.
func (e *MissingRequiredFieldError) Error() string {
	return e.Reason
}
