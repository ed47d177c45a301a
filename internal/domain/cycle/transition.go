package cycle

// transitions lists the legal MoveToStep targets for each status.
var transitions = map[Status][]Status{
	StatusEditing:          {StatusSent},
	StatusSent:             {StatusAwaitingFeedback, StatusCorrecting},
	StatusAwaitingFeedback: {StatusCorrecting},
	StatusCorrecting:       {StatusAwaitingFeedback, StatusApproved},
}

// approvable lists the statuses MarkApproved accepts.
var approvable = map[Status]bool{
	StatusSent:             true,
	StatusAwaitingFeedback: true,
	StatusCorrecting:       true,
}

// ValidateTransition validates a requested step change.
func ValidateTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// NextSteps returns the statuses reachable from the given one.
func NextSteps(from Status) []Status {
	return append([]Status(nil), transitions[from]...)
}

// Valid reports whether s is a known cycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusEditing, StatusSent, StatusAwaitingFeedback, StatusCorrecting, StatusApproved:
		return true
	}
	return false
}

// Terminal reports whether no further steps are possible.
func (s Status) Terminal() bool {
	return s == StatusApproved
}
