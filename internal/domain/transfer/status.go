package transfer

// Status estado de un traslado de stock entre sedes.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid indica si el estado es uno de los conocidos.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// IsTerminal completed y cancelled no admiten más transiciones.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo las transiciones son solo hacia adelante:
// draft → pending → approved → completed; cualquier estado no terminal → cancelled.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPending || target == StatusCancelled
	case StatusPending:
		return target == StatusApproved || target == StatusCancelled
	case StatusApproved:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}
