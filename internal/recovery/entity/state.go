package entity

// State is the lifecycle position of an (address, channel) pair.
type State int8

const (
	StateUnregistered State = iota
	StatePending
	StateVerified
	StateSoftDeleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateVerified:
		return "Verified"
	case StateSoftDeleted:
		return "SoftDeleted"
	default:
		return "Unregistered"
	}
}

// Column values persisted in the status and deleted columns.
const (
	StatusPending = "pending"
	StatusSuccess = "success"

	DeletedTrue  = "true"
	DeletedFalse = "false"
)

// StateFromColumns decodes the persisted status and deleted columns.
func StateFromColumns(status, deleted string) State {
	if deleted == DeletedTrue {
		return StateSoftDeleted
	}
	switch status {
	case StatusPending:
		return StatePending
	case StatusSuccess:
		return StateVerified
	default:
		return StateUnregistered
	}
}

// Status is the persisted status column of s.
func (s State) Status() string {
	if s == StateVerified || s == StateSoftDeleted {
		return StatusSuccess
	}
	return StatusPending
}

// RegisterAction is what Register must do for the current state.
type RegisterAction int8

const (
	RegisterInsert RegisterAction = iota + 1
	RegisterOverwrite
	RegisterNoop
)

// Register resolves the register transition.
// A soft deleted row is invisible to lookups, so it registers like a new one.
func (s State) Register() RegisterAction {
	switch s {
	case StatePending:
		return RegisterOverwrite
	case StateVerified:
		return RegisterNoop
	default:
		return RegisterInsert
	}
}

// Verify resolves the verify transition and whether it changed the state.
func (s State) Verify() (State, bool, error) {
	switch s {
	case StatePending:
		return StateVerified, true, nil
	case StateVerified:
		return StateVerified, false, nil
	default:
		return s, false, ErrIllegalTransition
	}
}

// Delete resolves the soft delete transition. Only verified authenticator
// bindings can be deleted.
func (s State) Delete(ch Channel) (State, error) {
	if !ch.SoftDeletes() || s != StateVerified {
		return s, ErrIllegalTransition
	}
	return StateSoftDeleted, nil
}
