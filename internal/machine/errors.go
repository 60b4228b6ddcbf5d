package machine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/propnet/internal/ir"
)

// MachineError is a query-time contract violation. It is either a rules
// defect surfaced by the circuit (no legal move, ill-defined goal) or a
// malformed query (wrong move count, unknown move or role). None are
// transient; retrying the same query yields the same error.
type MachineError struct {
	Code    ErrorCode
	Message string

	// Role is the affected role, when the error concerns one.
	Role ir.Role

	// Details carries structured context such as counts or the state ID.
	Details map[string]string
}

// ErrorCode categorizes machine errors.
type ErrorCode string

const (
	// ErrCodeNoLegalMoves means a role has no true legal proposition.
	ErrCodeNoLegalMoves ErrorCode = "NO_LEGAL_MOVES"

	// ErrCodeIllDefinedGoal means a role has zero or several true goals.
	ErrCodeIllDefinedGoal ErrorCode = "ILL_DEFINED_GOAL"

	// ErrCodeMoveCountMismatch means a joint move does not supply exactly
	// one move per role.
	ErrCodeMoveCountMismatch ErrorCode = "MOVE_COUNT_MISMATCH"

	// ErrCodeUnknownMove means a role has no input proposition for a move.
	ErrCodeUnknownMove ErrorCode = "UNKNOWN_MOVE"

	// ErrCodeUnknownRole means a role is not part of the game.
	ErrCodeUnknownRole ErrorCode = "UNKNOWN_ROLE"
)

func (e *MachineError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("%s: %s (role=%s)", e.Code, e.Message, e.Role)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var me *MachineError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// IsNoLegalMoves reports whether err is a NO_LEGAL_MOVES error.
func IsNoLegalMoves(err error) bool { return hasCode(err, ErrCodeNoLegalMoves) }

// IsIllDefinedGoal reports whether err is an ILL_DEFINED_GOAL error.
func IsIllDefinedGoal(err error) bool { return hasCode(err, ErrCodeIllDefinedGoal) }

// IsMoveCountMismatch reports whether err is a MOVE_COUNT_MISMATCH error.
func IsMoveCountMismatch(err error) bool { return hasCode(err, ErrCodeMoveCountMismatch) }

// IsUnknownMove reports whether err is an UNKNOWN_MOVE error.
func IsUnknownMove(err error) bool { return hasCode(err, ErrCodeUnknownMove) }

// IsUnknownRole reports whether err is an UNKNOWN_ROLE error.
func IsUnknownRole(err error) bool { return hasCode(err, ErrCodeUnknownRole) }

// NewNoLegalMovesError reports that role has nothing to play in state.
func NewNoLegalMovesError(role ir.Role, state ir.State) *MachineError {
	return &MachineError{
		Code:    ErrCodeNoLegalMoves,
		Message: "no legal moves in state",
		Role:    role,
		Details: map[string]string{"state": state.String()},
	}
}

// NewIllDefinedGoalError reports that role has len(values) true goals.
func NewIllDefinedGoalError(role ir.Role, state ir.State, values []int) *MachineError {
	vs := make([]string, len(values))
	for i, v := range values {
		vs[i] = strconv.Itoa(v)
	}
	msg := "no true goal proposition"
	if len(values) > 1 {
		msg = "multiple true goal propositions"
	}
	return &MachineError{
		Code:    ErrCodeIllDefinedGoal,
		Message: msg,
		Role:    role,
		Details: map[string]string{
			"state":  state.String(),
			"count":  strconv.Itoa(len(values)),
			"values": strings.Join(vs, ","),
		},
	}
}

// NewMoveCountMismatchError reports a joint move of the wrong length.
func NewMoveCountMismatchError(got, want int) *MachineError {
	return &MachineError{
		Code:    ErrCodeMoveCountMismatch,
		Message: fmt.Sprintf("got %d moves, want one per role (%d)", got, want),
		Details: map[string]string{
			"got":  strconv.Itoa(got),
			"want": strconv.Itoa(want),
		},
	}
}

// NewUnknownMoveError reports a move with no input proposition for role.
func NewUnknownMoveError(role ir.Role, move ir.Move) *MachineError {
	return &MachineError{
		Code:    ErrCodeUnknownMove,
		Message: fmt.Sprintf("no input proposition for move %q", move),
		Role:    role,
		Details: map[string]string{"move": string(move)},
	}
}

// NewUnknownRoleError reports a role outside the game's role list.
func NewUnknownRoleError(role ir.Role) *MachineError {
	return &MachineError{
		Code:    ErrCodeUnknownRole,
		Message: "role is not part of the game",
		Role:    role,
	}
}
