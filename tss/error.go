package tss

import (
	"fmt"
)

// ErrorKind classifies a session failure: exactly one of our own invariants
// being violated (MyFault), a specific peer misbehaving (the TheirFault
// kinds, which carry culprits), or the protocol-level delta equality check
// failing (Protocol, which carries identification evidence as its cause).
type ErrorKind int

const (
	KindMyFault ErrorKind = iota
	KindDeserialization
	KindDuplicateMessage
	KindOutOfOrderMessage
	KindVerificationFail
	KindMissingMessage
	KindConsensusMismatch
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindMyFault:
		return "MyFault"
	case KindDeserialization:
		return "DeserializationError"
	case KindDuplicateMessage:
		return "DuplicateMessage"
	case KindOutOfOrderMessage:
		return "OutOfOrderMessage"
	case KindVerificationFail:
		return "VerificationFail"
	case KindMissingMessage:
		return "MissingMessage"
	case KindConsensusMismatch:
		return "ConsensusMismatch"
	case KindProtocol:
		return "Protocol"
	}
	return "Unknown"
}

// Error is the terminal error type of a session. All errors are terminal:
// a protocol with a deviating party is cryptographically unrecoverable, so
// nothing here is retried or masked.
type Error struct {
	cause    error
	kind     ErrorKind
	task     string
	round    int
	victim   *PartyID
	culprits []*PartyID
}

func NewError(err error, kind ErrorKind, task string, round int, victim *PartyID, culprits ...*PartyID) *Error {
	return &Error{cause: err, kind: kind, task: task, round: round, victim: victim, culprits: culprits}
}

func (err *Error) Unwrap() error { return err.cause }

func (err *Error) Cause() error { return err.cause }

func (err *Error) Kind() ErrorKind { return err.kind }

func (err *Error) Task() string { return err.task }

func (err *Error) Round() int { return err.round }

func (err *Error) Victim() *PartyID { return err.victim }

func (err *Error) Culprits() []*PartyID { return err.culprits }

// IsTheirFault reports whether the error blames one or more peers.
func (err *Error) IsTheirFault() bool {
	return err != nil && len(err.culprits) > 0 && err.kind != KindMyFault
}

func (err *Error) Error() string {
	if err == nil || err.cause == nil {
		return "Error is nil"
	}
	if len(err.culprits) > 0 {
		return fmt.Sprintf("task %s, party %v, round %d, %s, culprits %s: %s",
			err.task, err.victim, err.round, err.kind, err.culprits, err.cause.Error())
	}
	return fmt.Sprintf("task %s, party %v, round %d, %s: %s",
		err.task, err.victim, err.round, err.kind, err.cause.Error())
}
