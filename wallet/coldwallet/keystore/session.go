package keystore

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// signState enumerates the states of a signing operation:
//
//	Idle -> Sending(i) -> AwaitingFinalStatus -> Success
//	                                          -> Rejected
//	                                          -> FallbackToHashSigning -> Idle (hash signing)
//
// KeepAlive polling happens inside Sending and does not change the state.
type signState int

const (
	stateIdle signState = iota
	stateSending
	stateAwaitingFinalStatus
	stateSuccess
	stateRejected
	stateFallbackToHashSigning
)

func (s signState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateSending:
		return "Sending"
	case stateAwaitingFinalStatus:
		return "AwaitingFinalStatus"
	case stateSuccess:
		return "Success"
	case stateRejected:
		return "Rejected"
	case stateFallbackToHashSigning:
		return "FallbackToHashSigning"
	}
	return fmt.Sprintf("signState(%d)", int(s))
}

// transactionTransition maps the final status of a transaction transfer to
// the next state. Unknown and multi-operation statuses come from app versions
// that cannot parse the transaction, they sign its hash instead.
func transactionTransition(status StatusWord) signState {
	switch status {
	case SWOK:
		return stateSuccess
	case SWUnknownOperation, SWMultiOperationTransaction:
		return stateFallbackToHashSigning
	default:
		return stateRejected
	}
}

type signSession struct {
	op    Operation
	state signState
}

func newSignSession(op Operation) *signSession {
	return &signSession{op: op, state: stateIdle}
}

// moveTo records a transition, fields are key/value pairs added to the log.
func (s *signSession) moveTo(next signState, fields ...interface{}) {
	entry := logger.WithFields(log.Fields{"op": s.op, "from": s.state, "to": next})
	for i := 0; i+1 < len(fields); i += 2 {
		entry = entry.WithField(fmt.Sprint(fields[i]), fields[i+1])
	}
	entry.Debug("Signing state transition")
	s.state = next
}
