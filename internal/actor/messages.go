package actor

import (
	"paygate/internal/identity"
	"paygate/internal/payment"
	"paygate/pkg/domain"
)

// Message set handled by the payment actor.

// AuthorizePayment asks the payment actor to run the authorization pipeline
// and, on success, dispatch the payment.
type AuthorizePayment struct {
	Intent payment.PaymentIntent
}

// Message set handled by the wallet actor.

// PaymentDecided is the payment actor's response to AuthorizePayment. It
// echoes the request ID of the intent that caused it.
type PaymentDecided struct {
	RequestID  domain.RequestID
	Decision   payment.AuthorizationDecision
	Dispatched bool
	TxHash     string
	Detail     string
}

// Message set handled by the identity actor.

// RequestVerification asks the identity actor to open a verification session.
type RequestVerification struct {
	RequestID     domain.RequestID
	Address       domain.Address
	Proof         domain.ProofType
	RequiredValue any
}

// VerificationStarted is the identity actor's response to
// RequestVerification.
type VerificationStarted struct {
	RequestID domain.RequestID
	Session   identity.VerificationSession
	Detail    string
}

// SessionCallback reports a verification outcome from the external provider.
// Callbacks for sessions already in a terminal state are ignored.
type SessionCallback struct {
	SessionID domain.SessionID
	Verified  bool
}

// sweepSessions is the identity actor's internal expiry tick.
type sweepSessions struct{}
