// Package actor runs the wallet, payment, and identity actors as independent
// message-driven units. Each actor owns a mailbox and handles one message at
// a time; the three actors run concurrently with respect to each other, and
// cross-actor calls are asynchronous sends whose responses come back as
// messages.
package actor

import (
	"fmt"
)

// Role is the closed set of actor identities. Unknown roles are rejected at
// the boundary rather than falling through to a default behavior.
type Role string

const (
	RoleWallet   Role = "wallet"
	RolePayment  Role = "payment"
	RoleIdentity Role = "identity"
)

// ParseRole validates a wire-form role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleWallet, RolePayment, RoleIdentity:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown actor role %q", s)
	}
}
