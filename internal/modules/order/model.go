// README: Order aggregate, status definitions, and the transition table.
package order

import (
	"time"

	"colis/internal/types"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusPending        Status = "pending"
	StatusInProgress     Status = "in_progress"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusEnRoute        Status = "en_route"
	StatusNoAnswer       Status = "no_answer"
	StatusUnreachable    Status = "unreachable"
	StatusToRelaunch     Status = "to_relaunch"
	StatusPostponed      Status = "postponed"
	StatusDelivered      Status = "delivered"
	StatusFailedDelivery Status = "failed_delivery"
	StatusCancelled      Status = "cancelled"
	StatusReturnDeclared Status = "return_declared"
	StatusReturned       Status = "returned"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCash      PaymentStatus = "cash"
	PaymentSupplier  PaymentStatus = "paid_to_supplier"
	PaymentCancelled PaymentStatus = "cancelled"
)

// PaymentMode is how a delivered order was paid, supplied by the caller on the
// delivered transition.
type PaymentMode string

const (
	ModeCash           PaymentMode = "cash"
	ModePaidToSupplier PaymentMode = "paid_to_supplier"
)

type Order struct {
	ID             types.ID
	MerchantID     types.ID
	RiderID        *types.ID
	Status         Status
	PaymentStatus  PaymentStatus
	ArticleAmount  int64
	DeliveryFee    int64
	ExpeditionFee  int64
	AmountReceived *int64
	// ReportDate is fixed at creation; every ledger impact of this order,
	// including reversals, lands on this day.
	ReportDate types.Day
	FollowUpAt *time.Time
	PickedUpAt *time.Time
	ReturnedAt *time.Time
	Archived   bool
	Urgent     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

var relaunchStatuses = map[Status]bool{
	StatusNoAnswer:    true,
	StatusUnreachable: true,
	StatusToRelaunch:  true,
	StatusPostponed:   true,
}

// IsRelaunch reports whether a status is a follow-up state that may carry a
// follow_up_at timestamp.
func IsRelaunch(s Status) bool { return relaunchStatuses[s] }

var impactfulStatuses = map[Status]bool{
	StatusDelivered:      true,
	StatusFailedDelivery: true,
	StatusCancelled:      true,
	StatusReturned:       true,
}

// IsImpactful reports whether a status contributes a ledger delta. Every other
// status is intermediate and carries zero impact.
func IsImpactful(s Status) bool { return impactfulStatuses[s] }

func IsTerminal(s Status) bool { return s == StatusReturned }

var statusUpdateTargets = []Status{
	StatusDelivered, StatusFailedDelivery, StatusCancelled,
	StatusNoAnswer, StatusUnreachable, StatusToRelaunch, StatusPostponed,
}

// AllowedTransitions represents the parcel state flow as code. Assignment
// (any non-terminal state to in_progress) is handled by Assign and is not in
// the table.
var AllowedTransitions = map[Status][]Status{
	StatusInProgress:     {StatusReadyForPickup},
	StatusReadyForPickup: {StatusEnRoute},
	StatusEnRoute:        append(append([]Status{}, statusUpdateTargets...), StatusReturnDeclared),
	StatusNoAnswer:       append(append([]Status{}, statusUpdateTargets...), StatusReturnDeclared),
	StatusUnreachable:    append(append([]Status{}, statusUpdateTargets...), StatusReturnDeclared),
	StatusToRelaunch:     append(append([]Status{}, statusUpdateTargets...), StatusReturnDeclared),
	StatusPostponed:      append(append([]Status{}, statusUpdateTargets...), StatusReturnDeclared),
	StatusFailedDelivery: {StatusReturnDeclared},
	StatusCancelled:      {StatusReturnDeclared},
	StatusReturnDeclared: {StatusReturned},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// IsStatusUpdateTarget reports whether a status may be requested through the
// general status-update operation.
func IsStatusUpdateTarget(s Status) bool {
	for _, t := range statusUpdateTargets {
		if t == s {
			return true
		}
	}
	return false
}
