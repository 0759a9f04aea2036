package domain

import "fmt"

// Action is a domain operation recorded in the history ledger. Work actions
// may change a cylinder's status; marker actions record master-data changes.
type Action string

const (
	// Marker actions, appended by the master CRUD path.
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"

	// Work actions, applied through Transition.
	ActionStart            Action = "START"
	ActionComplete         Action = "COMPLETE"
	ActionDelivery         Action = "DELIVERY"
	ActionCollection       Action = "COLLECTION"
	ActionInspectionSend   Action = "INSPECTION_SEND"
	ActionInspectionReturn Action = "INSPECTION_RETURN"
	ActionDispose          Action = "DISPOSE"
)

// ParseWorkAction validates a wire action string against the closed work
// action set. Marker actions are not accepted from the work endpoints.
func ParseWorkAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionStart, ActionComplete, ActionDelivery, ActionCollection,
		ActionInspectionSend, ActionInspectionReturn, ActionDispose:
		return Action(raw), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, raw)
}

// transitionRule describes one row of the state table: which statuses an
// action accepts and which status it produces.
type transitionRule struct {
	from []Status
	to   Status
}

var transitionTable = map[Action]transitionRule{
	ActionStart:            {from: []Status{StatusEmpty}, to: StatusCharging},
	ActionComplete:         {from: []Status{StatusCharging}, to: StatusFull},
	ActionDelivery:         {from: []Status{StatusEmpty, StatusFull}, to: StatusDelivered},
	ActionCollection:       {from: []Status{StatusDelivered}, to: StatusEmpty},
	ActionInspectionSend:   {from: []Status{StatusEmpty, StatusFull}, to: StatusUnderInspection},
	ActionInspectionReturn: {from: []Status{StatusUnderInspection}, to: StatusEmpty},
	ActionDispose:          {from: []Status{StatusEmpty, StatusCharging, StatusFull, StatusUnderInspection}, to: StatusDisposed},
}

// Transition validates a work action against the cylinder's current state and
// returns the resulting status. It owns every legality rule: the soft-delete
// guard, the state table, and the customer binding for DELIVERY/COLLECTION.
// It performs no side effects; the caller commits the status mutation and the
// ledger append as one unit.
func Transition(c Cylinder, action Action, customerID string) (Status, error) {
	if c.Deleted {
		return "", fmt.Errorf("%w: cylinder %s is deleted", ErrGone, c.ID)
	}

	rule, ok := transitionTable[action]
	if !ok {
		return "", fmt.Errorf("%w: action %q is not a work action", ErrInvalidRequest, action)
	}

	switch action {
	case ActionDelivery:
		if customerID == "" {
			return "", fmt.Errorf("%w: delivery requires a customer", ErrInvalidRequest)
		}
	case ActionCollection:
		if customerID == "" {
			return "", fmt.Errorf("%w: collection requires a customer", ErrInvalidRequest)
		}
		if c.CustomerID != customerID {
			return "", fmt.Errorf("%w: cylinder %s is not held by customer %s", ErrInvalidTransition, c.ID, customerID)
		}
	}

	for _, from := range rule.from {
		if c.Status == from {
			return rule.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s not allowed from status %s", ErrInvalidTransition, action, c.Status)
}
