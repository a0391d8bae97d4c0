package policy

import (
	"context"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/gate"
	"github.com/psycare/psycare/internal/models"
)

// AlertPolicy lets only the therapist an alert was routed to act on it.
// Any other therapist, linked or not, gets not found.
type AlertPolicy struct{}

func NewAlertPolicy() *AlertPolicy { return &AlertPolicy{} }

func (p *AlertPolicy) Authorize(_ context.Context, principal auth.Principal, _ gate.Action, resource any) error {
	if resource == nil {
		return nil
	}
	alert, ok := resource.(*models.Alert)
	if !ok || !alert.RoutedTo(principal.UserID) {
		return gate.ErrNotFound
	}
	return nil
}
