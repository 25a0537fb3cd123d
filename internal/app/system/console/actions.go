// internal/app/system/console/actions.go
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/scanmenu/admindesk/internal/app/store/audit"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/collection"
	"github.com/scanmenu/admindesk/internal/app/system/notices"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"github.com/scanmenu/admindesk/internal/domain/models"
	"go.uber.org/zap"
)

// ErrInvalid is returned when an action's input fails validation. Nothing
// is sent to the API.
var ErrInvalid = errors.New("console: invalid action")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Business actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionArchive = "archive"
	ActionRestore = "restore"
)

// User actions.
const (
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
	ActionDelete     = "delete"
	ActionRole       = "role"
)

// BusinessAction is a moderation action on one business.
type BusinessAction struct {
	ID     string `validate:"required,max=64,excludesall=/?#"`
	Action string `validate:"required,oneof=approve reject archive restore"`
	Reason string `validate:"max=500"`
}

// UserAction is an account action on one user.
type UserAction struct {
	ID     string `validate:"required,max=64,excludesall=/?#"`
	Action string `validate:"required,oneof=activate deactivate delete role"`
	Role   string `validate:"omitempty,oneof=user restaurant_owner admin superadmin"`
}

// mutation describes one dispatcher call.
type mutation struct {
	verb       string // "approve business"; used in notices
	done       string // success notice when the API sends no message
	eventType  string
	targetType string
	targetID   string
	details    map[string]string
	owner      collection.Fetcher
	call       func(ctx context.Context) (models.MutationResult, error)
}

// Business runs a business moderation action.
func (c *Console) Business(ctx context.Context, by auditlog.Actor, in BusinessAction) (notices.Notice, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Reason = strings.TrimSpace(in.Reason)
	verb := in.Action + " business"
	if err := validate.Struct(in); err != nil {
		return c.invalid(verb, err)
	}

	m := mutation{
		verb:       verb,
		targetType: audit.TargetBusiness,
		targetID:   in.ID,
		owner:      c.businesses,
	}
	var patch map[string]any
	switch in.Action {
	case ActionApprove:
		patch = map[string]any{"verificationStatus": "approved"}
		m.done, m.eventType = "Business approved", audit.EventBusinessApproved
	case ActionReject:
		patch = map[string]any{"verificationStatus": "rejected", "rejectionReason": in.Reason}
		m.done, m.eventType = "Business rejected", audit.EventBusinessRejected
		if in.Reason != "" {
			m.details = map[string]string{"reason": in.Reason}
		}
	case ActionArchive:
		patch = map[string]any{"isArchived": true}
		m.done, m.eventType = "Business archived", audit.EventBusinessArchived
	case ActionRestore:
		patch = map[string]any{"isArchived": false}
		m.done, m.eventType = "Business restored", audit.EventBusinessRestored
	}
	m.call = func(ctx context.Context) (models.MutationResult, error) {
		return c.api.UpdateBusiness(ctx, in.ID, patch)
	}
	return c.dispatch(ctx, by, m)
}

// ApproveBusiness approves a pending business.
func (c *Console) ApproveBusiness(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.Business(ctx, by, BusinessAction{ID: id, Action: ActionApprove})
}

// RejectBusiness rejects a pending business with an optional reason.
func (c *Console) RejectBusiness(ctx context.Context, by auditlog.Actor, id, reason string) (notices.Notice, error) {
	return c.Business(ctx, by, BusinessAction{ID: id, Action: ActionReject, Reason: reason})
}

// ArchiveBusiness archives a business.
func (c *Console) ArchiveBusiness(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.Business(ctx, by, BusinessAction{ID: id, Action: ActionArchive})
}

// RestoreBusiness brings an archived business back.
func (c *Console) RestoreBusiness(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.Business(ctx, by, BusinessAction{ID: id, Action: ActionRestore})
}

// User runs an account action.
func (c *Console) User(ctx context.Context, by auditlog.Actor, in UserAction) (notices.Notice, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Role = strings.TrimSpace(in.Role)
	verb := in.Action + " user"
	if in.Action == ActionRole {
		verb = "change user role"
	}
	if err := validate.Struct(in); err != nil {
		return c.invalid(verb, err)
	}
	if in.Action == ActionRole && in.Role == "" {
		return c.invalid(verb, errors.New("role is required"))
	}

	m := mutation{
		verb:       verb,
		targetType: audit.TargetUser,
		targetID:   in.ID,
		owner:      c.users,
	}
	switch in.Action {
	case ActionActivate:
		m.done, m.eventType = "User activated", audit.EventUserActivated
		m.call = func(ctx context.Context) (models.MutationResult, error) {
			return c.api.UpdateUser(ctx, in.ID, map[string]any{"isActive": true})
		}
	case ActionDeactivate:
		m.done, m.eventType = "User deactivated", audit.EventUserDeactivated
		m.call = func(ctx context.Context) (models.MutationResult, error) {
			return c.api.UpdateUser(ctx, in.ID, map[string]any{"isActive": false})
		}
	case ActionDelete:
		m.done, m.eventType = "User deleted", audit.EventUserDeleted
		m.call = func(ctx context.Context) (models.MutationResult, error) {
			return c.api.DeleteUser(ctx, in.ID)
		}
	case ActionRole:
		m.done, m.eventType = "User role updated", audit.EventUserRoleChanged
		m.details = map[string]string{"role": in.Role}
		m.call = func(ctx context.Context) (models.MutationResult, error) {
			return c.api.UpdateUserRole(ctx, in.ID, in.Role)
		}
	}
	return c.dispatch(ctx, by, m)
}

// ActivateUser re-enables a user account.
func (c *Console) ActivateUser(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.User(ctx, by, UserAction{ID: id, Action: ActionActivate})
}

// DeactivateUser disables a user account.
func (c *Console) DeactivateUser(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.User(ctx, by, UserAction{ID: id, Action: ActionDeactivate})
}

// DeleteUser deletes a user account.
func (c *Console) DeleteUser(ctx context.Context, by auditlog.Actor, id string) (notices.Notice, error) {
	return c.User(ctx, by, UserAction{ID: id, Action: ActionDelete})
}

// ChangeUserRole assigns role to a user.
func (c *Console) ChangeUserRole(ctx context.Context, by auditlog.Actor, id, role string) (notices.Notice, error) {
	return c.User(ctx, by, UserAction{ID: id, Action: ActionRole, Role: role})
}

func (c *Console) invalid(verb string, err error) (notices.Notice, error) {
	reason := "invalid request"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		reason = "invalid " + strings.ToLower(verrs[0].Field())
	} else if err != nil {
		reason = err.Error()
	}
	n := c.notices.Error(fmt.Sprintf("Failed to %s: %s", verb, reason))
	return n, fmt.Errorf("%w: %s", ErrInvalid, reason)
}

// dispatch performs one mutation. On success the owning collection, the
// stats and (when loaded) the charts dataset are refetched; loaded rows are
// never edited locally. On failure nothing but the notice queue changes.
func (c *Console) dispatch(ctx context.Context, by auditlog.Actor, m mutation) (notices.Notice, error) {
	c.Touch()

	callCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), c.log, m.verb)
	res, err := m.call(callCtx)
	cancel()

	if c.audit != nil {
		c.audit.AdminAction(ctx, by, m.eventType, m.targetType, m.targetID, err, m.details)
	}

	if err != nil {
		if apiclient.IsUnauthorized(err) {
			c.expire()
			return notices.Notice{}, err
		}
		c.log.Warn("action failed",
			zap.String("action", m.verb),
			zap.String("target_id", m.targetID),
			zap.Error(err))
		return c.notices.Error(fmt.Sprintf("Failed to %s: %s", m.verb, apiclient.Reason(err))), err
	}

	msg := m.done
	if s := strings.TrimSpace(res.Message); s != "" {
		msg = s
	}
	n := c.notices.Success(msg)

	m.owner.Refresh()
	c.RefreshStats()
	c.mu.Lock()
	chartsLoaded := c.charts.loaded || c.chartsIssued > 0
	c.mu.Unlock()
	if chartsLoaded {
		c.RefreshCharts()
	}
	return n, nil
}
