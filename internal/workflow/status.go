package workflow

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
)

// Transition triggers, used as metric and audit labels
const (
	TriggerSaveDraft = "save_draft"
	TriggerSubmit    = "submit"
	TriggerDocuments = "documents"
	TriggerDecision  = "decision"
)

var submittable = []models.ApplicationStatus{models.StatusNew, models.StatusIncomplete, models.StatusRejected}

var awaitingDocuments = []models.ApplicationStatus{models.StatusComplete, models.StatusRejected}

var decidable = []models.ApplicationStatus{models.StatusPending, models.StatusAccepted}

var decisionTargets = []models.ApplicationStatus{models.StatusAccepted, models.StatusRejected, models.StatusGranted}

// NextStatusOnSave returns the status after a Save Draft (submit=false) or
// Submit (submit=true). fullValid reports whether full validation passed.
func NextStatusOnSave(current models.ApplicationStatus, submit, fullValid bool) models.ApplicationStatus {
	if submit {
		if fullValid && slices.Contains(submittable, current) {
			return models.StatusComplete
		}
		return current
	}
	if current == models.StatusNew {
		return models.StatusIncomplete
	}
	return current
}

// HasRequiredDocuments reports whether present covers every required type
func HasRequiredDocuments(present []models.DocumentType) bool {
	return len(MissingDocuments(present)) == 0
}

// MissingDocuments lists the required types absent from present
func MissingDocuments(present []models.DocumentType) []models.DocumentType {
	var missing []models.DocumentType
	for _, required := range models.RequiredDocuments {
		if !slices.Contains(present, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// NextStatusOnDocuments returns PENDING once a COMPLETE or REJECTED
// application holds every required document, and current otherwise.
func NextStatusOnDocuments(current models.ApplicationStatus, present []models.DocumentType) models.ApplicationStatus {
	if slices.Contains(awaitingDocuments, current) && HasRequiredDocuments(present) {
		return models.StatusPending
	}
	return current
}

// ApplyDocumentTransition moves app to PENDING when its documents allow it.
// It reports whether the status changed.
func ApplyDocumentTransition(app *models.OrphanApplication, present []models.DocumentType, changedBy string, now time.Time) bool {
	next := NextStatusOnDocuments(app.Status, present)
	if next == app.Status {
		return false
	}
	recordTransition(app, next, changedBy, "", now)
	return true
}

// CanDecide reports whether staff may decide on an application in status
func CanDecide(status models.ApplicationStatus) bool {
	return slices.Contains(decidable, status)
}

// Decide applies a staff decision. REJECTED stores message as the rejection
// message and any other decision clears it. An authenticator's decision
// records them as the application's authenticator when none is set.
func Decide(app *models.OrphanApplication, actor *models.Principal, target models.ApplicationStatus, message string, now time.Time) error {
	if !actor.HasAnyRole(models.DecisionRoles...) {
		return fmt.Errorf("%w: decisions require one of %v", models.ErrForbidden, models.DecisionRoles)
	}
	if !slices.Contains(decisionTargets, target) {
		return fmt.Errorf("%w: %s is not a decision", models.ErrInvalidTransition, target)
	}
	if !CanDecide(app.Status) {
		return fmt.Errorf("%w: cannot decide on %s application", models.ErrInvalidTransition, app.Status)
	}
	if app.Status == target {
		return fmt.Errorf("%w: application is already %s", models.ErrInvalidTransition, target)
	}

	message = strings.TrimSpace(message)
	if target == models.StatusRejected {
		if message != "" {
			app.RejectionMessage = &message
		} else {
			app.RejectionMessage = nil
		}
	} else {
		app.RejectionMessage = nil
	}

	if actor.HasRole(models.RoleAuthenticator) && app.Verification.AuthenticatorUserID == nil {
		id := actor.UserID
		app.Verification.AuthenticatorUserID = &id
	}

	recordTransition(app, target, actor.UserID, message, now)
	return nil
}

func recordTransition(app *models.OrphanApplication, to models.ApplicationStatus, changedBy, message string, now time.Time) {
	app.StatusHistory = append(app.StatusHistory, models.StatusChange{
		From:      app.Status,
		To:        to,
		ChangedBy: changedBy,
		Message:   message,
		ChangedAt: now,
	})
	app.Status = to
}
