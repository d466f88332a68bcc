package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/validation"
)

// Persister stores a validated application
type Persister interface {
	Persist(ctx context.Context, app *models.OrphanApplication) error
}

// PersisterFunc adapts a function to Persister
type PersisterFunc func(ctx context.Context, app *models.OrphanApplication) error

// Persist calls f(ctx, app)
func (f PersisterFunc) Persist(ctx context.Context, app *models.OrphanApplication) error {
	return f(ctx, app)
}

// ValidationError is returned when a save is refused by the rule set
type ValidationError struct {
	Result  validation.Result
	Locator validation.Locator
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field error(s), first at %s", models.ErrValidationFailed, len(e.Result.Errors), e.Locator.Field)
}

func (e *ValidationError) Unwrap() error {
	return models.ErrValidationFailed
}

// AsValidationError extracts the validation failure from err
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// SaveOptions controls a single save
type SaveOptions struct {
	Submit bool
	// Editing is set when the application already exists
	Editing bool
	Actor   *models.Principal
	Now     time.Time
	// Documents lists the document types already on file. A save that lands
	// in COMPLETE or REJECTED with every required type present moves on to
	// PENDING in the same write.
	Documents []models.DocumentType
}

// SaveOutcome describes an accepted save
type SaveOutcome struct {
	Application    *models.OrphanApplication
	Result         validation.Result
	PreviousStatus models.ApplicationStatus
	Status         models.ApplicationStatus
}

// StatusChanged reports whether the save moved the application
func (o SaveOutcome) StatusChanged() bool {
	return o.PreviousStatus != o.Status
}

// Save runs the save pipeline on app: normalize the address, validate at
// the depth implied by opts.Submit, compute the next status, attach the
// actor as agent on creation, and persist. A validation failure returns a
// *ValidationError and leaves the status untouched without persisting. A
// persistence failure restores the pre-save status and agent.
func Save(ctx context.Context, app *models.OrphanApplication, opts SaveOptions, p Persister) (SaveOutcome, error) {
	if app == nil {
		return SaveOutcome{}, errors.New("nil application")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	app.Address.Normalize()

	depth := validation.Partial
	if opts.Submit {
		depth = validation.Full
	}
	result := validation.Validate(app, depth, opts.Now)
	if locator, failed := result.FirstLocator(); failed {
		return SaveOutcome{Application: app, Result: result, PreviousStatus: app.Status, Status: app.Status},
			&ValidationError{Result: result, Locator: locator}
	}

	previous := app.Status
	historyLen := len(app.StatusHistory)
	previousAgent := app.Verification.AgentUserID

	changedBy := ""
	if opts.Actor != nil {
		changedBy = opts.Actor.UserID
	}
	next := NextStatusOnSave(app.Status, opts.Submit, opts.Submit)
	if next != app.Status {
		recordTransition(app, next, changedBy, "", opts.Now)
	}
	ApplyDocumentTransition(app, opts.Documents, changedBy, opts.Now)

	if !opts.Editing && app.Verification.AgentUserID == nil && opts.Actor != nil && opts.Actor.UserID != "" {
		id := opts.Actor.UserID
		app.Verification.AgentUserID = &id
	}

	if err := p.Persist(ctx, app); err != nil {
		app.Status = previous
		app.StatusHistory = app.StatusHistory[:historyLen]
		app.Verification.AgentUserID = previousAgent
		return SaveOutcome{Application: app, Result: result, PreviousStatus: previous, Status: previous},
			fmt.Errorf("failed to persist application: %w", err)
	}

	return SaveOutcome{Application: app, Result: result, PreviousStatus: previous, Status: app.Status}, nil
}

// ExitChoice is the answer to the unsaved-changes confirmation
type ExitChoice int

const (
	ExitCancel ExitChoice = iota
	ExitSaveAndExit
	ExitDiscardAndExit
)

// FormSession holds the state of one open application form: the working
// values, the active tab and the tab flags from the last validation run.
type FormSession struct {
	app       *models.OrphanApplication
	actor     *models.Principal
	persister Persister
	editing   bool
	active    validation.Tab
	dirty     bool
	closed    bool
	last      *validation.Result
	clock     func() time.Time
}

// SessionOption configures a FormSession
type SessionOption func(*FormSession)

// WithClock overrides the session time source
func WithClock(clock func() time.Time) SessionOption {
	return func(s *FormSession) {
		s.clock = clock
	}
}

// NewFormSession opens a form over app. An application with an ID is
// edited in place; one without is being created.
func NewFormSession(app *models.OrphanApplication, actor *models.Principal, persister Persister, opts ...SessionOption) *FormSession {
	if app == nil {
		app = models.NewOrphanApplication()
	}
	s := &FormSession{
		app:       app,
		actor:     actor,
		persister: persister,
		editing:   app.ID != "",
		active:    validation.TabPrimary,
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Values returns the working copy of the application
func (s *FormSession) Values() *models.OrphanApplication {
	return s.app
}

// ActiveTab returns the current tab
func (s *FormSession) ActiveTab() validation.Tab {
	return s.active
}

// GoToNextTab advances one tab, stopping at the last
func (s *FormSession) GoToNextTab() validation.Tab {
	s.active = NextTab(s.active)
	return s.active
}

// GoToPreviousTab goes back one tab, stopping at the first
func (s *FormSession) GoToPreviousTab() validation.Tab {
	s.active = PreviousTab(s.active)
	return s.active
}

// SetActiveTab jumps directly to t
func (s *FormSession) SetActiveTab(t validation.Tab) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tab %d", int(t))
	}
	s.active = t
	return nil
}

// Tabs returns the tab descriptors. Before any save attempt every flag is
// false; afterwards they reflect the last validation run.
func (s *FormSession) Tabs() []validation.TabState {
	if s.last == nil {
		states := make([]validation.TabState, 0, len(validation.AllTabs))
		for _, t := range validation.AllTabs {
			states = append(states, validation.TabState{Tab: t, Key: t.Key()})
		}
		return states
	}
	return s.last.Tabs()
}

// Update applies fn to the working values and marks the form dirty
func (s *FormSession) Update(fn func(app *models.OrphanApplication)) {
	fn(s.app)
	s.dirty = true
}

// MarkDirty flags unsaved changes
func (s *FormSession) MarkDirty() {
	s.dirty = true
}

// Dirty reports whether there are unsaved changes
func (s *FormSession) Dirty() bool {
	return s.dirty
}

// Closed reports whether the session has been exited
func (s *FormSession) Closed() bool {
	return s.closed
}

// HandleSave saves values (or the working values when nil). On validation
// failure the session jumps to the first failing tab.
func (s *FormSession) HandleSave(ctx context.Context, values *models.OrphanApplication, submit bool) (SaveOutcome, error) {
	if values != nil {
		s.app = values
	}

	outcome, err := Save(ctx, s.app, SaveOptions{
		Submit:  submit,
		Editing: s.editing,
		Actor:   s.actor,
		Now:     s.clock(),
	}, s.persister)

	result := outcome.Result
	s.last = &result

	if err == nil {
		s.dirty = false
		s.editing = true
	} else if verr, ok := AsValidationError(err); ok {
		s.active = verr.Locator.Tab
	}
	return outcome, err
}

// ExitResult reports what Exit did
type ExitResult struct {
	Closed  bool
	Outcome *SaveOutcome
}

// Exit leaves the form. A clean form closes immediately. A dirty form
// follows choice: cancel keeps it open, save-and-exit closes only when the
// draft save succeeds, discard-and-exit drops the unsaved changes.
func (s *FormSession) Exit(ctx context.Context, choice ExitChoice) (ExitResult, error) {
	if !s.dirty {
		s.closed = true
		return ExitResult{Closed: true}, nil
	}

	switch choice {
	case ExitCancel:
		return ExitResult{Closed: false}, nil
	case ExitSaveAndExit:
		outcome, err := s.HandleSave(ctx, nil, false)
		if err != nil {
			return ExitResult{Closed: false, Outcome: &outcome}, err
		}
		s.closed = true
		return ExitResult{Closed: true, Outcome: &outcome}, nil
	case ExitDiscardAndExit:
		s.dirty = false
		s.closed = true
		return ExitResult{Closed: true}, nil
	default:
		return ExitResult{}, fmt.Errorf("unknown exit choice %d", int(choice))
	}
}
