package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"github.com/qcbd/app-beneficiary/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Persist(ctx context.Context, app *models.OrphanApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

var agent = &models.Principal{UserID: "agent-1", Roles: []models.Role{models.RoleAgent}}

func fixedClock() time.Time { return testutil.Now }

func TestSave_DraftOnEmptyFullNameIsRejected(t *testing.T) {
	persister := &mockPersister{}
	app := models.NewOrphanApplication()
	app.PrimaryInformation.FathersName = "Karim"
	app.PrimaryInformation.BCRegistration = "20151234567890123"

	outcome, err := Save(context.Background(), app, SaveOptions{Actor: agent, Now: testutil.Now}, persister)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, validation.Locator{Tab: validation.TabPrimary, Field: validation.FieldFullName}, verr.Locator)
	assert.Equal(t, "Primary Information", verr.Result.Errors[0].Tab.Label())
	assert.Equal(t, models.StatusNew, app.Status)
	assert.Equal(t, models.StatusNew, outcome.Status)
	assert.Nil(t, app.Verification.AgentUserID)
	persister.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
}

func TestSave_DraftTwiceStaysIncomplete(t *testing.T) {
	persister := &mockPersister{}
	persister.On("Persist", mock.Anything, mock.Anything).Return(nil).Twice()

	app := testutil.CompleteApplication()
	app.ID = ""

	first, err := Save(context.Background(), app, SaveOptions{Actor: agent, Now: testutil.Now}, persister)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, first.Status)
	assert.True(t, first.StatusChanged())

	second, err := Save(context.Background(), app, SaveOptions{Actor: agent, Editing: true, Now: testutil.Now}, persister)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, second.Status)
	assert.False(t, second.StatusChanged())
	assert.Len(t, app.StatusHistory, 1)

	persister.AssertExpectations(t)
}

func TestSave_SubmitCompleteStaysComplete(t *testing.T) {
	var persisted models.ApplicationStatus
	persister := PersisterFunc(func(_ context.Context, app *models.OrphanApplication) error {
		persisted = app.Status
		return nil
	})

	app := testutil.CompleteApplication()
	app.Status = models.StatusComplete

	outcome, err := Save(context.Background(), app, SaveOptions{Submit: true, Editing: true, Actor: agent, Now: testutil.Now}, persister)

	require.NoError(t, err)
	assert.True(t, outcome.Result.Valid())
	assert.Equal(t, models.StatusComplete, persisted)
	assert.Empty(t, app.StatusHistory)
}

func TestSave_SubmitMovesToComplete(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Status = models.StatusIncomplete

	outcome, err := Save(context.Background(), app, SaveOptions{Submit: true, Actor: agent, Now: testutil.Now},
		PersisterFunc(func(context.Context, *models.OrphanApplication) error { return nil }))

	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, outcome.PreviousStatus)
	assert.Equal(t, models.StatusComplete, outcome.Status)
}

func TestSave_AgentAttachedOnCreateOnly(t *testing.T) {
	ok := PersisterFunc(func(context.Context, *models.OrphanApplication) error { return nil })

	created := testutil.CompleteApplication()
	_, err := Save(context.Background(), created, SaveOptions{Actor: agent, Now: testutil.Now}, ok)
	require.NoError(t, err)
	require.NotNil(t, created.Verification.AgentUserID)
	assert.Equal(t, "agent-1", *created.Verification.AgentUserID)

	edited := testutil.CompleteApplication()
	_, err = Save(context.Background(), edited, SaveOptions{Actor: agent, Editing: true, Now: testutil.Now}, ok)
	require.NoError(t, err)
	assert.Nil(t, edited.Verification.AgentUserID)

	existing := testutil.CompleteApplication()
	existing.Verification.AgentUserID = testutil.Ptr("agent-0")
	_, err = Save(context.Background(), existing, SaveOptions{Actor: agent, Now: testutil.Now}, ok)
	require.NoError(t, err)
	assert.Equal(t, "agent-0", *existing.Verification.AgentUserID)
}

func TestSave_NormalizesPresentAddress(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Address.Present = models.AddressDetail{District: "Dhaka"}

	_, err := Save(context.Background(), app, SaveOptions{Now: testutil.Now},
		PersisterFunc(func(context.Context, *models.OrphanApplication) error { return nil }))

	require.NoError(t, err)
	assert.Equal(t, app.Address.Permanent, app.Address.Present)
}

func TestSave_SubmitWithDocumentsOnFileMovesToPending(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Status = models.StatusIncomplete

	outcome, err := Save(context.Background(), app, SaveOptions{
		Submit:    true,
		Editing:   true,
		Actor:     agent,
		Now:       testutil.Now,
		Documents: models.RequiredDocuments,
	}, PersisterFunc(func(context.Context, *models.OrphanApplication) error { return nil }))

	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, outcome.PreviousStatus)
	assert.Equal(t, models.StatusPending, outcome.Status)
	require.Len(t, app.StatusHistory, 2)
	assert.Equal(t, models.StatusComplete, app.StatusHistory[0].To)
	assert.Equal(t, models.StatusPending, app.StatusHistory[1].To)
}

func TestSave_DocumentsDoNotAdvanceDrafts(t *testing.T) {
	app := testutil.CompleteApplication()

	outcome, err := Save(context.Background(), app, SaveOptions{Actor: agent, Now: testutil.Now, Documents: models.RequiredDocuments},
		PersisterFunc(func(context.Context, *models.OrphanApplication) error { return nil }))

	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, outcome.Status)
}

func TestSave_PersistFailureRestoresPendingTransition(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Status = models.StatusRejected

	_, err := Save(context.Background(), app, SaveOptions{Submit: true, Editing: true, Actor: agent, Now: testutil.Now, Documents: models.RequiredDocuments},
		PersisterFunc(func(context.Context, *models.OrphanApplication) error { return errors.New("mongo down") }))

	require.Error(t, err)
	assert.Equal(t, models.StatusRejected, app.Status)
	assert.Empty(t, app.StatusHistory)
}

func TestSave_PersistFailureRestoresState(t *testing.T) {
	persister := &mockPersister{}
	persister.On("Persist", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	app := testutil.CompleteApplication()

	_, err := Save(context.Background(), app, SaveOptions{Submit: true, Actor: agent, Now: testutil.Now}, persister)

	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrValidationFailed)
	assert.Equal(t, models.StatusNew, app.Status)
	assert.Empty(t, app.StatusHistory)
	assert.Nil(t, app.Verification.AgentUserID)
}

func TestFormSession_Navigation(t *testing.T) {
	s := NewFormSession(nil, agent, &mockPersister{})

	assert.Equal(t, validation.TabPrimary, s.ActiveTab())
	assert.Equal(t, validation.TabPrimary, s.GoToPreviousTab())
	for i := 0; i < 10; i++ {
		s.GoToNextTab()
	}
	assert.Equal(t, validation.TabVerification, s.ActiveTab())
	assert.Equal(t, validation.TabDocuments, s.GoToPreviousTab())

	require.NoError(t, s.SetActiveTab(validation.TabFamily))
	assert.Equal(t, validation.TabFamily, s.ActiveTab())
	assert.Error(t, s.SetActiveTab(validation.Tab(7)))
	assert.Equal(t, validation.TabFamily, s.ActiveTab())
}

func TestFormSession_TabsBeforeAndAfterSave(t *testing.T) {
	persister := &mockPersister{}
	app := testutil.CompleteApplication()
	app.ID = ""
	app.BasicInformation.Cell1 = ""
	s := NewFormSession(app, agent, persister, WithClock(fixedClock))

	for _, state := range s.Tabs() {
		assert.False(t, state.IsValid)
		assert.False(t, state.HasErrors)
	}

	_, err := s.HandleSave(context.Background(), nil, true)
	require.Error(t, err)

	assert.Equal(t, validation.TabBasic, s.ActiveTab())
	tabs := s.Tabs()
	assert.True(t, tabs[validation.TabPrimary].IsValid)
	assert.True(t, tabs[validation.TabBasic].HasErrors)
	persister.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
}

func TestFormSession_HandleSaveClearsDirty(t *testing.T) {
	persister := &mockPersister{}
	persister.On("Persist", mock.Anything, mock.Anything).Return(nil)

	s := NewFormSession(nil, agent, persister, WithClock(fixedClock))
	s.Update(func(app *models.OrphanApplication) {
		app.PrimaryInformation.FullName = "Rahim"
		app.PrimaryInformation.FathersName = "Karim"
		app.PrimaryInformation.BCRegistration = "20151234567890123"
	})
	assert.True(t, s.Dirty())

	outcome, err := s.HandleSave(context.Background(), nil, false)

	require.NoError(t, err)
	assert.False(t, s.Dirty())
	assert.Equal(t, models.StatusIncomplete, outcome.Status)
	assert.Equal(t, "agent-1", *s.Values().Verification.AgentUserID)
}

func TestFormSession_Exit(t *testing.T) {
	validDraft := func(app *models.OrphanApplication) {
		app.PrimaryInformation.FullName = "Rahim"
		app.PrimaryInformation.FathersName = "Karim"
		app.PrimaryInformation.BCRegistration = "20151234567890123"
	}

	t.Run("clean form closes", func(t *testing.T) {
		s := NewFormSession(nil, agent, &mockPersister{})
		res, err := s.Exit(context.Background(), ExitCancel)
		require.NoError(t, err)
		assert.True(t, res.Closed)
		assert.True(t, s.Closed())
	})

	t.Run("cancel keeps form open", func(t *testing.T) {
		s := NewFormSession(nil, agent, &mockPersister{})
		s.MarkDirty()
		res, err := s.Exit(context.Background(), ExitCancel)
		require.NoError(t, err)
		assert.False(t, res.Closed)
		assert.True(t, s.Dirty())
	})

	t.Run("save and exit", func(t *testing.T) {
		persister := &mockPersister{}
		persister.On("Persist", mock.Anything, mock.Anything).Return(nil).Once()
		s := NewFormSession(nil, agent, persister, WithClock(fixedClock))
		s.Update(validDraft)

		res, err := s.Exit(context.Background(), ExitSaveAndExit)
		require.NoError(t, err)
		assert.True(t, res.Closed)
		require.NotNil(t, res.Outcome)
		assert.Equal(t, models.StatusIncomplete, res.Outcome.Status)
		persister.AssertExpectations(t)
	})

	t.Run("save and exit with invalid draft stays open", func(t *testing.T) {
		s := NewFormSession(nil, agent, &mockPersister{}, WithClock(fixedClock))
		s.MarkDirty()

		res, err := s.Exit(context.Background(), ExitSaveAndExit)
		assert.ErrorIs(t, err, models.ErrValidationFailed)
		assert.False(t, res.Closed)
		assert.False(t, s.Closed())
	})

	t.Run("discard and exit", func(t *testing.T) {
		persister := &mockPersister{}
		s := NewFormSession(nil, agent, persister)
		s.MarkDirty()

		res, err := s.Exit(context.Background(), ExitDiscardAndExit)
		require.NoError(t, err)
		assert.True(t, res.Closed)
		assert.False(t, s.Dirty())
		persister.AssertNotCalled(t, "Persist", mock.Anything, mock.Anything)
	})
}
