package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_UploadContinuesPastFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.applications.Save(ctx, "", newValues(), true, agent)
	require.NoError(t, err)

	empty := textFile(string(models.DocDeathCertificate), "")
	tooLarge := textFile(string(models.DocFullSizeImage), strings.Repeat("x", 2048))

	resp, err := env.documents.Upload(ctx, "app-1", []UploadFile{
		textFile(string(models.DocBirthCertificate), "bc"),
		textFile("PASSPORT", "p"),
		empty,
		tooLarge,
	}, agent)
	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 4)

	assert.True(t, resp.Outcomes[0].Success)
	require.NotNil(t, resp.Outcomes[0].Document)
	assert.Equal(t, "agent-1", resp.Outcomes[0].Document.UploadedBy)

	assert.False(t, resp.Outcomes[1].Success)
	assert.Contains(t, resp.Outcomes[1].Error, models.ErrInvalidDocumentType.Error())
	assert.Equal(t, models.ErrEmptyFile.Error(), resp.Outcomes[2].Error)
	assert.Contains(t, resp.Outcomes[3].Error, models.ErrFileTooLarge.Error())

	assert.Equal(t, models.StatusComplete, resp.Status, "required documents still missing")

	docs, err := env.documents.List(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentService_RequiredDocumentsMovePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.applications.Save(ctx, "", newValues(), true, agent)
	require.NoError(t, err)

	var files []UploadFile
	for _, docType := range models.RequiredDocuments {
		files = append(files, textFile(string(docType), "content"))
	}

	resp, err := env.documents.Upload(ctx, "app-1", files, agent)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, resp.Status)

	stored, err := env.apps.Get(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	last := stored.StatusHistory[len(stored.StatusHistory)-1]
	assert.Equal(t, models.StatusComplete, last.From)
	assert.Equal(t, "agent-1", last.ChangedBy)
}

func TestDocumentService_DraftApplicationStaysIncomplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.applications.Save(ctx, "", newValues(), false, agent)
	require.NoError(t, err)

	var files []UploadFile
	for _, docType := range models.RequiredDocuments {
		files = append(files, textFile(string(docType), "content"))
	}
	resp, err := env.documents.Upload(ctx, "app-1", files, agent)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, resp.Status)
}

func TestDocumentService_OpenAndMissingApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.documents.Upload(ctx, "missing", []UploadFile{textFile(string(models.DocOther), "x")}, agent)
	assert.ErrorIs(t, err, models.ErrApplicationNotFound)
	_, err = env.documents.List(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrApplicationNotFound)

	_, err = env.applications.Save(ctx, "", newValues(), false, agent)
	require.NoError(t, err)
	_, err = env.documents.Upload(ctx, "app-1", []UploadFile{textFile(string(models.DocOther), "hello")}, agent)
	require.NoError(t, err)

	info, rc, err := env.documents.Open(ctx, "app-1", models.DocOther)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "other.pdf", info.Filename)

	_, _, err = env.documents.Open(ctx, "app-1", models.DocGuardianNID)
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}
