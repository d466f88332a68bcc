package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestExportService_Fields(t *testing.T) {
	svc := NewExportService(nil, logging.New(zaptest.NewLogger(t)))

	seen := map[string]bool{}
	for _, group := range svc.Fields() {
		assert.NotEmpty(t, group.Category)
		for _, f := range group.Fields {
			assert.False(t, seen[f.Path], "duplicate path %s", f.Path)
			seen[f.Path] = true
			assert.NotEmpty(t, f.Label)
		}
	}
	assert.True(t, seen["primaryInformation.fullName"])
	assert.True(t, seen["familyMembers.#.name"])
}

func TestExportService_Export(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewExportService(env.apps, logging.New(zaptest.NewLogger(t)))

	app := testutil.CompleteApplication()
	app.CreatedAt = testutil.Now
	require.NoError(t, env.apps.Create(ctx, app))

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, []string{
		"id",
		"primaryInformation.fullName",
		"primaryInformation.age",
		"familyMembers.#.name",
		"address.present.district",
		"id",
	}, models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "primaryInformation.fullName", "primaryInformation.age", "familyMembers.#.name", "address.present.district"}, records[0])
	assert.Equal(t, []string{"app-1", "Rahim Uddin", "9", "Fatema; Jamal", "Sylhet"}, records[1])
}

func TestExportService_AllFieldsAndUnknownField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewExportService(env.apps, logging.New(zaptest.NewLogger(t)))

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf, nil, models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "basicInformation.cell1")

	_, err = svc.Export(ctx, &bytes.Buffer{}, []string{"basicInformation.password"}, models.ApplicationFilter{})
	assert.ErrorIs(t, err, models.ErrInvalidExportField)
}
