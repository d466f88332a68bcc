package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) SignatureURL(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func withVerification(app *models.OrphanApplication) *models.OrphanApplication {
	app.Verification = models.Verification{
		AgentUserID:         testutil.Ptr("agent-1"),
		AuthenticatorUserID: testutil.Ptr("auth-1"),
		InvestigatorUserID:  testutil.Ptr("inv-1"),
	}
	return app
}

func TestGenerate_Deterministic(t *testing.T) {
	resolver := &mockResolver{}
	resolver.On("SignatureURL", mock.Anything, "agent-1").Return("https://api.example.org/v1/users/media/agent-1/file/SIGNATURE", nil)
	resolver.On("SignatureURL", mock.Anything, "auth-1").Return("https://api.example.org/v1/users/media/auth-1/file/SIGNATURE", nil)
	resolver.On("SignatureURL", mock.Anything, "inv-1").Return("", errors.New("not found"))

	g := NewGenerator(resolver)
	app := withVerification(testutil.CompleteApplication())

	first, err := g.Generate(context.Background(), app)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), app)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_NeverRendersPlaceholders(t *testing.T) {
	g := NewGenerator(nil)

	apps := map[string]*models.OrphanApplication{
		"empty":    models.NewOrphanApplication(),
		"nil":      nil,
		"complete": testutil.CompleteApplication(),
		"unknown enums": func() *models.OrphanApplication {
			app := testutil.CompleteApplication()
			app.PrimaryInformation.Gender = "ALIEN"
			app.BasicInformation.HouseType = "CASTLE"
			app.PrimaryInformation.MothersName = ""
			return app
		}(),
	}

	for name, app := range apps {
		t.Run(name, func(t *testing.T) {
			html, err := g.Generate(context.Background(), app)
			require.NoError(t, err)

			body := withoutLogo(html)
			for _, placeholder := range []string{"undefined", "null", "<no value>", "NaN", "ALIEN", "CASTLE"} {
				assert.NotContains(t, body, placeholder)
			}
		})
	}
}

func TestGenerate_MissingMothersNameIsBlank(t *testing.T) {
	app := testutil.CompleteApplication()
	app.PrimaryInformation.MothersName = ""

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.Contains(t, html, "মাতার নাম (Mother&#39;s Name)</td><td></td>")
}

func TestGenerate_FamilyRowsFollowSiblingCount(t *testing.T) {
	app := testutil.CompleteApplication()
	app.PrimaryInformation.NumOfSiblings = 3
	app.FamilyMembers = app.FamilyMembers[:1]

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(html, `class="family-row"`))
	assert.Contains(t, html, "<td>১</td><td>Fatema</td><td>১২</td>")
	assert.Contains(t, html, "<td>২</td><td></td><td></td><td></td><td></td><td></td><td></td>")
	assert.Contains(t, html, "<td>৩</td><td></td><td></td><td></td><td></td><td></td><td></td>")
}

func TestGenerate_FamilyRowsAreCapped(t *testing.T) {
	app := testutil.CompleteApplication()
	app.PrimaryInformation.NumOfSiblings = 1 << 30

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.Equal(t, models.MaxNumOfSiblings, strings.Count(html, `class="family-row"`))
}

func TestGenerate_NoFamilyTableWithoutSiblings(t *testing.T) {
	app := testutil.CompleteApplication()
	app.PrimaryInformation.NumOfSiblings = 0

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.NotContains(t, html, "family-row")
	assert.NotContains(t, html, "পরিবারের সদস্য")
}

func TestGenerate_FailedLookupsYieldNoImage(t *testing.T) {
	resolver := &mockResolver{}
	resolver.On("SignatureURL", mock.Anything, "agent-1").Return("https://cdn.example.org/agent-1.png", nil)
	resolver.On("SignatureURL", mock.Anything, "auth-1").Return("", errors.New("timeout"))
	resolver.On("SignatureURL", mock.Anything, "inv-1").Return("javascript:alert(1)", nil)

	html, err := NewGenerator(resolver).Generate(context.Background(), withVerification(testutil.CompleteApplication()))

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, `alt="signature"`))
	assert.Contains(t, html, `src="https://cdn.example.org/agent-1.png"`)
	assert.NotContains(t, html, "javascript")
	assert.Equal(t, 4, strings.Count(html, `class="signature"`))
	resolver.AssertNumberOfCalls(t, "SignatureURL", 3)
}

func TestGenerate_SkipsLookupWithoutUser(t *testing.T) {
	resolver := &mockResolver{}

	html, err := NewGenerator(resolver).Generate(context.Background(), testutil.CompleteApplication())

	require.NoError(t, err)
	assert.NotContains(t, html, `alt="signature"`)
	resolver.AssertNotCalled(t, "SignatureURL", mock.Anything, mock.Anything)
}

func TestGenerate_LayoutAndFormatting(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Status = models.StatusRejected
	app.RejectionMessage = testutil.Ptr("Death certificate unreadable")

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.Contains(t, html, "@page")
	assert.Contains(t, html, `src="data:image/svg+xml;base64,`)
	assert.Contains(t, html, "১৪/৩/২০১৫")
	assert.Contains(t, html, "পুরুষ")
	assert.Contains(t, html, "কাঁচা")
	assert.Contains(t, html, "বিধবা")
	assert.Contains(t, html, "Death certificate unreadable")
	assert.Contains(t, html, "প্রত্যাখ্যাত")
}

func TestGenerate_EscapesUserInput(t *testing.T) {
	app := testutil.CompleteApplication()
	app.PrimaryInformation.FullName = `<script>alert("x")</script>`

	html, err := NewGenerator(nil).Generate(context.Background(), app)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func withoutLogo(html string) string {
	const marker = "data:image/svg+xml;base64,"
	start := strings.Index(html, marker)
	if start < 0 {
		return html
	}
	end := strings.IndexByte(html[start:], '"')
	return html[:start] + html[start+end:]
}

func TestSafeImageURL(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{raw: "https://x/y.png", ok: true},
		{raw: "http://x/y.png", ok: true},
		{raw: "blob:https://app/123", ok: true},
		{raw: "data:image/png;base64,AAAA", ok: true},
		{raw: "javascript:alert(1)", ok: false},
		{raw: "", ok: false},
		{raw: "ftp://x/y", ok: false},
	}
	for _, tt := range tests {
		_, ok := safeImageURL(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}
