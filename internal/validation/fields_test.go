package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTab_LabelsAndKeys(t *testing.T) {
	labels := make([]string, 0, len(AllTabs))
	for _, tab := range AllTabs {
		labels = append(labels, tab.Label())
	}
	assert.Equal(t, []string{
		"Primary Information", "Address", "Family Members", "Basic Information", "Documents", "Verification",
	}, labels)

	assert.Equal(t, "", Tab(42).Label())
	assert.False(t, Tab(-1).Valid())
}

func TestTab_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(FieldError{Field: FieldFullName, Message: "Full name is required", Tab: TabPrimary})
	require.NoError(t, err)
	assert.JSONEq(t, `{"field":"primaryInformation.fullName","message":"Full name is required","tab":"Primary Information"}`, string(data))

	var decoded FieldError
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TabPrimary, decoded.Tab)

	tab, ok := ParseTab("family")
	assert.True(t, ok)
	assert.Equal(t, TabFamily, tab)
}

func TestFieldID_Tab(t *testing.T) {
	tests := []struct {
		field FieldID
		want  Tab
	}{
		{field: FieldFullName, want: TabPrimary},
		{field: FieldPresentDistrict, want: TabAddress},
		{field: FamilyField(1, FamilyAge), want: TabFamily},
		{field: FieldCell2, want: TabBasic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.field.Tab(), string(tt.field))
	}
}

func TestFieldID_Label(t *testing.T) {
	assert.Equal(t, "Full name", FieldFullName.Label())
	assert.Equal(t, "Family member 2 age", FamilyField(1, FamilyAge).Label())
	assert.Equal(t, FieldID("familyMembers[0].name"), FamilyField(0, FamilyName))
}
