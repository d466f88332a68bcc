package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_EffectivePresent(t *testing.T) {
	permanent := AddressDetail{Village: "Charfesson", District: "Bhola", Division: "Barishal"}
	present := AddressDetail{Village: "Mirpur", District: "Dhaka", Division: "Dhaka"}

	tests := []struct {
		name string
		addr Address
		want AddressDetail
	}{
		{
			name: "independent present address",
			addr: Address{Permanent: permanent, Present: present},
			want: present,
		},
		{
			name: "same as permanent ignores stored present",
			addr: Address{Permanent: permanent, Present: present, IsSameAsPermanent: true},
			want: permanent,
		},
		{
			name: "same as permanent with empty present",
			addr: Address{Permanent: permanent, IsSameAsPermanent: true},
			want: permanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.addr.EffectivePresent())
		})
	}
}

func TestAddress_Normalize(t *testing.T) {
	addr := Address{
		Permanent:         AddressDetail{Village: "Charfesson", District: "Bhola"},
		Present:           AddressDetail{Village: "stale"},
		IsSameAsPermanent: true,
	}
	addr.Normalize()
	assert.Equal(t, addr.Permanent, addr.Present)

	addr.IsSameAsPermanent = false
	addr.Permanent.Village = "Lalmohan"
	addr.Normalize()
	assert.Equal(t, "Charfesson", addr.Present.Village)
}

func TestApplicationStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, ApplicationStatus("ARCHIVED").IsValid())
	assert.False(t, ApplicationStatus("").IsValid())
}

func TestParseDocumentType(t *testing.T) {
	dt, ok := ParseDocumentType("BIRTH_CERTIFICATE")
	assert.True(t, ok)
	assert.Equal(t, DocBirthCertificate, dt)

	_, ok = ParseDocumentType("birth_certificate")
	assert.False(t, ok)
}

func TestParseMediaType(t *testing.T) {
	mt, ok := ParseMediaType("SIGNATURE")
	assert.True(t, ok)
	assert.Equal(t, MediaSignature, mt)

	_, ok = ParseMediaType("BANNER")
	assert.False(t, ok)
}

func TestNewOrphanApplication(t *testing.T) {
	app := NewOrphanApplication()
	assert.Equal(t, StatusNew, app.Status)
	assert.NotNil(t, app.FamilyMembers)
	assert.Empty(t, app.FamilyMembers)
}
