package store

import (
	"testing"
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestApplicationQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name   string
		filter models.ApplicationFilter
		want   bson.M
	}{
		{
			name:   "empty filter matches everything",
			filter: models.ApplicationFilter{},
			want:   bson.M{},
		},
		{
			name:   "status list",
			filter: models.ApplicationFilter{Status: []models.ApplicationStatus{models.StatusPending, models.StatusAccepted}},
			want: bson.M{"status": bson.M{"$in": []models.ApplicationStatus{
				models.StatusPending, models.StatusAccepted,
			}}},
		},
		{
			name:   "district is quoted and case insensitive",
			filter: models.ApplicationFilter{District: " Cox's Bazar (South) "},
			want: bson.M{"address.permanent.district": bson.M{
				"$regex": `^Cox's Bazar \(South\)$`, "$options": "i",
			}},
		},
		{
			name:   "created range",
			filter: models.ApplicationFilter{CreatedFrom: &from, CreatedTo: &to, CreatedBy: "agent-1"},
			want: bson.M{
				"created_at": bson.M{"$gte": from, "$lte": to},
				"created_by": "agent-1",
			},
		},
		{
			name:   "search",
			filter: models.ApplicationFilter{Search: "rahim"},
			want: bson.M{"$or": bson.A{
				bson.M{"primary_information.full_name": bson.M{"$regex": "rahim", "$options": "i"}},
				bson.M{"primary_information.fathers_name": bson.M{"$regex": "rahim", "$options": "i"}},
				bson.M{"primary_information.bc_registration": bson.M{"$regex": "rahim", "$options": "i"}},
				bson.M{"_id": "rahim"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applicationQuery(tt.filter))
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	app := testutil.CompleteApplication()
	app.Status = models.StatusPending
	app.CreatedBy = "agent-1"
	app.CreatedAt = testutil.Now

	before := testutil.Now.Add(-time.Hour)
	after := testutil.Now.Add(time.Hour)

	tests := []struct {
		name   string
		filter models.ApplicationFilter
		want   bool
	}{
		{"empty", models.ApplicationFilter{}, true},
		{"status match", models.ApplicationFilter{Status: []models.ApplicationStatus{models.StatusNew, models.StatusPending}}, true},
		{"status miss", models.ApplicationFilter{Status: []models.ApplicationStatus{models.StatusGranted}}, false},
		{"district ignores case", models.ApplicationFilter{District: "sylhet"}, true},
		{"district miss", models.ApplicationFilter{District: "Dhaka"}, false},
		{"gender miss", models.ApplicationFilter{Gender: models.GenderFemale}, false},
		{"created by miss", models.ApplicationFilter{CreatedBy: "agent-2"}, false},
		{"inside range", models.ApplicationFilter{CreatedFrom: &before, CreatedTo: &after}, true},
		{"before range", models.ApplicationFilter{CreatedFrom: &after}, false},
		{"after range", models.ApplicationFilter{CreatedTo: &before}, false},
		{"search full name", models.ApplicationFilter{Search: "RAHIM"}, true},
		{"search fathers name", models.ApplicationFilter{Search: "karim"}, true},
		{"search registration", models.ApplicationFilter{Search: "1234567890"}, true},
		{"search id", models.ApplicationFilter{Search: "app-1"}, true},
		{"search miss", models.ApplicationFilter{Search: "nobody"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesFilter(app, tt.filter))
		})
	}
}

func TestPresentTypes(t *testing.T) {
	docs := []models.DocumentInfo{
		{Type: models.DocBirthCertificate},
		{Type: models.DocBirthCertificate},
		{Type: models.DocOther},
	}
	assert.Equal(t, []models.DocumentType{models.DocBirthCertificate, models.DocOther}, PresentTypes(docs))
	assert.Empty(t, PresentTypes(nil))
}
