// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"time"

	"github.com/qcbd/app-beneficiary/internal/models"
)

// Now is the reference time used by fixtures
var Now = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// CompleteApplication returns an application that passes full validation
func CompleteApplication() *models.OrphanApplication {
	dob := time.Date(2015, time.March, 14, 0, 0, 0, 0, time.UTC)
	death := time.Date(2022, time.November, 2, 0, 0, 0, 0, time.UTC)

	return &models.OrphanApplication{
		ID:     "app-1",
		Status: models.StatusNew,
		PrimaryInformation: models.PrimaryInformation{
			FullName:             "Rahim Uddin",
			FathersName:          "Karim Uddin",
			MothersName:          "Amena Begum",
			BCRegistration:       "20151234567890123",
			DateOfBirth:          &dob,
			Age:                  Ptr(9),
			Gender:               models.GenderMale,
			Religion:             "Islam",
			Nationality:          "Bangladeshi",
			FathersDateOfDeath:   &death,
			FathersCauseOfDeath:  "Road accident",
			MothersOccupation:    "Housewife",
			MothersMaritalStatus: models.MaritalWidowed,
			SchoolName:           "Sylhet Govt. Primary School",
			Grade:                "3",
			NumOfSiblings:        2,
			HasCriticalIllness:   Ptr(false),
			PhysicalCondition:    models.PhysicalConditionHealthy,
		},
		Address: models.Address{
			Permanent: models.AddressDetail{
				Village:    "Kanaighat",
				PostOffice: "Kanaighat",
				Upazila:    "Kanaighat",
				District:   "Sylhet",
				Division:   "Sylhet",
			},
			IsSameAsPermanent: true,
		},
		FamilyMembers: []models.FamilyMember{
			{Name: "Fatema", Age: Ptr(12), Occupation: "Student", Gender: models.GenderFemale, MaritalStatus: models.MaritalUnmarried, Grade: "6"},
			{Name: "Jamal", Age: Ptr(5), Gender: models.GenderMale},
		},
		BasicInformation: models.BasicInformation{
			ResidenceStatus:  models.ResidenceOwn,
			HouseType:        models.HouseKacha,
			NumberOfRooms:    Ptr(2),
			Landed:           "5 decimal",
			GuardianName:     "Amena Begum",
			GuardianRelation: "Mother",
			NID:              "1234567890",
			Cell1:            "+8801712345678",
		},
		CreatedAt: Now.Add(-48 * time.Hour),
		UpdatedAt: Now.Add(-48 * time.Hour),
	}
}
