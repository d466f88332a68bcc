package validation

import (
	"fmt"
	"strings"
)

// Tab is one of the six fixed sections of the application form
type Tab int

const (
	TabPrimary Tab = iota
	TabAddress
	TabFamily
	TabBasic
	TabDocuments
	TabVerification
)

// AllTabs lists the form tabs in navigation order
var AllTabs = []Tab{TabPrimary, TabAddress, TabFamily, TabBasic, TabDocuments, TabVerification}

var tabKeys = [...]string{"primary", "address", "family", "basic", "documents", "verification"}

var tabLabels = [...]string{
	"Primary Information",
	"Address",
	"Family Members",
	"Basic Information",
	"Documents",
	"Verification",
}

// Valid reports whether t is a declared tab
func (t Tab) Valid() bool {
	return t >= TabPrimary && t <= TabVerification
}

// Key returns the short identifier of the tab
func (t Tab) Key() string {
	if !t.Valid() {
		return ""
	}
	return tabKeys[t]
}

// Label returns the display title of the tab
func (t Tab) Label() string {
	if !t.Valid() {
		return ""
	}
	return tabLabels[t]
}

func (t Tab) String() string {
	return t.Label()
}

// MarshalText encodes the tab as its display label
func (t Tab) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tab %d", int(t))
	}
	return []byte(t.Label()), nil
}

// UnmarshalText accepts either the key or the label of a tab
func (t *Tab) UnmarshalText(text []byte) error {
	parsed, ok := ParseTab(string(text))
	if !ok {
		return fmt.Errorf("unknown tab %q", string(text))
	}
	*t = parsed
	return nil
}

// ParseTab resolves a tab key or label
func ParseTab(value string) (Tab, bool) {
	for _, t := range AllTabs {
		if strings.EqualFold(value, t.Key()) || value == t.Label() {
			return t, true
		}
	}
	return 0, false
}

// FieldID identifies a validated form field by its JSON path
type FieldID string

// Primary information fields
const (
	FieldFullName             FieldID = "primaryInformation.fullName"
	FieldFathersName          FieldID = "primaryInformation.fathersName"
	FieldMothersName          FieldID = "primaryInformation.mothersName"
	FieldBCRegistration       FieldID = "primaryInformation.bcRegistration"
	FieldDateOfBirth          FieldID = "primaryInformation.dateOfBirth"
	FieldAge                  FieldID = "primaryInformation.age"
	FieldGender               FieldID = "primaryInformation.gender"
	FieldReligion             FieldID = "primaryInformation.religion"
	FieldNationality          FieldID = "primaryInformation.nationality"
	FieldFathersDateOfDeath   FieldID = "primaryInformation.fathersDateOfDeath"
	FieldFathersCauseOfDeath  FieldID = "primaryInformation.fathersCauseOfDeath"
	FieldMothersOccupation    FieldID = "primaryInformation.mothersOccupation"
	FieldMothersMaritalStatus FieldID = "primaryInformation.mothersMaritalStatus"
	FieldNumOfSiblings        FieldID = "primaryInformation.numOfSiblings"
	FieldHasCriticalIllness   FieldID = "primaryInformation.hasCriticalIllness"
	FieldTypeOfIllness        FieldID = "primaryInformation.typeOfIllness"
	FieldPhysicalCondition    FieldID = "primaryInformation.physicalCondition"
)

// Address fields
const (
	FieldPermanentVillage    FieldID = "address.permanent.village"
	FieldPermanentPostOffice FieldID = "address.permanent.postOffice"
	FieldPermanentUpazila    FieldID = "address.permanent.upazila"
	FieldPermanentDistrict   FieldID = "address.permanent.district"
	FieldPermanentDivision   FieldID = "address.permanent.division"
	FieldPresentVillage      FieldID = "address.present.village"
	FieldPresentPostOffice   FieldID = "address.present.postOffice"
	FieldPresentUpazila      FieldID = "address.present.upazila"
	FieldPresentDistrict     FieldID = "address.present.district"
	FieldPresentDivision     FieldID = "address.present.division"
)

// Basic information fields
const (
	FieldResidenceStatus  FieldID = "basicInformation.residenceStatus"
	FieldHouseType        FieldID = "basicInformation.houseType"
	FieldNumberOfRooms    FieldID = "basicInformation.numberOfRooms"
	FieldGuardianName     FieldID = "basicInformation.guardianName"
	FieldGuardianRelation FieldID = "basicInformation.guardianRelation"
	FieldNID              FieldID = "basicInformation.nid"
	FieldCell1            FieldID = "basicInformation.cell1"
	FieldCell2            FieldID = "basicInformation.cell2"
)

// FamilySubField names a column of a family member row
type FamilySubField string

const (
	FamilyName          FamilySubField = "name"
	FamilyAge           FamilySubField = "age"
	FamilyGender        FamilySubField = "gender"
	FamilyMaritalStatus FamilySubField = "maritalStatus"
)

// FamilyField returns the identifier of a column in family member row i
func FamilyField(i int, sub FamilySubField) FieldID {
	return FieldID(fmt.Sprintf("familyMembers[%d].%s", i, sub))
}

// Name returns the last path segment of the field
func (f FieldID) Name() string {
	s := string(f)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Tab returns the form tab that owns the field
func (f FieldID) Tab() Tab {
	s := string(f)
	switch {
	case strings.HasPrefix(s, "address."):
		return TabAddress
	case strings.HasPrefix(s, "familyMembers["):
		return TabFamily
	case strings.HasPrefix(s, "basicInformation."):
		return TabBasic
	default:
		return TabPrimary
	}
}

var fieldLabels = map[FieldID]string{
	FieldFullName:             "Full name",
	FieldFathersName:          "Father's name",
	FieldMothersName:          "Mother's name",
	FieldBCRegistration:       "Birth registration number",
	FieldDateOfBirth:          "Date of birth",
	FieldAge:                  "Age",
	FieldGender:               "Gender",
	FieldReligion:             "Religion",
	FieldNationality:          "Nationality",
	FieldFathersDateOfDeath:   "Father's date of death",
	FieldFathersCauseOfDeath:  "Father's cause of death",
	FieldMothersOccupation:    "Mother's occupation",
	FieldMothersMaritalStatus: "Mother's marital status",
	FieldNumOfSiblings:        "Number of siblings",
	FieldHasCriticalIllness:   "Critical illness",
	FieldTypeOfIllness:        "Type of illness",
	FieldPhysicalCondition:    "Physical condition",
	FieldPermanentVillage:     "Village",
	FieldPermanentPostOffice:  "Post office",
	FieldPermanentUpazila:     "Upazila/Thana",
	FieldPermanentDistrict:    "District",
	FieldPermanentDivision:    "Division",
	FieldPresentVillage:       "Village",
	FieldPresentPostOffice:    "Post office",
	FieldPresentUpazila:       "Upazila/Thana",
	FieldPresentDistrict:      "District",
	FieldPresentDivision:      "Division",
	FieldResidenceStatus:      "Residence status",
	FieldHouseType:            "House type",
	FieldNumberOfRooms:        "Number of rooms",
	FieldGuardianName:         "Guardian name",
	FieldGuardianRelation:     "Guardian relation",
	FieldNID:                  "NID",
	FieldCell1:                "Cell 1",
	FieldCell2:                "Cell 2",
}

var familyLabels = map[FamilySubField]string{
	FamilyName:          "Name",
	FamilyAge:           "Age",
	FamilyGender:        "Gender",
	FamilyMaritalStatus: "Marital status",
}

// Label returns a human readable name for the field
func (f FieldID) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	var i int
	var sub string
	if n, _ := fmt.Sscanf(string(f), "familyMembers[%d].%s", &i, &sub); n == 2 {
		return fmt.Sprintf("Family member %d %s", i+1, strings.ToLower(familyLabels[FamilySubField(sub)]))
	}
	return f.Name()
}
