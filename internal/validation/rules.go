package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/qcbd/app-beneficiary/internal/models"
)

// Depth selects how much of the application is checked
type Depth int

const (
	// Partial is used for drafts: only the identifying fields are mandatory
	Partial Depth = iota
	// Full is used on submit
	Full
)

func (d Depth) String() string {
	if d == Full {
		return "full"
	}
	return "partial"
}

// ParseDepth resolves "partial" or "full"
func ParseDepth(value string) (Depth, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "partial", "draft":
		return Partial, true
	case "full", "submit":
		return Full, true
	default:
		return Partial, false
	}
}

const (
	MinAge               = 0
	MaxAge               = 18
	MaxFamilyMemberAge   = 120
	BCRegistrationLength = 17
	MaxNumOfSiblings     = models.MaxNumOfSiblings
)

var nidLengths = []int{10, 13, 17}

// FieldError is one failed rule
type FieldError struct {
	Field   FieldID `json:"field"`
	Message string  `json:"message"`
	Tab     Tab     `json:"tab"`
}

// Locator points the presentation layer at a failing field
type Locator struct {
	Tab   Tab     `json:"tab"`
	Field FieldID `json:"field"`
}

// TabState is the validity of one tab after a validation run
type TabState struct {
	Tab       Tab    `json:"tab"`
	Key       string `json:"key"`
	IsValid   bool   `json:"isValid"`
	HasErrors bool   `json:"hasErrors"`
}

// Result is the outcome of a validation run
type Result struct {
	Depth  Depth        `json:"-"`
	Errors []FieldError `json:"errors"`
}

// Valid reports whether no rule failed
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Has reports whether field failed at least one rule
func (r Result) Has(field FieldID) bool {
	_, ok := r.Error(field)
	return ok
}

// Error returns the first error raised for field
func (r Result) Error(field FieldID) (FieldError, bool) {
	for _, e := range r.Errors {
		if e.Field == field {
			return e, true
		}
	}
	return FieldError{}, false
}

// ByTab groups errors by owning tab
func (r Result) ByTab() map[Tab][]FieldError {
	grouped := make(map[Tab][]FieldError)
	for _, e := range r.Errors {
		grouped[e.Tab] = append(grouped[e.Tab], e)
	}
	return grouped
}

// FirstLocator returns the first failing field in tab order
func (r Result) FirstLocator() (Locator, bool) {
	if len(r.Errors) == 0 {
		return Locator{}, false
	}
	first := slices.MinFunc(r.Errors, func(a, b FieldError) int {
		return int(a.Tab) - int(b.Tab)
	})
	return Locator{Tab: first.Tab, Field: first.Field}, true
}

// Tabs returns the state of every tab in order
func (r Result) Tabs() []TabState {
	grouped := r.ByTab()
	states := make([]TabState, 0, len(AllTabs))
	for _, t := range AllTabs {
		hasErrors := len(grouped[t]) > 0
		states = append(states, TabState{Tab: t, Key: t.Key(), IsValid: !hasErrors, HasErrors: hasErrors})
	}
	return states
}

type checker struct {
	now    time.Time
	errors []FieldError
}

func (c *checker) add(field FieldID, format string, args ...interface{}) {
	c.errors = append(c.errors, FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Tab:     field.Tab(),
	})
}

func (c *checker) required(field FieldID, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.add(field, "%s is required", field.Label())
		return false
	}
	return true
}

func (c *checker) requiredPtr(field FieldID, present bool) bool {
	if !present {
		c.add(field, "%s is required", field.Label())
		return false
	}
	return true
}

func (c *checker) notFuture(field FieldID, t *time.Time) {
	if t != nil && t.After(c.now) {
		c.add(field, "%s cannot be in the future", field.Label())
	}
}

func (c *checker) intRange(field FieldID, v *int, lo, hi int) {
	if v != nil && (*v < lo || *v > hi) {
		c.add(field, "%s must be between %d and %d", field.Label(), lo, hi)
	}
}

func (c *checker) digits(field FieldID, value string, lengths ...int) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if !isDigits(value) || !slices.Contains(lengths, len(value)) {
		c.add(field, "%s must be %s digits", field.Label(), joinLengths(lengths))
	}
}

func (c *checker) mobile(field FieldID, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if !IsBangladeshMobile(value) {
		c.add(field, "%s must be a valid mobile number starting with %s", field.Label(), BangladeshPrefix)
	}
}

func (c *checker) enum(field FieldID, value string, allowed ...string) {
	if value != "" && !slices.Contains(allowed, value) {
		c.add(field, "%s has an unknown value", field.Label())
	}
}

// Validate checks app at the given depth. now is the reference time for
// date rules. Every error raised at Partial depth is also raised at Full.
func Validate(app *models.OrphanApplication, depth Depth, now time.Time) Result {
	c := &checker{now: now}
	if app == nil {
		app = models.NewOrphanApplication()
	}

	validatePrimary(c, &app.PrimaryInformation, depth)
	if depth == Full {
		validateAddress(c, app.Address)
		validateFamily(c, app.PrimaryInformation.NumOfSiblings, app.FamilyMembers)
	}
	validateBasic(c, &app.BasicInformation, depth)

	return Result{Depth: depth, Errors: c.errors}
}

func validatePrimary(c *checker, p *models.PrimaryInformation, depth Depth) {
	c.required(FieldFullName, p.FullName)
	c.required(FieldFathersName, p.FathersName)
	if c.required(FieldBCRegistration, p.BCRegistration) {
		c.digits(FieldBCRegistration, p.BCRegistration, BCRegistrationLength)
	}

	if depth == Full {
		c.required(FieldMothersName, p.MothersName)
		c.requiredPtr(FieldDateOfBirth, p.DateOfBirth != nil)
		c.requiredPtr(FieldAge, p.Age != nil)
		c.required(FieldGender, string(p.Gender))
		c.required(FieldReligion, p.Religion)
		c.required(FieldNationality, p.Nationality)
		c.requiredPtr(FieldFathersDateOfDeath, p.FathersDateOfDeath != nil)
		c.required(FieldFathersCauseOfDeath, p.FathersCauseOfDeath)
		c.required(FieldMothersOccupation, p.MothersOccupation)
		c.required(FieldMothersMaritalStatus, string(p.MothersMaritalStatus))
		c.required(FieldPhysicalCondition, string(p.PhysicalCondition))
		c.requiredPtr(FieldHasCriticalIllness, p.HasCriticalIllness != nil)
		if p.HasCriticalIllness != nil && *p.HasCriticalIllness {
			c.required(FieldTypeOfIllness, p.TypeOfIllness)
		}
	}

	c.notFuture(FieldDateOfBirth, p.DateOfBirth)
	c.notFuture(FieldFathersDateOfDeath, p.FathersDateOfDeath)
	c.intRange(FieldAge, p.Age, MinAge, MaxAge)
	if p.NumOfSiblings < 0 || p.NumOfSiblings > MaxNumOfSiblings {
		c.add(FieldNumOfSiblings, "%s must be between 0 and %d", FieldNumOfSiblings.Label(), MaxNumOfSiblings)
	}
	c.enum(FieldGender, string(p.Gender), genderCodes...)
	c.enum(FieldMothersMaritalStatus, string(p.MothersMaritalStatus), maritalCodes...)
	c.enum(FieldPhysicalCondition, string(p.PhysicalCondition),
		string(models.PhysicalConditionHealthy), string(models.PhysicalConditionSick), string(models.PhysicalConditionDisabled))
}

func validateAddress(c *checker, a models.Address) {
	requireAddress(c, a.Permanent, [5]FieldID{
		FieldPermanentVillage, FieldPermanentPostOffice, FieldPermanentUpazila, FieldPermanentDistrict, FieldPermanentDivision,
	})
	if !a.IsSameAsPermanent {
		requireAddress(c, a.Present, [5]FieldID{
			FieldPresentVillage, FieldPresentPostOffice, FieldPresentUpazila, FieldPresentDistrict, FieldPresentDivision,
		})
	}
}

func requireAddress(c *checker, d models.AddressDetail, fields [5]FieldID) {
	c.required(fields[0], d.Village)
	c.required(fields[1], d.PostOffice)
	c.required(fields[2], d.Upazila)
	c.required(fields[3], d.District)
	c.required(fields[4], d.Division)
}

func validateFamily(c *checker, numOfSiblings int, members []models.FamilyMember) {
	n := min(max(numOfSiblings, 0), MaxNumOfSiblings)
	for i := 0; i < n; i++ {
		var m models.FamilyMember
		if i < len(members) {
			m = members[i]
		}
		c.required(FamilyField(i, FamilyName), m.Name)
		c.requiredPtr(FamilyField(i, FamilyAge), m.Age != nil)
		c.intRange(FamilyField(i, FamilyAge), m.Age, 0, MaxFamilyMemberAge)
		c.required(FamilyField(i, FamilyGender), string(m.Gender))
		c.enum(FamilyField(i, FamilyGender), string(m.Gender), genderCodes...)
		c.enum(FamilyField(i, FamilyMaritalStatus), string(m.MaritalStatus), maritalCodes...)
	}
}

func validateBasic(c *checker, b *models.BasicInformation, depth Depth) {
	if depth == Full {
		c.required(FieldResidenceStatus, string(b.ResidenceStatus))
		c.required(FieldHouseType, string(b.HouseType))
		c.requiredPtr(FieldNumberOfRooms, b.NumberOfRooms != nil)
		c.required(FieldGuardianName, b.GuardianName)
		c.required(FieldGuardianRelation, b.GuardianRelation)
		c.required(FieldNID, b.NID)
		c.required(FieldCell1, b.Cell1)
	}

	c.intRange(FieldNumberOfRooms, b.NumberOfRooms, 0, 100)
	c.digits(FieldNID, b.NID, nidLengths...)
	c.mobile(FieldCell1, b.Cell1)
	c.mobile(FieldCell2, b.Cell2)
	c.enum(FieldResidenceStatus, string(b.ResidenceStatus),
		string(models.ResidenceOwn), string(models.ResidenceRented), string(models.ResidenceSheltered), string(models.ResidenceHomeless))
	c.enum(FieldHouseType, string(b.HouseType),
		string(models.HousePaka), string(models.HouseSemiPaka), string(models.HouseKacha), string(models.HouseThatched))
}

var genderCodes = []string{string(models.GenderMale), string(models.GenderFemale), string(models.GenderOther)}

var maritalCodes = []string{
	string(models.MaritalMarried), string(models.MaritalUnmarried), string(models.MaritalWidowed), string(models.MaritalDivorced),
}

func isDigits(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func joinLengths(lengths []int) string {
	parts := make([]string, len(lengths))
	for i, n := range lengths {
		parts[i] = fmt.Sprint(n)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}
