package models

import "time"

// MaxNumOfSiblings bounds the family table of an application
const MaxNumOfSiblings = 20

// OrphanApplication is the intake form aggregate
type OrphanApplication struct {
	ID                 string             `json:"id" bson:"_id"`
	Status             ApplicationStatus  `json:"status" bson:"status"`
	RejectionMessage   *string            `json:"rejectionMessage,omitempty" bson:"rejection_message,omitempty"`
	PrimaryInformation PrimaryInformation `json:"primaryInformation" bson:"primary_information"`
	Address            Address            `json:"address" bson:"address"`
	FamilyMembers      []FamilyMember     `json:"familyMembers" bson:"family_members"`
	BasicInformation   BasicInformation   `json:"basicInformation" bson:"basic_information"`
	Verification       Verification       `json:"verification" bson:"verification"`
	StatusHistory      []StatusChange     `json:"statusHistory,omitempty" bson:"status_history,omitempty"`
	CreatedBy          string             `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

// PrimaryInformation holds the orphan's identity and family situation
type PrimaryInformation struct {
	FullName             string            `json:"fullName" bson:"full_name"`
	FathersName          string            `json:"fathersName" bson:"fathers_name"`
	MothersName          string            `json:"mothersName" bson:"mothers_name"`
	BCRegistration       string            `json:"bcRegistration" bson:"bc_registration"`
	DateOfBirth          *time.Time        `json:"dateOfBirth,omitempty" bson:"date_of_birth,omitempty"`
	Age                  *int              `json:"age,omitempty" bson:"age,omitempty"`
	Gender               Gender            `json:"gender" bson:"gender"`
	Religion             string            `json:"religion" bson:"religion"`
	Nationality          string            `json:"nationality" bson:"nationality"`
	FathersDateOfDeath   *time.Time        `json:"fathersDateOfDeath,omitempty" bson:"fathers_date_of_death,omitempty"`
	FathersCauseOfDeath  string            `json:"fathersCauseOfDeath" bson:"fathers_cause_of_death"`
	MothersOccupation    string            `json:"mothersOccupation" bson:"mothers_occupation"`
	MothersMaritalStatus MaritalStatus     `json:"mothersMaritalStatus" bson:"mothers_marital_status"`
	SchoolName           string            `json:"schoolName" bson:"school_name"`
	Grade                string            `json:"grade" bson:"grade"`
	NumOfSiblings        int               `json:"numOfSiblings" bson:"num_of_siblings"`
	HasCriticalIllness   *bool             `json:"hasCriticalIllness,omitempty" bson:"has_critical_illness,omitempty"`
	TypeOfIllness        string            `json:"typeOfIllness" bson:"type_of_illness"`
	PhysicalCondition    PhysicalCondition `json:"physicalCondition" bson:"physical_condition"`
}

// AddressDetail is a Bangladeshi postal address
type AddressDetail struct {
	Village    string `json:"village" bson:"village"`
	PostOffice string `json:"postOffice" bson:"post_office"`
	Upazila    string `json:"upazila" bson:"upazila"`
	District   string `json:"district" bson:"district"`
	Division   string `json:"division" bson:"division"`
}

// IsEmpty reports whether no address field is set
func (d AddressDetail) IsEmpty() bool {
	return d == AddressDetail{}
}

// Address holds the permanent and present addresses. While IsSameAsPermanent
// is set the present address is the permanent address.
type Address struct {
	Permanent         AddressDetail `json:"permanent" bson:"permanent"`
	Present           AddressDetail `json:"present" bson:"present"`
	IsSameAsPermanent bool          `json:"isSameAsPermanent" bson:"is_same_as_permanent"`
}

// EffectivePresent returns the present address, derived from the permanent
// address while IsSameAsPermanent is set.
func (a Address) EffectivePresent() AddressDetail {
	if a.IsSameAsPermanent {
		return a.Permanent
	}
	return a.Present
}

// Normalize rewrites the stored present address from its derived value.
func (a *Address) Normalize() {
	a.Present = a.EffectivePresent()
}

// FamilyMember describes one sibling of the orphan
type FamilyMember struct {
	Name          string        `json:"name" bson:"name"`
	Age           *int          `json:"age,omitempty" bson:"age,omitempty"`
	Occupation    string        `json:"occupation" bson:"occupation"`
	Gender        Gender        `json:"gender" bson:"gender"`
	MaritalStatus MaritalStatus `json:"maritalStatus" bson:"marital_status"`
	Grade         string        `json:"grade" bson:"grade"`
}

// BasicInformation holds residential facts and guardian contacts
type BasicInformation struct {
	ResidenceStatus  ResidenceStatus `json:"residenceStatus" bson:"residence_status"`
	HouseType        HouseType       `json:"houseType" bson:"house_type"`
	NumberOfRooms    *int            `json:"numberOfRooms,omitempty" bson:"number_of_rooms,omitempty"`
	Landed           string          `json:"landed" bson:"landed"`
	GuardianName     string          `json:"guardianName" bson:"guardian_name"`
	GuardianRelation string          `json:"guardianRelation" bson:"guardian_relation"`
	NID              string          `json:"nid" bson:"nid"`
	Cell1            string          `json:"cell1" bson:"cell1"`
	Cell2            string          `json:"cell2" bson:"cell2"`
}

// Verification references the staff members who handled the application
type Verification struct {
	AgentUserID         *string `json:"agentUserId,omitempty" bson:"agent_user_id,omitempty"`
	AuthenticatorUserID *string `json:"authenticatorUserId,omitempty" bson:"authenticator_user_id,omitempty"`
	InvestigatorUserID  *string `json:"investigatorUserId,omitempty" bson:"investigator_user_id,omitempty"`
	QcSwdUserID         *string `json:"qcSwdUserId,omitempty" bson:"qc_swd_user_id,omitempty"`
}

// StatusChange records one applied status transition
type StatusChange struct {
	From      ApplicationStatus `json:"from" bson:"from"`
	To        ApplicationStatus `json:"to" bson:"to"`
	ChangedBy string            `json:"changedBy,omitempty" bson:"changed_by,omitempty"`
	Message   string            `json:"message,omitempty" bson:"message,omitempty"`
	ChangedAt time.Time         `json:"changedAt" bson:"changed_at"`
}

// NewOrphanApplication returns an empty application in NEW status
func NewOrphanApplication() *OrphanApplication {
	return &OrphanApplication{
		Status:        StatusNew,
		FamilyMembers: []FamilyMember{},
	}
}

// StatusUpdateRequest is the staff decision payload
type StatusUpdateRequest struct {
	Status           ApplicationStatus `json:"status" binding:"required"`
	RejectionMessage string            `json:"rejectionMessage,omitempty"`
}

// ApplicationFilter narrows the application list
type ApplicationFilter struct {
	Status      []ApplicationStatus
	District    string
	Gender      Gender
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	CreatedBy   string
}

// PaginatedApplications is the list response for applications
type PaginatedApplications struct {
	Data       []OrphanApplication `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	TotalPages int                 `json:"total_pages"`
}
