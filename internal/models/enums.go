package models

// ApplicationStatus is the lifecycle state of an orphan application
type ApplicationStatus string

const (
	StatusNew        ApplicationStatus = "NEW"
	StatusIncomplete ApplicationStatus = "INCOMPLETE"
	StatusComplete   ApplicationStatus = "COMPLETE"
	StatusPending    ApplicationStatus = "PENDING"
	StatusAccepted   ApplicationStatus = "ACCEPTED"
	StatusRejected   ApplicationStatus = "REJECTED"
	StatusGranted    ApplicationStatus = "GRANTED"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []ApplicationStatus{
	StatusNew,
	StatusIncomplete,
	StatusComplete,
	StatusPending,
	StatusAccepted,
	StatusRejected,
	StatusGranted,
}

// IsValid reports whether s is a known status
func (s ApplicationStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type PhysicalCondition string

const (
	PhysicalConditionHealthy  PhysicalCondition = "HEALTHY"
	PhysicalConditionSick     PhysicalCondition = "SICK"
	PhysicalConditionDisabled PhysicalCondition = "DISABLED"
)

type ResidenceStatus string

const (
	ResidenceOwn       ResidenceStatus = "OWN"
	ResidenceRented    ResidenceStatus = "RENTED"
	ResidenceSheltered ResidenceStatus = "SHELTERED"
	ResidenceHomeless  ResidenceStatus = "HOMELESS"
)

type HouseType string

const (
	HousePaka     HouseType = "PAKA"
	HouseSemiPaka HouseType = "SEMI_PAKA"
	HouseKacha    HouseType = "KACHA"
	HouseThatched HouseType = "THATCHED"
)

type MaritalStatus string

const (
	MaritalMarried   MaritalStatus = "MARRIED"
	MaritalUnmarried MaritalStatus = "UNMARRIED"
	MaritalWidowed   MaritalStatus = "WIDOWED"
	MaritalDivorced  MaritalStatus = "DIVORCED"
)

// DocumentType identifies an uploaded supporting document
type DocumentType string

const (
	DocBirthCertificate    DocumentType = "BIRTH_CERTIFICATE"
	DocDeathCertificate    DocumentType = "DEATH_CERTIFICATE"
	DocFullSizeImage       DocumentType = "FULL_SIZE_IMAGE"
	DocPassportSizeImage   DocumentType = "PASSPORT_SIZE_IMAGE"
	DocGuardianNID         DocumentType = "GUARDIAN_NID"
	DocAcademicCertificate DocumentType = "ACADEMIC_CERTIFICATE"
	DocOther               DocumentType = "OTHER"
)

// AllDocumentTypes lists every accepted document type
var AllDocumentTypes = []DocumentType{
	DocBirthCertificate,
	DocDeathCertificate,
	DocFullSizeImage,
	DocPassportSizeImage,
	DocGuardianNID,
	DocAcademicCertificate,
	DocOther,
}

// RequiredDocuments must all be present before an application moves to PENDING
var RequiredDocuments = []DocumentType{
	DocBirthCertificate,
	DocDeathCertificate,
	DocFullSizeImage,
}

// ParseDocumentType returns the document type for a path parameter
func ParseDocumentType(value string) (DocumentType, bool) {
	for _, t := range AllDocumentTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

// MediaType identifies a per-user media file
type MediaType string

const (
	MediaAvatar    MediaType = "AVATAR"
	MediaSignature MediaType = "SIGNATURE"
)

// ParseMediaType returns the media type for a path parameter
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(value) {
	case MediaAvatar, MediaSignature:
		return MediaType(value), true
	}
	return "", false
}

// Role is an application role carried in the identity provider token
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleAgent         Role = "AGENT"
	RoleAuthenticator Role = "AUTHENTICATOR"
	RoleInvestigator  Role = "INVESTIGATOR"
	RoleQcSwd         Role = "QC_SWD"
	RoleBeneficiary   Role = "BENEFICIARY"
)

// StaffRoles may create and edit applications
var StaffRoles = []Role{RoleAdmin, RoleAgent, RoleAuthenticator, RoleInvestigator, RoleQcSwd}

// DecisionRoles may accept, reject or grant an application
var DecisionRoles = []Role{RoleAgent, RoleAuthenticator, RoleAdmin}

// AllRoles lists every known role
var AllRoles = []Role{RoleAdmin, RoleAgent, RoleAuthenticator, RoleInvestigator, RoleQcSwd, RoleBeneficiary}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}
