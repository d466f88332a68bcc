package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

// ExportField is one exportable column, addressed by its path in the JSON
// form of an application
type ExportField struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// ExportFieldGroup groups exportable fields by form section
type ExportFieldGroup struct {
	Category string        `json:"category"`
	Fields   []ExportField `json:"fields"`
}

var exportCatalog = []ExportFieldGroup{
	{Category: "Application", Fields: []ExportField{
		{"id", "Application ID"},
		{"status", "Status"},
		{"rejectionMessage", "Rejection Message"},
		{"createdBy", "Created By"},
		{"createdAt", "Created At"},
		{"updatedAt", "Updated At"},
	}},
	{Category: "Primary Information", Fields: []ExportField{
		{"primaryInformation.fullName", "Full Name"},
		{"primaryInformation.fathersName", "Father's Name"},
		{"primaryInformation.mothersName", "Mother's Name"},
		{"primaryInformation.bcRegistration", "Birth Registration"},
		{"primaryInformation.dateOfBirth", "Date of Birth"},
		{"primaryInformation.age", "Age"},
		{"primaryInformation.gender", "Gender"},
		{"primaryInformation.religion", "Religion"},
		{"primaryInformation.nationality", "Nationality"},
		{"primaryInformation.fathersDateOfDeath", "Father's Date of Death"},
		{"primaryInformation.fathersCauseOfDeath", "Father's Cause of Death"},
		{"primaryInformation.mothersOccupation", "Mother's Occupation"},
		{"primaryInformation.mothersMaritalStatus", "Mother's Marital Status"},
		{"primaryInformation.schoolName", "School"},
		{"primaryInformation.grade", "Grade"},
		{"primaryInformation.numOfSiblings", "Number of Siblings"},
		{"primaryInformation.hasCriticalIllness", "Critical Illness"},
		{"primaryInformation.typeOfIllness", "Type of Illness"},
		{"primaryInformation.physicalCondition", "Physical Condition"},
	}},
	{Category: "Address", Fields: []ExportField{
		{"address.permanent.village", "Permanent Village"},
		{"address.permanent.postOffice", "Permanent Post Office"},
		{"address.permanent.upazila", "Permanent Upazila"},
		{"address.permanent.district", "Permanent District"},
		{"address.permanent.division", "Permanent Division"},
		{"address.present.village", "Present Village"},
		{"address.present.postOffice", "Present Post Office"},
		{"address.present.upazila", "Present Upazila"},
		{"address.present.district", "Present District"},
		{"address.present.division", "Present Division"},
		{"address.isSameAsPermanent", "Present Same as Permanent"},
	}},
	{Category: "Family Members", Fields: []ExportField{
		{"familyMembers.#.name", "Sibling Names"},
		{"familyMembers.#.age", "Sibling Ages"},
		{"familyMembers.#.gender", "Sibling Genders"},
		{"familyMembers.#.occupation", "Sibling Occupations"},
		{"familyMembers.#.maritalStatus", "Sibling Marital Statuses"},
		{"familyMembers.#.grade", "Sibling Grades"},
	}},
	{Category: "Basic Information", Fields: []ExportField{
		{"basicInformation.residenceStatus", "Residence Status"},
		{"basicInformation.houseType", "House Type"},
		{"basicInformation.numberOfRooms", "Number of Rooms"},
		{"basicInformation.landed", "Land"},
		{"basicInformation.guardianName", "Guardian Name"},
		{"basicInformation.guardianRelation", "Guardian Relation"},
		{"basicInformation.nid", "Guardian NID"},
		{"basicInformation.cell1", "Cell 1"},
		{"basicInformation.cell2", "Cell 2"},
	}},
	{Category: "Verification", Fields: []ExportField{
		{"verification.agentUserId", "Agent"},
		{"verification.authenticatorUserId", "Authenticator"},
		{"verification.investigatorUserId", "Investigator"},
		{"verification.qcSwdUserId", "QC SWD"},
	}},
}

// ExportService writes applications as CSV
type ExportService struct {
	apps   store.ApplicationStore
	logger *logging.SafeLogger
}

// NewExportService creates a new ExportService instance
func NewExportService(apps store.ApplicationStore, logger *logging.SafeLogger) *ExportService {
	return &ExportService{apps: apps, logger: logger}
}

// Fields returns the catalog of exportable fields
func (s *ExportService) Fields() []ExportFieldGroup {
	return exportCatalog
}

// resolveFields checks paths against the catalog. No paths selects every field.
func resolveFields(paths []string) ([]string, error) {
	known := make(map[string]bool)
	var all []string
	for _, group := range exportCatalog {
		for _, f := range group.Fields {
			known[f.Path] = true
			all = append(all, f.Path)
		}
	}

	var selected []string
	seen := make(map[string]bool)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		if !known[p] {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidExportField, p)
		}
		seen[p] = true
		selected = append(selected, p)
	}
	if len(selected) == 0 {
		return all, nil
	}
	return selected, nil
}

func exportValue(doc []byte, path string) string {
	result := gjson.GetBytes(doc, path)
	if !result.IsArray() {
		return result.String()
	}
	items := result.Array()
	values := make([]string, len(items))
	for i, item := range items {
		values[i] = item.String()
	}
	return strings.Join(values, "; ")
}

// Export writes one CSV row per application matching filter, with a header
// row of field paths. It returns the number of exported applications.
func (s *ExportService) Export(ctx context.Context, w io.Writer, paths []string, filter models.ApplicationFilter) (int, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "export_applications")
	defer span.End()

	fields, err := resolveFields(paths)
	if err != nil {
		return 0, err
	}

	out := csv.NewWriter(w)
	if err := out.Write(fields); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	row := make([]string, len(fields))
	err = s.apps.ForEach(ctx, filter, func(app *models.OrphanApplication) error {
		app.Address.Normalize()
		doc, err := json.Marshal(app)
		if err != nil {
			return fmt.Errorf("failed to encode application %s: %w", app.ID, err)
		}
		for i, path := range fields {
			row[i] = exportValue(doc, path)
		}
		if err := out.Write(row); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return count, fmt.Errorf("failed to export applications: %w", err)
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return count, fmt.Errorf("failed to flush export: %w", err)
	}

	_ = utils.LogAuditEvent(ctx, utils.AuditContextFrom(ctx), utils.AuditActionExport, utils.AuditResourceApplication, "",
		nil, nil, map[string]string{"rows": fmt.Sprint(count), "fields": strings.Join(fields, ",")})
	s.logger.Info("applications exported", zap.Int("rows", count), zap.Int("fields", len(fields)))
	return count, nil
}
