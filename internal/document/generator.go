// Package document renders the printable bilingual replica of the paper
// orphan application form.
package document

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed templates/*.tmpl assets/logo.svg
var content embed.FS

var applicationTemplate = template.Must(template.ParseFS(content, "templates/application.html.tmpl"))

var logoDataURI = func() template.URL {
	raw, err := content.ReadFile("assets/logo.svg")
	if err != nil {
		panic(err)
	}
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(raw))
}()

// SignatureResolver finds the signature image URL of a user
type SignatureResolver interface {
	SignatureURL(ctx context.Context, userID string) (string, error)
}

// SignatureResolverFunc adapts a function to SignatureResolver
type SignatureResolverFunc func(ctx context.Context, userID string) (string, error)

// SignatureURL calls f(ctx, userID)
func (f SignatureResolverFunc) SignatureURL(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

const defaultLookupTimeout = 5 * time.Second

// Generator renders application documents
type Generator struct {
	resolver      SignatureResolver
	location      *time.Location
	lookupTimeout time.Duration
}

// Option configures a Generator
type Option func(*Generator)

// WithLocation sets the time zone used for dates
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.location = loc
		}
	}
}

// WithLookupTimeout bounds each signature lookup
func WithLookupTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.lookupTimeout = d
		}
	}
}

// NewGenerator creates a generator. A nil resolver renders no signatures.
func NewGenerator(resolver SignatureResolver, opts ...Option) *Generator {
	g := &Generator{
		resolver:      resolver,
		location:      BangladeshTime,
		lookupTimeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type field struct {
	Label string
	Value string
}

type addressRow struct {
	Label     string
	Permanent string
	Present   string
}

type familyRow struct {
	Serial        string
	Name          string
	Age           string
	Occupation    string
	Gender        string
	MaritalStatus string
	Grade         string
}

type signature struct {
	Label    string
	URL      template.URL
	HasImage bool
}

type view struct {
	Logo             template.URL
	ApplicationID    string
	Status           string
	CreatedDate      string
	Primary          []field
	Address          []addressRow
	SameAsPermanent  bool
	ShowFamily       bool
	Family           []familyRow
	Basic            []field
	Signatures       []signature
	RejectionMessage string
}

type signatureSlot struct {
	label  string
	userID *string
}

// Generate renders app as a self-contained HTML document. Missing values
// render blank and failed signature lookups render without an image; only
// a template execution failure is returned as an error.
func (g *Generator) Generate(ctx context.Context, app *models.OrphanApplication) (string, error) {
	start := time.Now()
	defer func() {
		observability.DocumentGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	if app == nil {
		app = models.NewOrphanApplication()
	}

	v := g.buildView(app)
	v.Signatures = g.resolveSignatures(ctx, app.Verification)

	var buf bytes.Buffer
	if err := applicationTemplate.ExecuteTemplate(&buf, "application.html.tmpl", v); err != nil {
		return "", fmt.Errorf("failed to render application document: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) buildView(app *models.OrphanApplication) view {
	p := app.PrimaryInformation
	b := app.BasicInformation
	permanent := app.Address.Permanent
	present := app.Address.EffectivePresent()

	v := view{
		Logo:            logoDataURI,
		ApplicationID:   app.ID,
		Status:          statusLabels[app.Status],
		SameAsPermanent: app.Address.IsSameAsPermanent,
		Primary: []field{
			{Label: "এতিমের নাম (Name of Orphan)", Value: p.FullName},
			{Label: "পিতার নাম (Father's Name)", Value: p.FathersName},
			{Label: "মাতার নাম (Mother's Name)", Value: p.MothersName},
			{Label: "জন্ম নিবন্ধন নং (Birth Registration No.)", Value: p.BCRegistration},
			{Label: "জন্ম তারিখ (Date of Birth)", Value: formatBengaliDate(p.DateOfBirth, g.location)},
			{Label: "বয়স (Age)", Value: formatBengaliIntPtr(p.Age)},
			{Label: "লিঙ্গ (Gender)", Value: genderLabels[p.Gender]},
			{Label: "ধর্ম (Religion)", Value: p.Religion},
			{Label: "জাতীয়তা (Nationality)", Value: p.Nationality},
			{Label: "পিতার মৃত্যুর তারিখ (Father's Date of Death)", Value: formatBengaliDate(p.FathersDateOfDeath, g.location)},
			{Label: "পিতার মৃত্যুর কারণ (Father's Cause of Death)", Value: p.FathersCauseOfDeath},
			{Label: "মাতার পেশা (Mother's Occupation)", Value: p.MothersOccupation},
			{Label: "মাতার বৈবাহিক অবস্থা (Mother's Marital Status)", Value: maritalStatusLabels[p.MothersMaritalStatus]},
			{Label: "স্কুলের নাম (School Name)", Value: p.SchoolName},
			{Label: "শ্রেণি (Class)", Value: p.Grade},
			{Label: "ভাই-বোনের সংখ্যা (Number of Siblings)", Value: formatBengaliInt(max(p.NumOfSiblings, 0))},
			{Label: "জটিল রোগ আছে কি? (Critical Illness)", Value: yesNo(p.HasCriticalIllness)},
			{Label: "রোগের ধরন (Type of Illness)", Value: p.TypeOfIllness},
			{Label: "শারীরিক অবস্থা (Physical Condition)", Value: physicalConditionLabels[p.PhysicalCondition]},
		},
		Address: []addressRow{
			{Label: "গ্রাম (Village)", Permanent: permanent.Village, Present: present.Village},
			{Label: "ডাকঘর (Post Office)", Permanent: permanent.PostOffice, Present: present.PostOffice},
			{Label: "উপজেলা/থানা (Upazila/Thana)", Permanent: permanent.Upazila, Present: present.Upazila},
			{Label: "জেলা (District)", Permanent: permanent.District, Present: present.District},
			{Label: "বিভাগ (Division)", Permanent: permanent.Division, Present: present.Division},
		},
		Basic: []field{
			{Label: "বসবাসের অবস্থা (Residence Status)", Value: residenceStatusLabels[b.ResidenceStatus]},
			{Label: "ঘরের ধরন (House Type)", Value: houseTypeLabels[b.HouseType]},
			{Label: "কক্ষের সংখ্যা (Number of Rooms)", Value: formatBengaliIntPtr(b.NumberOfRooms)},
			{Label: "জমির পরিমাণ (Land)", Value: b.Landed},
			{Label: "অভিভাবকের নাম (Guardian's Name)", Value: b.GuardianName},
			{Label: "অভিভাবকের সাথে সম্পর্ক (Relation with Guardian)", Value: b.GuardianRelation},
			{Label: "জাতীয় পরিচয়পত্র নং (NID)", Value: b.NID},
			{Label: "মোবাইল ১ (Cell 1)", Value: b.Cell1},
			{Label: "মোবাইল ২ (Cell 2)", Value: b.Cell2},
		},
	}

	if !app.CreatedAt.IsZero() {
		created := app.CreatedAt
		v.CreatedDate = formatBengaliDate(&created, g.location)
	}

	if app.Status == models.StatusRejected && app.RejectionMessage != nil {
		v.RejectionMessage = *app.RejectionMessage
	}

	if p.NumOfSiblings > 0 {
		v.ShowFamily = true
		v.Family = make([]familyRow, min(p.NumOfSiblings, models.MaxNumOfSiblings))
		for i := range v.Family {
			row := familyRow{Serial: formatBengaliInt(i + 1)}
			if i < len(app.FamilyMembers) {
				m := app.FamilyMembers[i]
				row.Name = m.Name
				row.Age = formatBengaliIntPtr(m.Age)
				row.Occupation = m.Occupation
				row.Gender = genderLabels[m.Gender]
				row.MaritalStatus = maritalStatusLabels[m.MaritalStatus]
				row.Grade = m.Grade
			}
			v.Family[i] = row
		}
	}

	return v
}

func (g *Generator) resolveSignatures(ctx context.Context, ver models.Verification) []signature {
	slots := []signatureSlot{
		{label: "এজেন্ট (Agent)", userID: ver.AgentUserID},
		{label: "যাচাইকারী (Authenticator)", userID: ver.AuthenticatorUserID},
		{label: "তদন্তকারী (Investigator)", userID: ver.InvestigatorUserID},
		{label: "কিউসি/এসডব্লিউডি (QC/SWD)", userID: ver.QcSwdUserID},
	}

	signatures := make([]signature, len(slots))
	var eg errgroup.Group

	for i, slot := range slots {
		signatures[i].Label = slot.label
		if g.resolver == nil || slot.userID == nil || strings.TrimSpace(*slot.userID) == "" {
			continue
		}

		eg.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(ctx, g.lookupTimeout)
			defer cancel()

			raw, err := g.resolver.SignatureURL(lookupCtx, *slot.userID)
			if err != nil {
				observability.SignatureLookups.WithLabelValues("error").Inc()
				logging.Logger.Debug("signature lookup failed",
					zap.String("user_id", *slot.userID),
					zap.Error(err))
				return nil
			}

			safe, ok := safeImageURL(raw)
			if !ok {
				observability.SignatureLookups.WithLabelValues("missing").Inc()
				return nil
			}

			observability.SignatureLookups.WithLabelValues("found").Inc()
			signatures[i].URL = safe
			signatures[i].HasImage = true
			return nil
		})
	}

	_ = eg.Wait()
	return signatures
}

// safeImageURL accepts http(s), blob and base64 image data URLs
func safeImageURL(raw string) (template.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "data:image/") {
		return template.URL(raw), true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "http", "https", "blob":
		return template.URL(raw), true
	default:
		return "", false
	}
}
