package generation

import (
	"fmt"
	"time"

	"policygen/pkg/wizard"
)

// RequestAnswers is the answers object sent to the generator: the Answer
// Model without its documents, plus the injected date and resolved kinds.
type RequestAnswers struct {
	ProjectName     string   `json:"projectName"`
	BrandName       string   `json:"brandName,omitempty"`
	LegalName       string   `json:"legalName,omitempty"`
	ContactEmail    string   `json:"contactEmail,omitempty"`
	ProjectURLs     []string `json:"projectUrls"`
	ResponsibleName string   `json:"responsibleName,omitempty"`
	DPOContact      string   `json:"dpoContact,omitempty"`
	BusinessModel   string   `json:"businessModel,omitempty"`
	Monetization    string   `json:"monetization,omitempty"`
	License         string   `json:"license,omitempty"`

	DocumentTypes []wizard.DocumentKind `json:"documentType"`

	CollectsPersonal  bool   `json:"collectsPersonal"`
	CollectsSensitive bool   `json:"collectsSensitive"`
	Purpose           string `json:"purpose,omitempty"`
	TransferCountries string `json:"transferCountries,omitempty"`

	Jurisdiction       wizard.Jurisdiction `json:"jurisdiction"`
	Language           wizard.Language     `json:"language"`
	IncludeAsIs        bool                `json:"includeAsIs"`
	IncludeIP          bool                `json:"includeIP"`
	IncludeLiability   bool                `json:"includeLiability"`
	IncludeLastUpdated bool                `json:"includeLastUpdated"`
	RequireConsent     bool                `json:"requireConsent"`

	UsesCookies bool `json:"usesCookies"`
	// Set only when UsesCookies is true.
	CookieCategories           *wizard.CookieCategories `json:"cookieCategories,omitempty"`
	CookieTools                []string                 `json:"cookieTools,omitempty"`
	AnalyticsTools             []string                 `json:"analyticsTools,omitempty"`
	AdTracking                 *bool                    `json:"adTracking,omitempty"`
	SharesDataWithThirdParties *bool                    `json:"sharesDataWithThirdParties,omitempty"`
	ThirdPartyList             []string                 `json:"thirdPartyList,omitempty"`
	CookieBannerStyle          string                   `json:"cookieBannerStyle,omitempty"`
	RetentionPolicy            string                   `json:"retentionPolicy,omitempty"`
	CustomCookieNotes          string                   `json:"customCookieNotes,omitempty"`

	CurrentDate   string                `json:"currentDate"`
	DocumentKinds []wizard.DocumentKind `json:"documentKinds"`
}

// Request is the payload of the generation endpoint.
type Request struct {
	Answers RequestAnswers `json:"answers"`
}

// Empty reports whether no canonical kind was requested.
func (r *Request) Empty() bool {
	return len(r.Answers.DocumentKinds) == 0
}

// Builder turns answers into a Request.
type Builder struct {
	now func() time.Time
}

func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// ResolveKinds translates a selection (kinds or UI labels) to canonical
// kinds in canonical order. Reserved kinds and unknown labels are dropped.
func ResolveKinds(selection []wizard.DocumentKind) []wizard.DocumentKind {
	picked := make(map[wizard.DocumentKind]bool, len(selection))
	for _, s := range selection {
		if k, ok := wizard.ParseDocumentKind(string(s)); ok {
			picked[k] = true
		}
	}
	out := make([]wizard.DocumentKind, 0, len(wizard.CanonicalKinds))
	for _, k := range wizard.CanonicalKinds {
		if picked[k] {
			out = append(out, k)
		}
	}
	return out
}

// Build serializes answers for the generator, restricted to selection.
func (b *Builder) Build(a wizard.Answers, selection []wizard.DocumentKind) *Request {
	jurisdiction := a.Jurisdiction
	if !jurisdiction.Valid() {
		jurisdiction = wizard.JurisdictionBR
	}
	language := a.Language
	if !language.Valid() {
		language = wizard.LanguagePtBR
	}

	ra := RequestAnswers{
		ProjectName:     a.ProjectName,
		BrandName:       a.BrandName,
		LegalName:       a.LegalName,
		ContactEmail:    a.ContactEmail,
		ProjectURLs:     wizard.NormalizeList(a.ProjectURLs),
		ResponsibleName: a.ResponsibleName,
		DPOContact:      a.DPOContact,
		BusinessModel:   a.BusinessModel,
		Monetization:    a.Monetization,
		License:         a.License,

		DocumentTypes: append([]wizard.DocumentKind{}, a.DocumentTypes...),

		CollectsPersonal:  a.CollectsPersonal,
		CollectsSensitive: a.CollectsSensitive,
		Purpose:           a.Purpose,
		TransferCountries: a.TransferCountries,

		Jurisdiction:       jurisdiction,
		Language:           language,
		IncludeAsIs:        a.IncludeAsIs,
		IncludeIP:          a.IncludeIP,
		IncludeLiability:   a.IncludeLiability,
		IncludeLastUpdated: a.IncludeLastUpdated,
		RequireConsent:     a.RequireConsent,

		UsesCookies: a.UsesCookies,

		CurrentDate:   FormatDate(b.now(), language),
		DocumentKinds: ResolveKinds(selection),
	}

	if a.UsesCookies {
		categories := a.CookieCategories
		adTracking := a.AdTracking
		shares := a.SharesDataWithThirdParties
		ra.CookieCategories = &categories
		ra.CookieTools = wizard.NormalizeList(a.CookieTools)
		ra.AnalyticsTools = wizard.NormalizeList(a.AnalyticsTools)
		ra.AdTracking = &adTracking
		ra.SharesDataWithThirdParties = &shares
		if shares {
			ra.ThirdPartyList = wizard.NormalizeList(a.ThirdPartyList)
		}
		ra.CookieBannerStyle = a.CookieBannerStyle
		ra.RetentionPolicy = a.RetentionPolicy
		ra.CustomCookieNotes = a.CustomCookieNotes
	}

	return &Request{Answers: ra}
}

var monthNames = map[wizard.Language][12]string{
	wizard.LanguageEn: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	wizard.LanguagePt: {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	wizard.LanguageEs: {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	wizard.LanguageFr: {"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
}

// FormatDate renders t as a long date in the document language, e.g.
// "5 January 2026" or "5 de janeiro de 2026".
func FormatDate(t time.Time, lang wizard.Language) string {
	switch lang {
	case wizard.LanguageEn:
		return fmt.Sprintf("%d %s %d", t.Day(), monthNames[lang][t.Month()-1], t.Year())
	case wizard.LanguageFr:
		return fmt.Sprintf("%d %s %d", t.Day(), monthNames[lang][t.Month()-1], t.Year())
	case wizard.LanguageEs:
		return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[lang][t.Month()-1], t.Year())
	default:
		return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[wizard.LanguagePt][t.Month()-1], t.Year())
	}
}
