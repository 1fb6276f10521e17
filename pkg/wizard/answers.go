package wizard

import (
	"encoding/json"
	"strings"
)

// DocumentKind identifies one legal document the generator can produce.
type DocumentKind string

const (
	PrivacyPolicy DocumentKind = "privacy_policy"
	TermsOfUse    DocumentKind = "terms_of_use"
	CookiePolicy  DocumentKind = "cookie_policy"
	SaaSContract  DocumentKind = "saas_contract" // reserved, not generated yet
)

// CanonicalKinds is the fixed generation order. It is also the tab order.
var CanonicalKinds = []DocumentKind{PrivacyPolicy, TermsOfUse, CookiePolicy}

type documentOption struct {
	Kind       DocumentKind
	Labels     []string
	ComingSoon bool
}

// documentCatalog lists every selectable kind with the labels the front end
// has used for it over time.
var documentCatalog = []documentOption{
	{Kind: PrivacyPolicy, Labels: []string{"Política de Privacidade", "Privacy Policy", "Privacidade"}},
	{Kind: TermsOfUse, Labels: []string{"Termos de Uso", "Terms of Use", "Terms of Service"}},
	{Kind: CookiePolicy, Labels: []string{"Política de Cookies", "Cookie Policy", "Cookies"}},
	{Kind: SaaSContract, Labels: []string{"Contrato de SaaS", "SaaS Contract"}, ComingSoon: true},
}

// ParseDocumentKind resolves a canonical key or any known UI label.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", false
	}
	for _, opt := range documentCatalog {
		if strings.EqualFold(v, string(opt.Kind)) {
			return opt.Kind, true
		}
		for _, label := range opt.Labels {
			if strings.EqualFold(v, label) {
				return opt.Kind, true
			}
		}
	}
	return "", false
}

// Generatable reports whether the kind is one of the canonical kinds.
func (k DocumentKind) Generatable() bool {
	for _, c := range CanonicalKinds {
		if k == c {
			return true
		}
	}
	return false
}

// Label returns the display name used for tabs and downloads.
func (k DocumentKind) Label() string {
	switch k {
	case PrivacyPolicy:
		return "Privacy Policy"
	case TermsOfUse:
		return "Terms of Use"
	case CookiePolicy:
		return "Cookie Policy"
	case SaaSContract:
		return "SaaS Contract"
	}
	return string(k)
}

type Jurisdiction string

const (
	JurisdictionBR Jurisdiction = "br"
	JurisdictionUS Jurisdiction = "us"
	JurisdictionEU Jurisdiction = "eu"
)

func (j Jurisdiction) Valid() bool {
	switch j {
	case JurisdictionBR, JurisdictionUS, JurisdictionEU:
		return true
	}
	return false
}

type Language string

const (
	LanguagePtBR Language = "pt-br"
	LanguagePt   Language = "pt"
	LanguageEn   Language = "en"
	LanguageEs   Language = "es"
	LanguageFr   Language = "fr"
)

func (l Language) Valid() bool {
	switch l {
	case LanguagePtBR, LanguagePt, LanguageEn, LanguageEs, LanguageFr:
		return true
	}
	return false
}

type CookieCategories struct {
	Essential   bool `json:"essential"`
	Functional  bool `json:"functional"`
	Analytics   bool `json:"analytics"`
	Marketing   bool `json:"marketing"`
	Performance bool `json:"performance"`
	Security    bool `json:"security"`
	Ads         bool `json:"ads"`
}

// DocumentSet maps a kind to its generated text. Empty text means "not generated".
type DocumentSet map[DocumentKind]string

// Has reports whether the kind carries non-blank content.
func (d DocumentSet) Has(kind DocumentKind) bool {
	return strings.TrimSpace(d[kind]) != ""
}

// Tab is one generated document in display order.
type Tab struct {
	Kind    DocumentKind `json:"kind"`
	Label   string       `json:"label"`
	Content string       `json:"content"`
}

// Tabs returns the non-empty documents in canonical order.
func (d DocumentSet) Tabs() []Tab {
	tabs := make([]Tab, 0, len(CanonicalKinds))
	for _, kind := range CanonicalKinds {
		if d.Has(kind) {
			tabs = append(tabs, Tab{Kind: kind, Label: kind.Label(), Content: d[kind]})
		}
	}
	return tabs
}

func (d DocumentSet) clone() DocumentSet {
	if d == nil {
		return nil
	}
	out := make(DocumentSet, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// URLList is a normalized list of strings. It decodes from either a JSON
// array or a comma separated string.
type URLList []string

func (u *URLList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*u = ParseURLList(raw)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*u = NormalizeList(items)
	return nil
}

// ParseURLList splits comma separated input into a normalized list.
func ParseURLList(raw string) URLList {
	return NormalizeList(strings.Split(raw, ","))
}

// NormalizeList trims entries, drops blanks and removes duplicates keeping
// first occurrence order.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := strings.TrimSpace(item)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Answers is everything the user has specified across the wizard steps.
type Answers struct {
	// Identity
	ProjectName     string  `json:"projectName"`
	BrandName       string  `json:"brandName"`
	LegalName       string  `json:"legalName"`
	ContactEmail    string  `json:"contactEmail"`
	ProjectURLs     URLList `json:"projectUrls"`
	ResponsibleName string  `json:"responsibleName"`
	DPOContact      string  `json:"dpoContact"`
	BusinessModel   string  `json:"businessModel"`
	Monetization    string  `json:"monetization"`
	License         string  `json:"license"`

	DocumentTypes []DocumentKind `json:"documentType"`

	// Data practices
	CollectsPersonal  bool   `json:"collectsPersonal"`
	CollectsSensitive bool   `json:"collectsSensitive"`
	Purpose           string `json:"purpose"`
	TransferCountries string `json:"transferCountries"`

	// Scope
	Jurisdiction       Jurisdiction `json:"jurisdiction"`
	Language           Language     `json:"language"`
	IncludeAsIs        bool         `json:"includeAsIs"`
	IncludeIP          bool         `json:"includeIP"`
	IncludeLiability   bool         `json:"includeLiability"`
	IncludeLastUpdated bool         `json:"includeLastUpdated"`
	RequireConsent     bool         `json:"requireConsent"`

	// Cookies, only meaningful when UsesCookies is set
	UsesCookies                bool             `json:"usesCookies"`
	CookieCategories           CookieCategories `json:"cookieCategories"`
	CookieTools                URLList          `json:"cookieTools"`
	AnalyticsTools             URLList          `json:"analyticsTools"`
	AdTracking                 bool             `json:"adTracking"`
	SharesDataWithThirdParties bool             `json:"sharesDataWithThirdParties"`
	ThirdPartyList             URLList          `json:"thirdPartyList"`
	CookieBannerStyle          string           `json:"cookieBannerStyle"`
	RetentionPolicy            string           `json:"retentionPolicy"`
	CustomCookieNotes          string           `json:"customCookieNotes"`

	Documents DocumentSet `json:"documents,omitempty"`
}

// DefaultAnswers returns the model every new flow starts from.
func DefaultAnswers() Answers {
	return Answers{
		ProjectURLs:      URLList{},
		DocumentTypes:    []DocumentKind{},
		Jurisdiction:     JurisdictionBR,
		Language:         LanguagePtBR,
		CookieCategories: CookieCategories{Essential: true},
		CookieTools:      []string{},
		AnalyticsTools:   []string{},
		ThirdPartyList:   []string{},
	}
}

// Clone returns a deep copy.
func (a Answers) Clone() Answers {
	out := a
	out.ProjectURLs = append(URLList{}, a.ProjectURLs...)
	out.DocumentTypes = append([]DocumentKind{}, a.DocumentTypes...)
	out.CookieTools = append([]string{}, a.CookieTools...)
	out.AnalyticsTools = append([]string{}, a.AnalyticsTools...)
	out.ThirdPartyList = append([]string{}, a.ThirdPartyList...)
	out.Documents = a.Documents.clone()
	return out
}

// Requested reports whether kind is part of the document selection.
func (a Answers) Requested(kind DocumentKind) bool {
	for _, k := range a.DocumentTypes {
		if k == kind {
			return true
		}
	}
	return false
}
