package wizard

// Patch is a partial Answers. Nil fields are left untouched by Merge.
type Patch struct {
	ProjectName     *string  `json:"projectName,omitempty"`
	BrandName       *string  `json:"brandName,omitempty"`
	LegalName       *string  `json:"legalName,omitempty"`
	ContactEmail    *string  `json:"contactEmail,omitempty"`
	ProjectURLs     *URLList `json:"projectUrls,omitempty"`
	ResponsibleName *string  `json:"responsibleName,omitempty"`
	DPOContact      *string  `json:"dpoContact,omitempty"`
	BusinessModel   *string  `json:"businessModel,omitempty"`
	Monetization    *string  `json:"monetization,omitempty"`
	License         *string  `json:"license,omitempty"`

	// Raw selections: canonical keys or UI labels.
	DocumentTypes *[]string `json:"documentType,omitempty"`

	CollectsPersonal  *bool   `json:"collectsPersonal,omitempty"`
	CollectsSensitive *bool   `json:"collectsSensitive,omitempty"`
	Purpose           *string `json:"purpose,omitempty"`
	TransferCountries *string `json:"transferCountries,omitempty"`

	Jurisdiction       *Jurisdiction `json:"jurisdiction,omitempty"`
	Language           *Language     `json:"language,omitempty"`
	IncludeAsIs        *bool         `json:"includeAsIs,omitempty"`
	IncludeIP          *bool         `json:"includeIP,omitempty"`
	IncludeLiability   *bool         `json:"includeLiability,omitempty"`
	IncludeLastUpdated *bool         `json:"includeLastUpdated,omitempty"`
	RequireConsent     *bool         `json:"requireConsent,omitempty"`

	UsesCookies                *bool             `json:"usesCookies,omitempty"`
	CookieCategories           *CookieCategories `json:"cookieCategories,omitempty"`
	CookieTools                *URLList          `json:"cookieTools,omitempty"`
	AnalyticsTools             *URLList          `json:"analyticsTools,omitempty"`
	AdTracking                 *bool             `json:"adTracking,omitempty"`
	SharesDataWithThirdParties *bool             `json:"sharesDataWithThirdParties,omitempty"`
	ThirdPartyList             *URLList          `json:"thirdPartyList,omitempty"`
	CookieBannerStyle          *string           `json:"cookieBannerStyle,omitempty"`
	RetentionPolicy            *string           `json:"retentionPolicy,omitempty"`
	CustomCookieNotes          *string           `json:"customCookieNotes,omitempty"`
}

// ResolveKinds maps raw selections to kinds. Unknown entries are returned
// separately; duplicates are collapsed.
func ResolveKinds(raw []string) (kinds []DocumentKind, unknown []string) {
	kinds = make([]DocumentKind, 0, len(raw))
	seen := make(map[DocumentKind]struct{}, len(raw))
	for _, r := range raw {
		k, ok := ParseDocumentKind(r)
		if !ok {
			unknown = append(unknown, r)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kinds = append(kinds, k)
	}
	return kinds, unknown
}

// apply writes every non-nil field of p onto a. Lists are normalized.
func (p Patch) apply(a *Answers) {
	setString(&a.ProjectName, p.ProjectName)
	setString(&a.BrandName, p.BrandName)
	setString(&a.LegalName, p.LegalName)
	setString(&a.ContactEmail, p.ContactEmail)
	if p.ProjectURLs != nil {
		a.ProjectURLs = NormalizeList(*p.ProjectURLs)
	}
	setString(&a.ResponsibleName, p.ResponsibleName)
	setString(&a.DPOContact, p.DPOContact)
	setString(&a.BusinessModel, p.BusinessModel)
	setString(&a.Monetization, p.Monetization)
	setString(&a.License, p.License)

	if p.DocumentTypes != nil {
		a.DocumentTypes, _ = ResolveKinds(*p.DocumentTypes)
	}

	setBool(&a.CollectsPersonal, p.CollectsPersonal)
	setBool(&a.CollectsSensitive, p.CollectsSensitive)
	setString(&a.Purpose, p.Purpose)
	setString(&a.TransferCountries, p.TransferCountries)

	// Invalid enum values are dropped so the model never holds one.
	if p.Jurisdiction != nil && p.Jurisdiction.Valid() {
		a.Jurisdiction = *p.Jurisdiction
	}
	if p.Language != nil && p.Language.Valid() {
		a.Language = *p.Language
	}
	setBool(&a.IncludeAsIs, p.IncludeAsIs)
	setBool(&a.IncludeIP, p.IncludeIP)
	setBool(&a.IncludeLiability, p.IncludeLiability)
	setBool(&a.IncludeLastUpdated, p.IncludeLastUpdated)
	setBool(&a.RequireConsent, p.RequireConsent)

	setBool(&a.UsesCookies, p.UsesCookies)
	if p.CookieCategories != nil {
		a.CookieCategories = *p.CookieCategories
	}
	if p.CookieTools != nil {
		a.CookieTools = NormalizeList(*p.CookieTools)
	}
	if p.AnalyticsTools != nil {
		a.AnalyticsTools = NormalizeList(*p.AnalyticsTools)
	}
	setBool(&a.AdTracking, p.AdTracking)
	setBool(&a.SharesDataWithThirdParties, p.SharesDataWithThirdParties)
	if p.ThirdPartyList != nil {
		a.ThirdPartyList = NormalizeList(*p.ThirdPartyList)
	}
	setString(&a.CookieBannerStyle, p.CookieBannerStyle)
	setString(&a.RetentionPolicy, p.RetentionPolicy)
	setString(&a.CustomCookieNotes, p.CustomCookieNotes)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
