package generation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/pkg/wizard"
)

var fixedNow = func() time.Time {
	return time.Date(2025, time.December, 12, 10, 0, 0, 0, time.UTC)
}

func TestResolveKindsCanonicalOrder(t *testing.T) {
	got := ResolveKinds([]wizard.DocumentKind{
		"Cookie Policy",
		wizard.SaaSContract,
		"Política de Privacidade",
		"nonsense",
		wizard.CookiePolicy,
	})
	want := []wizard.DocumentKind{wizard.PrivacyPolicy, wizard.CookiePolicy}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveKinds mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmptySelection(t *testing.T) {
	b := NewBuilder(fixedNow)
	req := b.Build(wizard.DefaultAnswers(), nil)
	assert.True(t, req.Empty())

	req = b.Build(wizard.DefaultAnswers(), []wizard.DocumentKind{wizard.SaaSContract})
	assert.True(t, req.Empty())
}

func TestBuildOmitsCookieFieldsWhenCookiesUnused(t *testing.T) {
	a := wizard.DefaultAnswers()
	a.ProjectName = "Acme"
	a.UsesCookies = false
	a.CookieTools = wizard.URLList{"Hotjar"}
	a.AdTracking = true

	req := NewBuilder(fixedNow).Build(a, []wizard.DocumentKind{wizard.PrivacyPolicy})

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	answers := decoded["answers"]
	for _, key := range []string{"cookieCategories", "cookieTools", "analyticsTools", "adTracking", "sharesDataWithThirdParties", "thirdPartyList"} {
		_, present := answers[key]
		assert.False(t, present, "key %s should be omitted", key)
	}
	assert.Equal(t, false, answers["usesCookies"])
	assert.NotContains(t, answers, "documents")
}

func TestBuildIncludesCookieFields(t *testing.T) {
	a := wizard.DefaultAnswers()
	a.UsesCookies = true
	a.CookieTools = wizard.URLList{" Hotjar ", "", "Hotjar"}
	a.SharesDataWithThirdParties = false
	a.ThirdPartyList = wizard.URLList{"Stripe"}

	req := NewBuilder(fixedNow).Build(a, []wizard.DocumentKind{wizard.CookiePolicy})

	require.NotNil(t, req.Answers.CookieCategories)
	assert.True(t, req.Answers.CookieCategories.Essential)
	assert.Equal(t, []string{"Hotjar"}, req.Answers.CookieTools)
	require.NotNil(t, req.Answers.SharesDataWithThirdParties)
	assert.False(t, *req.Answers.SharesDataWithThirdParties)
	assert.Nil(t, req.Answers.ThirdPartyList)
}

func TestBuildInjectsDateAndKinds(t *testing.T) {
	a := wizard.DefaultAnswers()
	a.ProjectURLs = wizard.URLList{"https://a.com", " https://b.com "}

	req := NewBuilder(fixedNow).Build(a, []wizard.DocumentKind{wizard.TermsOfUse, wizard.PrivacyPolicy})

	assert.Equal(t, "12 de dezembro de 2025", req.Answers.CurrentDate)
	assert.Equal(t, []wizard.DocumentKind{wizard.PrivacyPolicy, wizard.TermsOfUse}, req.Answers.DocumentKinds)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, req.Answers.ProjectURLs)
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		lang wizard.Language
		want string
	}{
		{wizard.LanguagePtBR, "5 de março de 2026"},
		{wizard.LanguagePt, "5 de março de 2026"},
		{wizard.LanguageEn, "5 March 2026"},
		{wizard.LanguageEs, "5 de marzo de 2026"},
		{wizard.LanguageFr, "5 mars 2026"},
		{"xx", "5 de março de 2026"},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(day, tt.lang))
		})
	}
}

func TestRenderPromptMentionsKindsAndDate(t *testing.T) {
	a := wizard.DefaultAnswers()
	a.Language = wizard.LanguageEn
	a.IncludeLastUpdated = true

	req := NewBuilder(fixedNow).Build(a, []wizard.DocumentKind{wizard.PrivacyPolicy})
	prompt, err := RenderPrompt(req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Generate only these documents: privacy_policy.")
	assert.Contains(t, prompt, `Last updated: 12 December 2025`)
	assert.Contains(t, prompt, `"currentDate": "12 December 2025"`)
}
