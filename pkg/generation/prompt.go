package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"policygen/internal/constant"
	"policygen/pkg/wizard"
)

var policyPrompt = template.Must(
	template.New("policy").
		Funcs(template.FuncMap{"join": joinKinds}).
		Parse(constant.PolicyPromptTemplateV1),
)

type promptData struct {
	AnswersJSON        string
	Kinds              []wizard.DocumentKind
	Language           wizard.Language
	Jurisdiction       wizard.Jurisdiction
	CurrentDate        string
	IncludeLastUpdated bool
	LastUpdatedLabel   string
}

func joinKinds(kinds []wizard.DocumentKind, sep string) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, sep)
}

// RenderPrompt turns a request into the model prompt.
func RenderPrompt(req *Request) (string, error) {
	answers, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}

	label, ok := constant.LastUpdatedLabels[string(req.Answers.Language)]
	if !ok {
		label = constant.LastUpdatedLabels["pt-br"]
	}

	var sb strings.Builder
	err = policyPrompt.Execute(&sb, promptData{
		AnswersJSON:        string(answers),
		Kinds:              req.Answers.DocumentKinds,
		Language:           req.Answers.Language,
		Jurisdiction:       req.Answers.Jurisdiction,
		CurrentDate:        req.Answers.CurrentDate,
		IncludeLastUpdated: req.Answers.IncludeLastUpdated,
		LastUpdatedLabel:   label,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
