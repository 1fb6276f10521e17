package constant

const (
	SessionTTLMinutes = 60

	GenerationLockPrefix = "policygen:generate:"

	GistDescriptionPrefix = "Generated by PolicyGen on "

	ProjectNotFoundNotice = "project not found, starting a new one"

	// PolicyPromptTemplateV1 is rendered by generation.RenderPrompt.
	PolicyPromptTemplateV1 = `You are a legal document generator for software products.
Write the requested documents from the project data below.

<project_data>
{{ .AnswersJSON }}
</project_data>

<rules>
1. Return ONLY one valid JSON object. No Markdown fences around it.
2. The object has exactly one key, "documents", whose value is an object with exactly
   the keys "privacy_policy", "terms_of_use" and "cookie_policy".
3. Each value is the full document written in Markdown, starting with a level one heading.
4. Generate only these documents: {{ join .Kinds ", " }}.
   Every other key MUST be an empty string.
5. Write every document in the language "{{ .Language }}" and follow the law of jurisdiction "{{ .Jurisdiction }}".
6. Today is "{{ .CurrentDate }}". Replace placeholders such as [DATE] or "current date" with it.
{{- if .IncludeLastUpdated }}
7. End every document with the line "{{ .LastUpdatedLabel }}: {{ .CurrentDate }}".
{{- end }}
</rules>

<shape>
{"documents": {"privacy_policy": "# ...", "terms_of_use": "", "cookie_policy": ""}}
</shape>
`
)

// LastUpdatedLabels holds the "last updated" line prefix per document language.
var LastUpdatedLabels = map[string]string{
	"pt-br": "Última atualização",
	"pt":    "Última atualização",
	"en":    "Last updated",
	"es":    "Última actualización",
	"fr":    "Dernière mise à jour",
}
