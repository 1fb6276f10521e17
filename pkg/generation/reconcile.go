package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"policygen/pkg/wizard"
)

// Result is a reconciled generation: the full document set (unrequested or
// blank kinds empty) and the non-empty documents in tab order.
type Result struct {
	Documents wizard.DocumentSet `json:"documents"`
	Tabs      []wizard.Tab       `json:"tabs"`
}

// Active returns the default document, the first tab.
func (r *Result) Active() (wizard.Tab, bool) {
	if r == nil || len(r.Tabs) == 0 {
		return wizard.Tab{}, false
	}
	return r.Tabs[0], true
}

// EmptyResult is the all-empty document set.
func EmptyResult() *Result {
	docs := make(wizard.DocumentSet, len(wizard.CanonicalKinds))
	for _, k := range wizard.CanonicalKinds {
		docs[k] = ""
	}
	return &Result{Documents: docs, Tabs: []wizard.Tab{}}
}

// Reconcile validates raw against the documents contract and filters it to
// the requested kinds. It never returns a partial result with an error.
func Reconcile(raw []byte, requested []wizard.DocumentKind) (*Result, error) {
	body := bytes.TrimSpace(raw)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	if msg, ok := envelope["error"]; ok {
		if _, hasDocs := envelope["documents"]; !hasDocs {
			var text string
			if err := json.Unmarshal(msg, &text); err != nil || strings.TrimSpace(text) == "" {
				text = "unknown error"
			}
			return nil, &UpstreamError{Message: text}
		}
	}

	if len(envelope) != 1 {
		return nil, fmt.Errorf("%w: unexpected top-level keys", ErrMalformedResponse)
	}
	rawDocs, ok := envelope["documents"]
	if !ok {
		return nil, fmt.Errorf("%w: missing documents", ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawDocs, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: documents is not an object", ErrMalformedResponse)
	}
	if len(fields) != len(wizard.CanonicalKinds) {
		return nil, fmt.Errorf("%w: expected exactly %d document keys, got %d", ErrMalformedResponse, len(wizard.CanonicalKinds), len(fields))
	}

	wanted := make(map[wizard.DocumentKind]bool, len(requested))
	for _, k := range ResolveKinds(requested) {
		wanted[k] = true
	}

	docs := make(wizard.DocumentSet, len(wizard.CanonicalKinds))
	for _, kind := range wizard.CanonicalKinds {
		value, ok := fields[string(kind)]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %s", ErrMalformedResponse, kind)
		}
		text, err := decodeDocument(value)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrMalformedResponse, kind, err)
		}
		if !wanted[kind] || strings.TrimSpace(text) == "" {
			text = ""
		}
		docs[kind] = text
	}

	result := &Result{Documents: docs, Tabs: docs.Tabs()}
	if len(wanted) > 0 && len(result.Tabs) == 0 {
		return nil, ErrEmptyGeneration
	}
	return result, nil
}

// decodeDocument accepts a JSON string or null.
func decodeDocument(value json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return "", fmt.Errorf("value is not a string")
	}
	return text, nil
}
