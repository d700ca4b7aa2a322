package translation

import (
	"context"
	"time"
)

// textFields are the known translatable fields of structured content.
var textFields = []string{"title", "description", "content", "summary", "instructions"}

// nestedFields are the known nested collection fields; the same field
// set is re-applied at every level.
var nestedFields = []string{"modules", "exercises"}

// Content is externally supplied, so recursion is bounded.
const maxContentDepth = 5

const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

// TranslationInfo annotates translated content with provenance.
type TranslationInfo struct {
	SourceLocale string   `json:"source_locale"`
	TargetLocale string   `json:"target_locale"`
	TranslatedAt string   `json:"translated_at"`
	Status       string   `json:"status"`
	FailedFields []string `json:"failed_fields,omitempty"`
}

// TranslateContent recursively translates the known textual fields of
// a content tree. A failed field keeps its original value and is
// recorded in the node's translation_info rather than silently
// dropped; sibling fields proceed regardless. The returned status is
// "partial" when any field anywhere in the tree failed.
func (t *Translator) TranslateContent(ctx context.Context, content map[string]interface{}, target, source string) (map[string]interface{}, string, error) {
	if err := t.ValidateLocales(target, source); err != nil {
		return nil, "", err
	}

	if source == "" {
		if sample := firstTextField(content); sample != "" {
			source = t.resolveSource(ctx, sample, "")
		} else {
			source = t.registry.DefaultLocale()
		}
	}

	result, failed := t.translateNode(ctx, content, target, source, 0)

	status := StatusComplete
	if failed {
		status = StatusPartial
	}
	return result, status, nil
}

// translateNode translates one level of the tree and recurses into the
// known nested collections. Returns the translated node and whether
// any field in the subtree failed.
func (t *Translator) translateNode(ctx context.Context, node map[string]interface{}, target, source string, depth int) (map[string]interface{}, bool) {
	out := make(map[string]interface{}, len(node)+1)
	for k, v := range node {
		out[k] = v
	}

	var failedFields []string
	anyFailed := false

	for _, field := range textFields {
		raw, ok := node[field]
		if !ok {
			continue
		}
		text, ok := raw.(string)
		if !ok || text == "" {
			continue
		}

		translated, err := t.TranslateText(ctx, text, target, source)
		if err != nil {
			// Keep the original value; never drop the field
			failedFields = append(failedFields, field)
			anyFailed = true
			continue
		}
		out[field] = translated
	}

	if depth < maxContentDepth {
		for _, field := range nestedFields {
			raw, ok := node[field]
			if !ok {
				continue
			}
			items, ok := raw.([]interface{})
			if !ok {
				continue
			}

			translated := make([]interface{}, 0, len(items))
			for _, item := range items {
				child, ok := item.(map[string]interface{})
				if !ok {
					translated = append(translated, item)
					continue
				}
				childOut, childFailed := t.translateNode(ctx, child, target, source, depth+1)
				if childFailed {
					anyFailed = true
				}
				translated = append(translated, childOut)
			}
			out[field] = translated
		}
	}

	status := StatusComplete
	if len(failedFields) > 0 {
		status = StatusPartial
	}
	out["translation_info"] = TranslationInfo{
		SourceLocale: source,
		TargetLocale: target,
		TranslatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:       status,
		FailedFields: failedFields,
	}

	return out, anyFailed
}

func firstTextField(node map[string]interface{}) string {
	for _, field := range textFields {
		if text, ok := node[field].(string); ok && text != "" {
			return text
		}
	}
	return ""
}
