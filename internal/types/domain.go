package types

// FieldTemplate is a domain-typical field used to seed rule-based schema
// suggestions.
type FieldTemplate struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
}

// BusinessDomain is the result of classifying free text (or a field name)
// against the known business-domain vocabularies. Confidence is the
// keyword-match density over the input tokens; Keywords holds the matched
// vocabulary, not the full domain list.
type BusinessDomain struct {
	Name         string          `json:"name"`
	Confidence   float64         `json:"confidence"`
	Keywords     []string        `json:"keywords"`
	CommonFields []FieldTemplate `json:"common_fields"`
}
