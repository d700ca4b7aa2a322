package websocket

// TranslateRequest is an inbound frame on a realtime channel.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
}

// TranslateResponse is the reply to a successful translation.
type TranslateResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language"`
	Status         string `json:"status"`
}

// DetectResponse is the reply to a successful language detection.
type DetectResponse struct {
	Text             string `json:"text"`
	DetectedLanguage string `json:"detected_language"`
	LanguageName     string `json:"language_name"`
	Status           string `json:"status"`
}

// ErrorResponse is sent on any per-message failure. The channel stays
// open afterwards.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}
