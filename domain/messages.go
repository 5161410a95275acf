package domain

// GenerateRequest is the body of a relay generate call
type GenerateRequest struct {
	Audio          string `json:"audio"` // base64 encoded
	Mode           string `json:"mode"`
	SelectedText   string `json:"selectedText,omitempty"`
	OutputLanguage string `json:"outputLanguage,omitempty"`
	ClarifyText    bool   `json:"clarifyText,omitempty"`
	Screenshot     string `json:"screenshot,omitempty"` // base64 encoded image
	ReplyStyle     string `json:"replyStyle,omitempty"`
	AudioMIMEType  string `json:"audioMimeType,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
}

// GenerateResponse is returned once per generate call
type GenerateResponse struct {
	Success       bool   `json:"success"`
	Result        string `json:"result,omitempty"`
	Transcription string `json:"transcription,omitempty"`
	Error         string `json:"error,omitempty"`
	RequestID     string `json:"requestId,omitempty"`
}

// TranslateRequest asks for typed text to be translated into TargetLanguage
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

// TranslateResponse carries the translation and the detected source language
type TranslateResponse struct {
	Success          bool   `json:"success"`
	Translation      string `json:"translation,omitempty"`
	FromLanguageName string `json:"fromLanguageName,omitempty"`
	FromLanguageCode string `json:"fromLanguageCode,omitempty"`
	Error            string `json:"error,omitempty"`
}

// TranslateReplyRequest asks for a spoken reply to be transcribed and translated
type TranslateReplyRequest struct {
	Audio          string `json:"audio"` // base64 encoded
	TargetLanguage string `json:"targetLanguage"`
	AudioMIMEType  string `json:"audioMimeType,omitempty"`
}

// TranslateReplyResponse carries the translated spoken reply
type TranslateReplyResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}
