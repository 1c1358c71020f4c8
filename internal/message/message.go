// Package message defines the JSON bodies exchanged over the public API.
package message

// ProcessResponse is returned by a successful POST /process_audio.
type ProcessResponse struct {
	// Text is the reply that was spoken. It is the short notice when the
	// generated reply ran over the duration budget.
	Text string `json:"text" example:"It is sunny today."`

	// Audio is the retrieval URL of the synthesized reply.
	Audio string `json:"audio" example:"/audio/0b9d3c9e-4a57-4a8e-9d1c-2f6b7a1e5c10"`

	// Language is the ISO-639-1 code detected in the upload ("en" or "hi").
	Language string `json:"language" example:"en" enums:"en,hi"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error" example:"no audio file"`
}

// AudioURL returns the retrieval path for a request token.
func AudioURL(token string) string {
	return "/audio/" + token
}
