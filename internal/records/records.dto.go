package records

type GenerateContentRequest struct {
	Prompt    string `json:"prompt"`
	Platform  string `json:"platform"`
	VoiceName string `json:"voiceName"`
}

type VideoRequest struct {
	Prompt string `json:"prompt"`
}

// TaskRequest carries either a transcription or a base64 audio note.
type TaskRequest struct {
	Transcription string `json:"transcription"`
	AudioBase64   string `json:"audioBase64"`
	MimeType      string `json:"mimeType"`
}

type CourseRequest struct {
	Goal string `json:"goal"`
}

type HealthRequest struct {
	Lifestyle string `json:"lifestyle"`
}

// SearchResult is one hit of the cross-module search.
type SearchResult struct {
	Category  Category `json:"category"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Timestamp int64    `json:"timestamp"`
	Record    Record   `json:"record"`
}
