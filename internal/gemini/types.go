package gemini

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type SpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema       `json:"responseSchema,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
	ImageConfig        *ImageConfig  `json:"imageConfig,omitempty"`
}

type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type VideoRequest struct {
	Instances  []VideoInstance `json:"instances"`
	Parameters VideoParameters `json:"parameters"`
}

type VideoInstance struct {
	Prompt string `json:"prompt"`
}

type VideoParameters struct {
	AspectRatio    string `json:"aspectRatio"`
	Resolution     string `json:"resolution"`
	NumberOfVideos int    `json:"sampleCount"`
}

func object(required bool, props map[string]*Schema) *Schema {
	s := &Schema{Type: "OBJECT", Properties: props}
	if required {
		for name := range props {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

// requiring marks fields of s as required, in the given order.
func requiring(s *Schema, fields ...string) *Schema {
	s.Required = append(s.Required, fields...)
	return s
}

func str() *Schema { return &Schema{Type: "STRING"} }
func num() *Schema { return &Schema{Type: "NUMBER"} }
func arrayOf(items *Schema) *Schema {
	return &Schema{Type: "ARRAY", Items: items}
}
