package ai

// ContentPack is the "perfect pack" produced for a branding prompt.
type ContentPack struct{ Payload }

var contentPackFields = []string{
	"detectedLanguage", "mode", "title", "mainContent", "videoScript", "visualPrompt", "videoPrompt",
}

func ParseContentPack(raw []byte) (ContentPack, error) {
	p, err := parse("content pack", raw, contentPackFields...)
	return ContentPack{p}, err
}

func (c ContentPack) DetectedLanguage() string { return c.String("detectedLanguage") }
func (c ContentPack) Mode() string             { return c.String("mode") }
func (c ContentPack) Title() string            { return c.String("title") }
func (c ContentPack) MainContent() string      { return c.String("mainContent") }
func (c ContentPack) VideoScript() string      { return c.String("videoScript") }
func (c ContentPack) VisualPrompt() string     { return c.String("visualPrompt") }
func (c ContentPack) VideoPrompt() string      { return c.String("videoPrompt") }

// TaskNote is a business voice note turned into structured data.
type TaskNote struct{ Payload }

func ParseTaskNote(raw []byte) (TaskNote, error) {
	p, err := parse("task note", raw, "type", "summary")
	return TaskNote{p}, err
}

func (t TaskNote) Type() string    { return t.String("type") }
func (t TaskNote) Summary() string { return t.String("summary") }
func (t TaskNote) Item() string    { return t.String("data.item") }
func (t TaskNote) Amount() float64 { return t.Float("data.amount") }
func (t TaskNote) Action() string  { return t.String("data.action") }

// Course is a micro-learning path.
type Course struct{ Payload }

type Module struct {
	Title         string `json:"title"`
	EstimatedTime string `json:"estimatedTime"`
}

func ParseCourse(raw []byte) (Course, error) {
	p, err := parse("course", raw, "courseTitle", "modules")
	return Course{p}, err
}

func (c Course) Title() string       { return c.String("courseTitle") }
func (c Course) Description() string { return c.String("hinglishDescription") }

func (c Course) Modules() []Module {
	res := c.Get("modules")
	if !res.IsArray() {
		return nil
	}
	var out []Module
	for _, m := range res.Array() {
		out = append(out, Module{
			Title:         m.Get("title").String(),
			EstimatedTime: m.Get("estimatedTime").String(),
		})
	}
	return out
}

// HealthAnalysis is the wellness report for a founder's lifestyle notes.
type HealthAnalysis struct{ Payload }

func ParseHealthAnalysis(raw []byte) (HealthAnalysis, error) {
	p, err := parse("health analysis", raw, "focusScore", "analysis", "recommendations")
	return HealthAnalysis{p}, err
}

func (h HealthAnalysis) FocusScore() float64       { return h.Float("focusScore") }
func (h HealthAnalysis) Analysis() string          { return h.String("analysis") }
func (h HealthAnalysis) Recommendations() []string { return h.Strings("recommendations") }
