package gemini

import "sort"

var contentPackSchema = func() *Schema {
	s := object(true, map[string]*Schema{
		"detectedLanguage": str(),
		"mode":             str(),
		"title":            str(),
		"mainContent":      str(),
		"videoScript":      str(),
		"visualPrompt":     str(),
		"videoPrompt":      str(),
	})
	sort.Strings(s.Required)
	return s
}()

var taskNoteSchema = requiring(object(false, map[string]*Schema{
	"type":    str(),
	"summary": str(),
	"data": object(false, map[string]*Schema{
		"item":   str(),
		"amount": num(),
		"action": str(),
	}),
}), "type", "summary")

var courseSchema = requiring(object(false, map[string]*Schema{
	"courseTitle":         str(),
	"hinglishDescription": str(),
	"modules": arrayOf(object(false, map[string]*Schema{
		"title":         str(),
		"estimatedTime": str(),
	})),
}), "courseTitle", "modules")

var healthSchema = requiring(object(false, map[string]*Schema{
	"focusScore":      num(),
	"analysis":        str(),
	"recommendations": arrayOf(str()),
}), "focusScore", "analysis", "recommendations")
