package gemini

import "fmt"

func contentPackPrompt(prompt, platform string) string {
	return fmt.Sprintf(`You are BrandFlow AI, a digital partner for small business owners.
Write high-impact, professional content.
Detect the language of the request and answer in that language for "title", "mainContent" and "videoScript".
Pick the mode that fits the request: "Story" for a narrative with a clear arc, "Script" for a production-ready reel or video script with scene notes and narrator lines, "Branding" for a campaign with a hook and detailed copy.
Choose the image style that best fits the topic and describe it in English in "visualPrompt".
Give a short cinematic English prompt for a 16:9 video in "videoPrompt".

USER REQUEST: %q
PLATFORM: %s`, prompt, platform)
}

func imagePrompt(visualPrompt string) string {
	return fmt.Sprintf("Commercial grade marketing visual. Style and subject: %s. 4k, studio lit, fine detail.", visualPrompt)
}

func taskPrompt(transcription string) string {
	if transcription == "" {
		return "Convert the attached business voice note to data."
	}
	return fmt.Sprintf("Convert business voice note to data: %q.", transcription)
}

func coursePrompt(goal string) string {
	return fmt.Sprintf("Micro-learning path for: %s.", goal)
}

func healthPrompt(lifestyle string) string {
	return fmt.Sprintf("Bio-hacking analysis for founder: %q.", lifestyle)
}
