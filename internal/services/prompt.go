package services

import (
	"fmt"
	"strings"

	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// Section headings the summary prompt asks for. ParseSummary reads them back.
const (
	HeadingFullName   = "Full Name"
	HeadingExperience = "Experience"
	HeadingSkills     = "Skills"
	HeadingEducation  = "Education"
	HeadingLanguages  = "Languages"
)

const (
	summarySystemPrompt  = "You summarize résumés objectively, without inventing facts."
	critiqueSystemPrompt = "You are a senior recruiter who writes objective, evidence-based assessments."
	scoreSystemPrompt    = "You compute candidate scores rigorously and in a standard format."
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSummaryPrompt asks for a markdown synopsis with fixed headings.
func (pb *PromptBuilder) BuildSummaryPrompt(resumeText string) string {
	return fmt.Sprintf(`Summarize the résumé below in Markdown using exactly these sections:
## %s
## %s
## %s
## %s
## %s

Put the candidate's name alone on the line after "## %s". Under skills, education and languages write one item per line as a "- " bullet. Keep the résumé's original language for the content.

RÉSUMÉ:
%s`,
		HeadingFullName, HeadingExperience, HeadingSkills, HeadingEducation, HeadingLanguages,
		HeadingFullName, resumeText)
}

// BuildCritiquePrompt compares the résumé with the job's activities, prerequisites and differentials.
func (pb *PromptBuilder) BuildCritiquePrompt(resumeText string, job *models.Job) string {
	return fmt.Sprintf(`Critically analyse the résumé against the job opening.

JOB:
%s

RÉSUMÉ:
%s

Answer in Markdown with these headings:
## Alignment Points
## Misalignment Points
## Attention Points
## Final Recommendation`, jobRequirements(job), resumeText)
}

// BuildScorePrompt embeds every weighted criterion and asks for a single final figure.
func (pb *PromptBuilder) BuildScorePrompt(resumeText string, job *models.Job) string {
	return fmt.Sprintf(`Grade the résumé against the weighted criteria of the job below.

CRITERIA:
%s

JOB DESCRIPTION:
%s

RÉSUMÉ:
%s

Instructions:
- Give each criterion a partial grade from 0 to 10.
- Apply the weights and compute the final grade from 0 to 10.
- Reply ONLY with a JSON object in this format: {"score": X.X}
- If you cannot produce JSON, reply exactly: Final Score: X.X`,
		criteriaList(job.Criteria), jobRequirements(job), resumeText)
}

func criteriaList(criteria []models.Criterion) string {
	if len(criteria) == 0 {
		return "- General fit for the role (100%)"
	}

	var sb strings.Builder
	for i, c := range criteria {
		if i > 0 {
			sb.WriteString("\n")
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "Unnamed"
		}
		fmt.Fprintf(&sb, "- %s (%g%%)", name, c.Weight)
		if d := strings.TrimSpace(c.Description); d != "" {
			sb.WriteString(": ")
			sb.WriteString(d)
		}
	}
	return sb.String()
}

func jobRequirements(job *models.Job) string {
	parts := []struct{ label, value string }{
		{"Title", job.Title},
		{"Description", job.Description},
		{"Main activities", job.MainActivities},
		{"Prerequisites", job.Prerequisites},
		{"Differentials", job.Differentials},
	}

	var lines []string
	for _, p := range parts {
		if v := strings.TrimSpace(p.value); v != "" {
			lines = append(lines, p.label+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}
