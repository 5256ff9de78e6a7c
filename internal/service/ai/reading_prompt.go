package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/z-bazi/backend/internal/model/bazi"
)

// Kind identifies one of the narrative requests sent to the model.
type Kind string

const (
	KindInterpretation Kind = "interpretation"
	KindDailyInsight   Kind = "daily_insight"
)

// PromptTemplate defines the structure of a reading prompt
type PromptTemplate struct {
	SystemPrompt string
	Instructions []string
	OutputRules  []string
}

// ReadingPromptManager holds the prompt templates for each narrative kind
type ReadingPromptManager struct {
	templates map[Kind]*PromptTemplate
}

// NewReadingPromptManager creates a prompt manager with the default templates
func NewReadingPromptManager() *ReadingPromptManager {
	manager := &ReadingPromptManager{
		templates: make(map[Kind]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the template for kind
func (pm *ReadingPromptManager) GetPromptTemplate(kind Kind) (*PromptTemplate, error) {
	template, exists := pm.templates[kind]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for kind: %s", kind)
	}
	return template, nil
}

// BuildSystemPrompt renders the system message for kind
func (pm *ReadingPromptManager) BuildSystemPrompt(kind Kind) (string, error) {
	template, err := pm.GetPromptTemplate(kind)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`%s

Instructions:
- %s

Output rules:
- %s`,
		template.SystemPrompt,
		strings.Join(template.Instructions, "\n- "),
		strings.Join(template.OutputRules, "\n- "),
	), nil
}

// BuildInterpretationQuery renders the user message of the full interpretation.
func (pm *ReadingPromptManager) BuildInterpretationQuery(chart bazi.ChartData) string {
	var builder strings.Builder
	builder.WriteString("Please interpret this Bazi (Four Pillars) chart.\n\n")
	writeChart(&builder, chart)
	builder.WriteString("\nCover: 1. Personality overview, 2. Character traits, 3. Strengths and talents, 4. Growth areas, 5. Life guidance and advice.")
	return builder.String()
}

// BuildDailyInsightQuery renders the user message of the daily insight for date (yyyy-MM-dd).
func (pm *ReadingPromptManager) BuildDailyInsightQuery(chart bazi.ChartData, date string) string {
	var builder strings.Builder
	builder.WriteString("Give a short daily insight for this Bazi chart.\n\n")
	writeChart(&builder, chart)
	builder.WriteString("\nToday's date: ")
	builder.WriteString(date)
	builder.WriteString("\nRelate the insight to the energy of this specific day.")
	return builder.String()
}

func writeChart(builder *strings.Builder, chart bazi.ChartData) {
	for i, pillar := range chart.Pillars() {
		fmt.Fprintf(builder, "%s Pillar: %s (Heavenly Stem: %s, Earthly Branch: %s)\n",
			bazi.PillarNames[i], labelOrUnknown(pillar.RawLabel), pillar.HeavenlyStem, pillar.EarthlyBranch)
	}
	fmt.Fprintf(builder, "Day Master: %s\n", chart.DayMasterOr("unknown"))
}

func labelOrUnknown(label string) string {
	if strings.TrimSpace(label) == "" {
		return bazi.Unknown
	}
	return label
}

// loadDefaultTemplates registers the built-in templates
func (pm *ReadingPromptManager) loadDefaultTemplates() {
	pm.templates[KindInterpretation] = &PromptTemplate{
		SystemPrompt: `You are an experienced Bazi (Four Pillars of Destiny) consultant. You explain charts in warm, plain English for people with no background in Chinese metaphysics.`,
		Instructions: []string{
			"Base every statement on the pillars and the Day Master provided",
			"Explain the Day Master element and how the other pillars support or challenge it",
			"Keep the tone encouraging and practical, never fatalistic",
			"Do not make medical, legal or financial predictions",
		},
		OutputRules: []string{
			"Use numbered section headings, one per line, e.g. \"1. Personality Overview\"",
			"Write two or three short paragraphs under each heading",
			"Plain text only, avoid tables",
			"Stay under 450 words",
		},
	}

	pm.templates[KindDailyInsight] = &PromptTemplate{
		SystemPrompt: `You are a Bazi consultant writing a one-day insight for a client whose chart you know.`,
		Instructions: []string{
			"Connect the given date to the client's Day Master",
			"Offer one concrete suggestion for the day",
		},
		OutputRules: []string{
			"Two to three sentences",
			"No headings, no lists",
		},
	}
}
