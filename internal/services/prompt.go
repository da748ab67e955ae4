package services

import (
	"fmt"
	"strings"

	"elev8ai/assessment-api/internal/models"
)

const (
	// Per-section character budgets for the chat prompt. The trailing
	// portion is kept when a section overflows, since the most specific
	// content tends to sit at the end.
	maxSectionLength = 5000

	maxPromptLength       = 20000
	truncatedPromptLength = 19000
	truncationMarker      = "\n[CONTENT TRUNCATED]"

	historyTurnLimit = 5
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAssessmentPrompt creates the structured assessment prompt. The
// competency matrix is embedded verbatim and the model is instructed to
// return one flat JSON object with fixed top-level keys.
func (pb *PromptBuilder) BuildAssessmentPrompt(matrix, fromDesignation, toDesignation string) string {
	return fmt.Sprintf(`Competency Matrix Context is provided in <<< >>>
<<<%s>>>

Retrieved Knowledge:
%s

**Role & Objective:**
You are responsible for assessing an engineer's competency based on an uploaded artifact. Your task is to analyze the artifact and determine how well it aligns with predefined weighted competency themes.

**Evaluation Process:**
You are provided with a weighted competency matrix that defines multiple themes across engineering levels (P2-P7). The candidate's artifact consists of raw text.
The candidate is transitioning from %s to %s

Instructions:
1. Analyze ALL areas, attributes, and competencies from the matrix.
2. For each competency, provide:
    - Match percentage (0-100%%)
    - Summary of evidence found (or lack thereof)
3. For competencies with no evidence, explicitly state "No evidence found in artifacts"
4. Calculate overall match percentage based on all competencies as the json key final_match

Your response must be a single, flat JSON object with the following exact top-level keys:

"summary": A detailed written summary of the candidate's work
"competency_matches": each entry carries "name", "description", "match_percentage" (number), and "reasoning"
"area_matches": each entry carries "name" and "match_percentage" (number)
"category_matches": each entry carries "name" and "match_percentage" (number)
"final_match": A number representing the final weighted score
"areas_of_improvement": An array of objects, each with "competency", "match_percentage", and "feedback" (constructive feedback using the hamburger model: reality, feedback, future)

Example structure:

{
    "summary": "detailed summary of the candidate's work",
    "competency_matches": [
        {
            "name": "writing_code",
            "description": "Make sure to elaborate a little bit on the description side",
            "match_percentage": 85,
            "reasoning": "The artifact includes references to unit testing and error handling, demonstrating alignment with this competency."
        }
    ],
    "area_matches": [
        {
            "name": "quality_and_testing",
            "match_percentage": 82
        }
    ],
    "category_matches": [
        {
            "name": "technical_skills",
            "match_percentage": 80
        }
    ],
    "final_match": 81,
    "areas_of_improvement": [
        {
            "competency": "competency name",
            "match_percentage": 70,
            "feedback": "Constructive feedback using the hamburger model (reality, feedback, future)"
        }
    ]
}

**Weight Considerations:**
- Technical skills weigh more heavily for junior levels (P2-P4)
- Leadership/Strategic impact dominate senior levels (P6-P7)
- Delivery/Communication maintain medium weight throughout
- Normalize all weights relative to level expectations

**Guardrails:**
- Include all areas/attributes/competencies even if no evidence exists
- Be strict in assessment - no evidence means 0%% match
- Strictly use only the provided matrix and artifact
- Weights must factor into all calculations
- JSON output only, no explanatory text or markdown, no code fences
- Only provide the clean JSON object. Do not escape any characters. Output only valid JSON, not a stringified version.

For each competency where the match is below 100%%, analyze the gap and identify where the candidate fell short, with clear, constructive suggestions on how to close the remaining percentage gap based on the competency matrix.`,
		matrix, SearchResultsPlaceholder, fromDesignation, toDesignation)
}

// BuildChatContext renders the most recent conversation turns as Q:/A: lines
// followed by the current question.
func (pb *PromptBuilder) BuildChatContext(history models.ChatTurns, currentQuestion string) string {
	if len(history) > historyTurnLimit {
		history = history[len(history)-historyTurnLimit:]
	}

	if len(history) == 0 {
		return fmt.Sprintf("Current question: %s", currentQuestion)
	}

	lines := []string{"Previous conversation history:"}
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("Q: %s", turn.Question))
		lines = append(lines, fmt.Sprintf("A: %s", turn.Answer))
	}
	lines = append(lines, fmt.Sprintf("Current question: %s", currentQuestion))

	return strings.Join(lines, "\n")
}

// BuildChatPrompt assembles the chat prompt inside fixed character budgets.
func (pb *PromptBuilder) BuildChatPrompt(email, question, chatContext, matrix string) string {
	matrix = keepTail(matrix, maxSectionLength)
	chatContext = keepTail(chatContext, maxSectionLength)

	parts := []string{
		fmt.Sprintf("User Email: %s", email),
		"Chat Context (recent conversation history):",
		chatContext,
		"\nCompetency Matrix Context (most relevant parts):",
		matrix,
		"\nCurrent Question:",
		question,
		"\nInstructions:",
		`- You are an AI assistant for a competency assessment system
- For assessment questions, focus on the competency matrix
- If asked about weaknesses focus on areas of improvement the candidate can focus on
- For general questions, use your knowledge base
- Keep answers concise
- If unsure, say you don't know`,
	}

	prompt := strings.Join(parts, "\n")
	if len(prompt) > maxPromptLength {
		prompt = prompt[:truncatedPromptLength] + truncationMarker
	}

	return prompt
}

// keepTail truncates to the trailing max characters.
func keepTail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
