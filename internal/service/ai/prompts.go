package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AI request types accepted over the wire and the HTTP surface.
const (
	RequestGenerateQuestions    = "generate_questions"
	RequestAnalyzeAnswer        = "analyze_answer"
	RequestGetFeedback          = "get_feedback"
	RequestSuggestFollowup      = "suggest_followup"
	RequestImproveTranscription = "improve_transcription"
)

// policy fixes sampling parameters per request type. Question generation
// wants variety, analysis and feedback want determinism.
type policy struct {
	Temperature float32
	MaxTokens   int
}

// prompt is a fully built upstream request.
type prompt struct {
	System string
	User   string
	Policy policy
}

// GenerateQuestionsData describes a question-generation request.
type GenerateQuestionsData struct {
	Position string `json:"position"`
	Level    string `json:"level"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AnalyzeAnswerData describes an answer-analysis request.
type AnalyzeAnswerData struct {
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	ExpectedSkills []string `json:"expectedSkills"`
}

// FeedbackData describes a whole-interview feedback request.
type FeedbackData struct {
	Transcript string   `json:"transcript"`
	Questions  []string `json:"questions"`
	Position   string   `json:"position"`
}

// FollowupData describes a follow-up suggestion request.
type FollowupData struct {
	PreviousQuestion string `json:"previousQuestion"`
	Answer           string `json:"answer"`
	Context          string `json:"context"`
}

// ImproveTranscriptionData describes a transcription-cleanup request.
type ImproveTranscriptionData struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// buildPrompt interpolates the caller payload into the fixed template for
// the request type. Caller text is inserted as-is; the upstream API is
// the only sanitization layer.
func buildPrompt(requestType string, data json.RawMessage) (prompt, error) {
	switch requestType {
	case RequestGenerateQuestions:
		return buildGenerateQuestions(data)
	case RequestAnalyzeAnswer:
		return buildAnalyzeAnswer(data)
	case RequestGetFeedback:
		return buildGetFeedback(data)
	case RequestSuggestFollowup:
		return buildSuggestFollowup(data)
	case RequestImproveTranscription:
		return buildImproveTranscription(data)
	default:
		return prompt{}, fmt.Errorf("%w: %s", ErrUnknownRequestType, requestType)
	}
}

func buildGenerateQuestions(data json.RawMessage) (prompt, error) {
	var d GenerateQuestionsData
	if err := unmarshalData(data, &d); err != nil {
		return prompt{}, err
	}
	if d.Position == "" {
		return prompt{}, &MissingFieldError{Field: "position"}
	}
	if d.Level == "" {
		return prompt{}, &MissingFieldError{Field: "level"}
	}
	if d.Category == "" {
		return prompt{}, &MissingFieldError{Field: "category"}
	}
	if d.Count <= 0 {
		d.Count = 5
	}

	user := fmt.Sprintf(`Generate %d %s interview questions for a %s level %s position.

Return as JSON array with this structure:
[{"question": "...", "category": "%s", "difficulty": "%s", "expectedSkills": ["skill1", "skill2"], "timeEstimate": "2-3 minutes"}]

Make the questions relevant, challenging, and appropriate for the specified level.`,
		d.Count, d.Category, d.Level, d.Position, d.Category, d.Level)

	return prompt{
		System: "You are an expert technical interviewer. Generate high-quality interview questions that are relevant and insightful.",
		User:   user,
		Policy: policy{Temperature: 0.7, MaxTokens: 1500},
	}, nil
}

func buildAnalyzeAnswer(data json.RawMessage) (prompt, error) {
	var d AnalyzeAnswerData
	if err := unmarshalData(data, &d); err != nil {
		return prompt{}, err
	}
	if d.Question == "" {
		return prompt{}, &MissingFieldError{Field: "question"}
	}
	if d.Answer == "" {
		return prompt{}, &MissingFieldError{Field: "answer"}
	}

	user := fmt.Sprintf(`Analyze this interview answer:

Question: "%s"
Answer: "%s"
Expected Skills: %s

Return JSON analysis:
{
    "overall_score": 0-10,
    "strengths": ["strength1", "strength2"],
    "weaknesses": ["weakness1", "weakness2"],
    "technical_accuracy": 0-10,
    "communication_clarity": 0-10,
    "completeness": 0-10,
    "recommendations": ["rec1", "rec2"],
    "followup_questions": ["q1", "q2"]
}`, d.Question, d.Answer, strings.Join(d.ExpectedSkills, ", "))

	return prompt{
		System: "You are an expert interviewer analyzing candidate responses. Be fair, constructive, and detailed in your analysis.",
		User:   user,
		Policy: policy{Temperature: 0.3, MaxTokens: 1000},
	}, nil
}

func buildGetFeedback(data json.RawMessage) (prompt, error) {
	var d FeedbackData
	if err := unmarshalData(data, &d); err != nil {
		return prompt{}, err
	}
	if d.Transcript == "" {
		return prompt{}, &MissingFieldError{Field: "transcript"}
	}
	if d.Position == "" {
		return prompt{}, &MissingFieldError{Field: "position"}
	}

	user := fmt.Sprintf(`Provide comprehensive interview feedback based on this interview session:

Position: %s
Questions Asked: %d

Full Transcript: %s

Return JSON feedback:
{
    "overall_score": 0-10,
    "recommendation": "hire|maybe|no_hire",
    "summary": "Brief overall assessment",
    "technical_skills": {"score": 0-10, "comments": "detailed feedback"},
    "communication": {"score": 0-10, "comments": "detailed feedback"},
    "problem_solving": {"score": 0-10, "comments": "detailed feedback"},
    "strengths": ["strength1", "strength2"],
    "improvement_areas": ["area1", "area2"]
}`, d.Position, len(d.Questions), d.Transcript)

	return prompt{
		System: "You are a senior technical interviewer providing comprehensive candidate assessment. Be thorough, fair, and constructive.",
		User:   user,
		Policy: policy{Temperature: 0.3, MaxTokens: 2000},
	}, nil
}

func buildSuggestFollowup(data json.RawMessage) (prompt, error) {
	var d FollowupData
	if err := unmarshalData(data, &d); err != nil {
		return prompt{}, err
	}
	if d.PreviousQuestion == "" {
		return prompt{}, &MissingFieldError{Field: "previousQuestion"}
	}
	if d.Answer == "" {
		return prompt{}, &MissingFieldError{Field: "answer"}
	}

	user := fmt.Sprintf(`Based on this interview exchange, suggest a good follow-up question:

Previous Question: "%s"
Candidate's Answer: "%s"
Context: %s

Return JSON:
{
    "followup_question": "the suggested follow-up question",
    "reasoning": "why this follow-up would be valuable",
    "category": "technical|behavioral|clarification|deeper_dive",
    "difficulty": "easy|medium|hard"
}`, d.PreviousQuestion, d.Answer, d.Context)

	return prompt{
		System: "You are an expert interviewer skilled at asking insightful follow-up questions that probe deeper into candidate responses.",
		User:   user,
		Policy: policy{Temperature: 0.6, MaxTokens: 500},
	}, nil
}

func buildImproveTranscription(data json.RawMessage) (prompt, error) {
	var d ImproveTranscriptionData
	if err := unmarshalData(data, &d); err != nil {
		return prompt{}, err
	}
	if d.Text == "" {
		return prompt{}, &MissingFieldError{Field: "text"}
	}

	user := fmt.Sprintf(`Improve this transcribed text for clarity and grammar while preserving the original meaning:

Original: "%s"
Context: %s

Return JSON:
{
    "improved_text": "...",
    "changes_made": ["change1", "change2"],
    "confidence": 0-1
}`, d.Text, d.Context)

	return prompt{
		System: "You are an expert at improving transcribed text while preserving original meaning.",
		User:   user,
		Policy: policy{Temperature: 0.3, MaxTokens: 500},
	}, nil
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return &MissingFieldError{Field: "data"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid request data: %w", err)
	}
	return nil
}
