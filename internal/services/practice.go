package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

const (
	// MaxChatHistory is how many previous mentor messages are replayed into the prompt.
	MaxChatHistory = 10
	// DefaultJudgeLanguage is assumed when a submission names no language.
	DefaultJudgeLanguage = "javascript"
)

var quizSchemaDoc = &lazySchema{url: "schema://aptitude-quiz.json", src: `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
          "correctAnswer": {"type": "string"},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`}

var problemSchemaDoc = &lazySchema{url: "schema://coding-problem.json", src: `{
  "type": "object",
  "required": ["title", "description"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "difficulty": {"type": "string"},
    "description": {"type": "string", "minLength": 1},
    "examples": {"type": "array", "items": {"type": "string"}},
    "hint": {"type": "string"},
    "starterCode": {"type": "string"}
  }
}`}

var verdictSchemaDoc = &lazySchema{url: "schema://judge-verdict.json", src: `{
  "type": "object",
  "required": ["passed", "feedback", "score"],
  "properties": {
    "passed": {"type": "boolean"},
    "feedback": {"type": "string"},
    "score": {"type": "integer", "minimum": 0, "maximum": 100}
  }
}`}

var resumeSchemaDoc = &lazySchema{url: "schema://resume.json", src: `{"type": "object"}`}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Quiz is a multiple choice aptitude quiz. Fallback is set when the built-in
// question set was served because generation failed.
type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
	Fallback  bool           `json:"fallback"`
}

type CodingProblem struct {
	Title       string   `json:"title"`
	Difficulty  string   `json:"difficulty"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Hint        string   `json:"hint"`
	StarterCode string   `json:"starterCode"`
}

type JudgeInput struct {
	Problem  CodingProblem
	Code     string
	Language string
}

type Verdict struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
	Score    int    `json:"score"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// fallbackQuiz is served when the model is unavailable so practice keeps working.
var fallbackQuiz = []QuizQuestion{
	{
		Question:      "Which number logically follows this series: 4, 6, 9, 6, 14, 6, ...?",
		Options:       []string{"6", "17", "19", "21"},
		CorrectAnswer: "19",
		Explanation:   "The series alternates. 4+5=9, 9+5=14, 14+5=19. The number 6 remains constant.",
	},
	{
		Question:      "A train running at the speed of 60 km/hr crosses a pole in 9 seconds. What is the length of the train?",
		Options:       []string{"120 metres", "180 metres", "324 metres", "150 metres"},
		CorrectAnswer: "150 metres",
		Explanation:   "Speed = 60 * 5/18 = 50/3 m/s. Length = speed * time = 50/3 * 9 = 150 metres.",
	},
	{
		Question:      "Find the odd one out: 3, 5, 11, 14, 17, 21",
		Options:       []string{"21", "17", "14", "3"},
		CorrectAnswer: "14",
		Explanation:   "14 is the only even number.",
	},
	{
		Question:      "If A is the brother of B; B is the sister of C; and C is the father of D, how is D related to A?",
		Options:       []string{"Brother", "Sister", "Nephew", "Cannot be determined"},
		CorrectAnswer: "Cannot be determined",
		Explanation:   "D's gender is not known, so D could be the nephew or niece of A.",
	},
	{
		Question:      "A clock is started at noon. By 10 minutes past 5, the hour hand has turned through:",
		Options:       []string{"145°", "150°", "155°", "160°"},
		CorrectAnswer: "155°",
		Explanation:   "The hour hand turns 30° per hour. 5 h 10 min is 31/6 h, so 30 * 31/6 = 155°.",
	},
}

// FallbackQuiz returns a copy of the built-in question set.
func FallbackQuiz(topic string) *Quiz {
	questions := make([]QuizQuestion, len(fallbackQuiz))
	for i, q := range fallbackQuiz {
		q.Options = slices.Clone(q.Options)
		questions[i] = q
	}
	return &Quiz{Topic: topic, Questions: questions, Fallback: true}
}

// resumeIdentityFields are copied back from the submitted resume after optimisation.
var resumeIdentityFields = []string{"fullName", "email", "phone", "linkedin", "github", "education"}

// PracticeService serves the model-backed practice tools: aptitude quizzes, coding
// problems and their judging, the mentor chat and resume tailoring.
type PracticeService struct {
	llm      TextGenerator
	profiles ProfileRepository
	roadmaps RoadmapRepository
	limiter  RateLimiter

	RequestTimeout  time.Duration
	RequestsPerHour int
}

func NewPracticeService(llm TextGenerator, profiles ProfileRepository, roadmaps RoadmapRepository, limiter RateLimiter) *PracticeService {
	return &PracticeService{
		llm:             llm,
		profiles:        profiles,
		roadmaps:        roadmaps,
		limiter:         limiter,
		RequestTimeout:  60 * time.Second,
		RequestsPerHour: 30,
	}
}

func (s *PracticeService) allow(ctx context.Context, profileID string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.CheckRateLimit(ctx, "practice:"+profileID, s.RequestsPerHour, time.Hour)
	if err != nil {
		logger.Warn().Err(err).Str("profile_id", profileID).Msg("Practice rate limit check failed")
		return nil
	}
	if !allowed {
		return apperrors.RateLimited("Too many practice requests, try again later")
	}
	return nil
}

// complete sends one prompt under the request timeout. Failures that are not
// already AppErrors become 502s.
func (s *PracticeService) complete(ctx context.Context, prompt string, asJSON bool) (string, error) {
	if s.llm == nil {
		return "", apperrors.Unavailable("AI practice is not configured")
	}
	if s.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RequestTimeout)
		defer cancel()
	}
	text, err := s.llm.Complete(ctx, prompt, asJSON)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperrors.BadGateway("AI request failed", err)
	}
	return text, nil
}

// GenerateQuiz asks for a five question quiz on topic. Any generation failure is
// answered with the built-in question set instead of an error.
func (s *PracticeService) GenerateQuiz(ctx context.Context, profileID, topic string) (*Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperrors.BadRequest("Topic is required")
	}
	if err := s.allow(ctx, profileID); err != nil {
		return nil, err
	}

	quiz, err := s.generateQuiz(ctx, topic)
	if err != nil {
		logger.Warn().Err(err).Str("profile_id", profileID).Str("topic", topic).Msg("Quiz generation failed, serving fallback questions")
		return FallbackQuiz(topic), nil
	}
	return quiz, nil
}

func (s *PracticeService) generateQuiz(ctx context.Context, topic string) (*Quiz, error) {
	text, err := s.complete(ctx, BuildQuizPrompt(topic), true)
	if err != nil {
		return nil, err
	}
	quiz := &Quiz{Topic: topic}
	if err := decodeValidated(text, quizSchemaDoc, "quiz", quiz); err != nil {
		return nil, err
	}
	for i, q := range quiz.Questions {
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return nil, apperrors.BadGateway(fmt.Sprintf("Generator returned a malformed quiz: question %d answer is not an option", i+1), nil)
		}
	}
	return quiz, nil
}

func BuildQuizPrompt(topic string) string {
	return fmt.Sprintf(`Create a 5-question multiple choice aptitude quiz about %q.
The questions should suit a placement exam (quantitative or logical reasoning).
correctAnswer must be exactly one of the options.

Return only JSON of this shape:
{"questions":[{"question":"","options":["","","",""],"correctAnswer":"","explanation":""}]}`, topic)
}

// GenerateProblem asks for a medium difficulty coding interview problem on topic.
func (s *PracticeService) GenerateProblem(ctx context.Context, profileID, topic string) (*CodingProblem, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperrors.BadRequest("Topic is required")
	}
	if err := s.allow(ctx, profileID); err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, BuildProblemPrompt(topic), true)
	if err != nil {
		logger.Error().Err(err).Str("profile_id", profileID).Msg("Problem generation failed")
		return nil, err
	}
	var problem CodingProblem
	if err := decodeValidated(text, problemSchemaDoc, "problem", &problem); err != nil {
		return nil, err
	}
	if problem.Difficulty == "" {
		problem.Difficulty = "Medium"
	}
	return &problem, nil
}

func BuildProblemPrompt(topic string) string {
	return fmt.Sprintf(`Generate a unique coding interview problem about %q.
Difficulty: Medium.

Return only JSON of this shape:
{"title":"","difficulty":"Medium","description":"","examples":["Input: [1,2,3] -> Output: [1,3,2]"],"hint":"","starterCode":""}`, topic)
}

// JudgeSolution asks the model to grade a submitted solution against its problem.
func (s *PracticeService) JudgeSolution(ctx context.Context, profileID string, in JudgeInput) (*Verdict, error) {
	if strings.TrimSpace(in.Code) == "" {
		return nil, apperrors.BadRequest("Code is required")
	}
	if strings.TrimSpace(in.Problem.Title) == "" && strings.TrimSpace(in.Problem.Description) == "" {
		return nil, apperrors.BadRequest("Problem is required")
	}
	if strings.TrimSpace(in.Language) == "" {
		in.Language = DefaultJudgeLanguage
	}
	if err := s.allow(ctx, profileID); err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, BuildJudgePrompt(in), true)
	if err != nil {
		logger.Error().Err(err).Str("profile_id", profileID).Msg("Solution judging failed")
		return nil, err
	}
	var verdict Verdict
	if err := decodeValidated(text, verdictSchemaDoc, "verdict", &verdict); err != nil {
		return nil, err
	}

	logger.Info().
		Str("profile_id", profileID).
		Str("problem", in.Problem.Title).
		Bool("passed", verdict.Passed).
		Int("score", verdict.Score).
		Msg("Solution judged")
	return &verdict, nil
}

func BuildJudgePrompt(in JudgeInput) string {
	var b strings.Builder
	b.WriteString("You are an automated coding judge.\n\n")
	fmt.Fprintf(&b, "Problem title: %s\nProblem description: %s\n\n", in.Problem.Title, in.Problem.Description)
	fmt.Fprintf(&b, "Submitted code (%s):\n%s\n\n", in.Language, in.Code)
	b.WriteString("Check the logic for correctness, edge cases and efficiency. Ignore minor syntax errors when the logic is clearly correct.\n\n")
	b.WriteString(`Return only JSON of this shape:
{"passed":true,"feedback":"short feedback on correctness, complexity or the bug","score":0}`)
	return b.String()
}

// MentorReply answers a chat message with the student's profile and current roadmap
// task as context. Only the last MaxChatHistory messages of history are used.
func (s *PracticeService) MentorReply(ctx context.Context, profileID, message string, history []ChatMessage) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.BadRequest("Message is required")
	}
	if err := s.allow(ctx, profileID); err != nil {
		return "", err
	}

	student, err := s.studentContext(ctx, profileID)
	if err != nil {
		return "", err
	}
	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}

	reply, err := s.complete(ctx, BuildMentorPrompt(student, message, history), false)
	if err != nil {
		logger.Error().Err(err).Str("profile_id", profileID).Msg("Mentor chat failed")
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", apperrors.BadGateway("Mentor returned an empty reply", nil)
	}
	return reply, nil
}

func (s *PracticeService) studentContext(ctx context.Context, profileID string) (string, error) {
	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nTarget role: %s\nCurrent level: %s\nStreak: %d days\n", p.Name, p.TargetRole, p.CurrentLevel, p.Streak)

	roadmap, err := s.roadmaps.FindActiveByProfile(ctx, profileID)
	switch {
	case err == nil:
		fmt.Fprintf(&b, "Following a %s roadmap.\n", p.GoalTimeline)
		if d := CurrentTask(roadmap.Days); d != nil {
			fmt.Fprintf(&b, "Today's tasks (month %d, week %d, day %d): aptitude %q, DSA %q, core %q.\n",
				d.Month, d.Week, d.Day, d.AptitudeTask, d.DSATask, d.CoreTask)
		} else {
			b.WriteString("Every roadmap day is complete.\n")
		}
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return "", err
	}
	return b.String(), nil
}

func BuildMentorPrompt(student, message string, history []ChatMessage) string {
	var b strings.Builder
	b.WriteString("You are \"Guide\", an AI placement mentor helping a student prepare for campus placements.\n\n")
	b.WriteString("Student:\n")
	b.WriteString(student)
	if len(history) > 0 {
		b.WriteString("\nPrevious conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}
	fmt.Fprintf(&b, "\nCurrent question: %q\n\n", message)
	b.WriteString("Use the student's name and goals to personalise advice. Give code examples for coding questions. ")
	b.WriteString("Encourage them using their streak if they sound demotivated. Be concise, professional and friendly.")
	return b.String()
}

// OptimizeResume tailors a resume document to a job description. Identity and
// education fields always come from the submitted resume.
func (s *PracticeService) OptimizeResume(ctx context.Context, profileID string, resume map[string]interface{}, jobDescription string) (map[string]interface{}, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if len(resume) == 0 || jobDescription == "" {
		return nil, apperrors.BadRequest("Missing resume data or job description")
	}
	if err := s.allow(ctx, profileID); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(resume)
	if err != nil {
		return nil, apperrors.BadRequest("Resume is not valid JSON")
	}
	text, err := s.complete(ctx, BuildResumePrompt(string(encoded), jobDescription), true)
	if err != nil {
		logger.Error().Err(err).Str("profile_id", profileID).Msg("Resume optimisation failed")
		return nil, err
	}

	optimized := map[string]interface{}{}
	if err := decodeValidated(text, resumeSchemaDoc, "resume", &optimized); err != nil {
		return nil, err
	}
	for _, field := range resumeIdentityFields {
		if v, ok := resume[field]; ok {
			optimized[field] = v
		} else {
			delete(optimized, field)
		}
	}
	return optimized, nil
}

func BuildResumePrompt(resumeJSON, jobDescription string) string {
	var b strings.Builder
	b.WriteString("You are an expert resume optimiser. Tailor the resume JSON below to the job description.\n\n")
	fmt.Fprintf(&b, "Job description:\n%q\n\nCurrent resume JSON:\n%s\n\n", jobDescription, resumeJSON)
	b.WriteString("1. Rewrite careerObjective around the job description's keywords.\n")
	b.WriteString("2. skills becomes an array of {\"category\":\"\",\"items\":\"Skill1, Skill2\"}, ordered by relevance.\n")
	b.WriteString("3. projects becomes an array of {\"name\":\"\",\"date\":\"\",\"points\":[\"\"]}. Rewrite existing points for the role, or suggest 2-3 relevant projects when there are none.\n")
	b.WriteString("4. Reorder certifications by relevance, or suggest 2-3 relevant ones when there are none.\n")
	b.WriteString("5. Keep fullName, email, phone, linkedin, github and education unchanged.\n\n")
	b.WriteString("Return only the updated resume as a JSON object.")
	return b.String()
}
