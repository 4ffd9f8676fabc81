package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/services"
)

type TopicInput struct {
	Topic string `json:"topic" binding:"required"`
}

type JudgeRequest struct {
	Problem  services.CodingProblem `json:"problem"`
	Code     string                 `json:"code" binding:"required"`
	Language string                 `json:"language"`
}

type MentorChatInput struct {
	Message          string                 `json:"message" binding:"required"`
	PreviousMessages []services.ChatMessage `json:"previousMessages"`
}

type ResumeOptimizeInput struct {
	ResumeData     map[string]interface{} `json:"resumeData"`
	JobDescription string                 `json:"jobDescription"`
}

// GenerateQuiz always answers 200; the quiz carries fallback=true when the
// built-in questions were served.
func (h *Handler) GenerateQuiz(c *gin.Context) {
	var input TopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	quiz, err := h.Practice.GenerateQuiz(c.Request.Context(), profileID(c), input.Topic)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *Handler) GenerateProblem(c *gin.Context) {
	var input TopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	problem, err := h.Practice.GenerateProblem(c.Request.Context(), profileID(c), input.Topic)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, problem)
}

func (h *Handler) JudgeSolution(c *gin.Context) {
	var input JudgeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	verdict, err := h.Practice.JudgeSolution(c.Request.Context(), profileID(c), services.JudgeInput{
		Problem:  input.Problem,
		Code:     input.Code,
		Language: input.Language,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (h *Handler) MentorChat(c *gin.Context) {
	var input MentorChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := h.Practice.MentorReply(c.Request.Context(), profileID(c), input.Message, input.PreviousMessages)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) OptimizeResume(c *gin.Context) {
	var input ResumeOptimizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	resume, err := h.Practice.OptimizeResume(c.Request.Context(), profileID(c), input.ResumeData, input.JobDescription)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resume)
}
