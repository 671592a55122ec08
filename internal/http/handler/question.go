package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docqa/internal/http/middleware"
	"docqa/internal/service"
)

const questionLocalKey = "ask_question"

type askRequest struct {
	DocumentID string `json:"document_id" form:"document_id"`
	Question   string `json:"question" form:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// ValidateQuestion rejects an ask-question body missing either field.
// It runs ahead of RequireAuth, so a bad body is a 400 whatever the credentials.
func ValidateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in askRequest
		if err := c.BodyParser(&in); err != nil || in.DocumentID == "" || in.Question == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", service.ErrQuestionRequired.Error())
		}
		c.Locals(questionLocalKey, in)
		return c.Next()
	}
}

// AskQuestion answers a question about one of the caller's documents.
// The provider's text is returned verbatim.
//
// @Summary  Ask a question about a document
// @Tags     questions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body askRequest true "document and question"
// @Success  200 {object} askResponse
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Router   /api/ask-question [post]
func AskQuestion(svc service.QuestionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, ok := c.Locals(questionLocalKey).(askRequest)
		if !ok {
			if err := c.BodyParser(&in); err != nil {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", service.ErrQuestionRequired.Error())
			}
		}
		documentID := in.DocumentID
		if documentID != "" {
			// No document can carry a malformed id.
			id, err := uuid.Parse(documentID)
			if err != nil {
				return service.ErrNotFound
			}
			documentID = id.String()
		}
		answer, err := svc.Ask(c.UserContext(), middleware.UserID(c), documentID, in.Question)
		if err != nil {
			return err
		}
		return c.JSON(askResponse{Answer: answer})
	}
}
