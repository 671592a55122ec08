package service

import (
	"bytes"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docqa/internal/extractor"
	"docqa/internal/gemini"
)

var ErrQuestionRequired = errors.New("Document ID and question required")

var tracer = otel.Tracer("docqa/service")

// QuestionService answers a question about one of the caller's documents.
type QuestionService interface {
	// Ask loads the document, extracts its text and returns the model's answer verbatim.
	// Nothing is persisted.
	Ask(ctx context.Context, ownerID, documentID, question string) (string, error)
}

type questionService struct {
	docs     DocumentService
	extract  extractor.Extractor
	answerer gemini.Answerer
	log      logrus.FieldLogger
}

// NewQuestionService constructs a new QuestionService.
func NewQuestionService(docs DocumentService, ext extractor.Extractor, answerer gemini.Answerer, log logrus.FieldLogger) QuestionService {
	return &questionService{docs: docs, extract: ext, answerer: answerer, log: log}
}

func (s *questionService) Ask(ctx context.Context, ownerID, documentID, question string) (answer string, err error) {
	if documentID == "" || question == "" {
		return "", ErrQuestionRequired
	}

	ctx, span := tracer.Start(ctx, "question.ask")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("document.id", documentID))

	_, data, err := s.docs.Content(ctx, ownerID, documentID)
	if err != nil {
		return "", err
	}

	text, err := s.extract.Extract(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.Int("document.bytes", len(data)),
		attribute.Int("document.text_chars", len(text)),
	)

	answer, err = s.answerer.Answer(ctx, text, question)
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"document_id":  documentID,
		"text_chars":   len(text),
		"answer_chars": len(answer),
	}).Debug("question answered")
	return answer, nil
}
