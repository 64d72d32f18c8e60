package ports

import (
	"context"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

// QueryAnswerer is the inbound contract for the question-answering pipeline.
type QueryAnswerer interface {
	Answer(ctx context.Context, question string) (*domain.AnswerResponse, error)
}
