package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/vector"
)

// SearchResult is one retrieved chunk in a search response.
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Ordinal    int     `json:"ordinal"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

// SearchResponse is the body for GET /v1/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// AskRequest is the body for POST /v1/ask.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the body for POST /v1/ask.
type AskResponse struct {
	Answer    string         `json:"answer"`
	Sources   []string       `json:"sources"`
	SessionID string         `json:"session_id"`
	Results   []SearchResult `json:"results"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := s.config.DefaultTopK
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	results, err := s.retriever.RetrieveK(c.Context(), query, topK)
	if err != nil {
		return s.pipelineError(c, err)
	}

	return c.JSON(SearchResponse{
		Query:   query,
		Results: toSearchResults(results),
	})
}

// handleAsk handles POST /v1/ask requests. An empty session_id starts a new
// session; the response echoes the id to continue the conversation.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "question is required",
		})
	}

	sessionID, history := s.sessions.resolve(req.SessionID)

	answer, err := s.tutor.Ask(c.Context(), question, history)
	if err != nil {
		return s.pipelineError(c, err)
	}

	s.sessions.append(sessionID, question, answer.Text)

	return c.JSON(AskResponse{
		Answer:    answer.Text,
		Sources:   answer.Sources,
		SessionID: sessionID,
		Results:   toSearchResults(answer.Results),
	})
}

// pipelineError maps pipeline sentinels to HTTP statuses.
func (s *Server) pipelineError(c *fiber.Ctx, err error) error {
	s.logger.Error("request failed", "path", c.Path(), "error", err)

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, vector.ErrEmptyStore):
		status = fiber.StatusConflict
	case errors.Is(err, llm.ErrAuthentication):
		status = fiber.StatusBadGateway
	case errors.Is(err, llm.ErrRateLimited):
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func toSearchResults(results []vector.QueryResult) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			ChunkID:    r.ID,
			DocumentID: r.DocumentID,
			Ordinal:    r.Ordinal,
			Text:       r.Text,
			Score:      r.Score,
		})
	}
	return out
}
