package api

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/restream/api/worker"
	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

const (
	sourceAPI = "api"

	// HeaderTranscriptHash carries the content hash of a reconstructed transcript.
	HeaderTranscriptHash = "X-Transcript-Hash"

	defaultListLimit = 50
	maxListLimit     = 1000
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReconstructRequest is the JSON form of a reconstruct request. A request
// with any other content type sends the raw transcript as its body.
type ReconstructRequest struct {
	Transcript string `json:"transcript"`
	Repair     *bool  `json:"repair,omitempty"`
}

// TranscriptSummary is one entry of a transcript listing.
type TranscriptSummary struct {
	Hash       string    `json:"hash"`
	Source     string    `json:"source"`
	Provider   string    `json:"provider"`
	ChunkCount int       `json:"chunkCount"`
	ErrorCount int       `json:"errorCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TranscriptList is the body of GET /v1/transcripts.
type TranscriptList struct {
	Count       int                 `json:"count"`
	Transcripts []TranscriptSummary `json:"transcripts"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleReconstruct reconstructs the posted transcript. Parse problems are
// part of a 200 response; only a malformed request is a 400.
func (s *Server) handleReconstruct(c *fiber.Ctx) error {
	var (
		transcript string
		repair     = s.config.Repair
	)

	if c.Is("json") {
		var req ReconstructRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
		}
		transcript = req.Transcript
		if req.Repair != nil {
			repair = *req.Repair
		}
	} else {
		transcript = string(c.Body())
	}

	if q := c.Query("repair"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid repair parameter"})
		}
		repair = v
	}

	result := reconstruct.Reconstruct(transcript,
		reconstruct.WithRepair(repair),
		reconstruct.WithLogger(s.logger),
	)

	if transcript != "" {
		t := storage.NewTranscript(sourceAPI, transcript, result)
		c.Set(HeaderTranscriptHash, t.Hash)

		if s.config.Pool != nil {
			s.config.Pool.Enqueue(worker.Job{Transcript: t})
		}
	}

	return c.JSON(result)
}

// handleListTranscripts lists stored transcripts, newest first.
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	limit := defaultListLimit
	if q := c.Query("limit"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid limit parameter"})
		}
		limit = min(v, maxListLimit)
	}

	transcripts, err := s.driver.List(c.Context(), storage.ListOptions{
		Provider: c.Query("provider"),
		Limit:    limit,
	})
	if err != nil {
		s.logger.Error("failed to list transcripts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list transcripts"})
	}

	summaries := make([]TranscriptSummary, 0, len(transcripts))
	for _, t := range transcripts {
		summaries = append(summaries, TranscriptSummary{
			Hash:       t.Hash,
			Source:     t.Source,
			Provider:   t.Provider,
			ChunkCount: t.ChunkCount,
			ErrorCount: t.ErrorCount,
			CreatedAt:  t.CreatedAt,
		})
	}

	return c.JSON(TranscriptList{
		Count:       len(summaries),
		Transcripts: summaries,
	})
}

// handleGetTranscript returns a stored transcript with its reconstruction.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "hash parameter required"})
	}

	t, err := s.driver.Get(c.Context(), hash)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "transcript not found"})
		}

		s.logger.Error("failed to get transcript", "hash", hash, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get transcript"})
	}

	return c.JSON(t)
}
