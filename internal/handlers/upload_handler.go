package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
	"elev8ai/assessment-api/internal/services"
)

type UploadHandler struct {
	repo    repositories.CandidateRepository
	store   services.ArtifactStore
	kb      services.KnowledgeBase
	worker  services.Worker
	pollCfg services.PollConfig
	log     *zap.Logger
}

func NewUploadHandler(
	repo repositories.CandidateRepository,
	store services.ArtifactStore,
	kb services.KnowledgeBase,
	worker services.Worker,
	pollCfg services.PollConfig,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		repo:    repo,
		store:   store,
		kb:      kb,
		worker:  worker,
		pollCfg: pollCfg,
		log:     log,
	}
}

type uploadSubmission struct {
	content  []byte
	filename string
	metadata services.ArtifactMetadata
}

// HandleUpload handles POST /upload: persist the artifact and its metadata
// sidecar, trigger a knowledge-base sync, poll the sync to convergence, and
// on success hand the candidate to the evaluator without waiting for it.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	sub, err := h.parseSubmission(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return h.runWorkflow(c, sub)
}

func (h *UploadHandler) parseSubmission(c *fiber.Ctx) (*uploadSubmission, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse multipart form")
	}

	fileHeaders := form.File["file"]
	if len(fileHeaders) == 0 {
		return nil, fmt.Errorf("file is required")
	}

	email := formValue(form, "email")
	name := formValue(form, "name")
	toDesignation := formValue(form, "to_designation")
	fromDesignation := formValue(form, "from_designation")

	for field, value := range map[string]string{
		"email":            email,
		"name":             name,
		"to_designation":   toDesignation,
		"from_designation": fromDesignation,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", field)
		}
	}

	content, err := readFileHeader(fileHeaders[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file")
	}

	return &uploadSubmission{
		content:  content,
		filename: fileHeaders[0].Filename,
		metadata: services.ArtifactMetadata{
			Email:           email,
			Name:            name,
			ToDesignation:   toDesignation,
			FromDesignation: fromDesignation,
			Tags:            []string{"artifact"},
		},
	}, nil
}

func (h *UploadHandler) runWorkflow(c *fiber.Ctx, sub *uploadSubmission) error {
	ctx := c.Context()
	email := sub.metadata.Email

	if _, err := h.store.PutArtifact(ctx, email, sub.content, sub.metadata); err != nil {
		return h.failWorkflow(c, email, err)
	}

	// A failed sync submission is not fatal: a refresh already running may
	// cover this candidate's data, so polling proceeds either way.
	if err := h.kb.StartSync(ctx, email); err != nil {
		h.log.Warn("failed to start knowledge base sync, polling anyway",
			zap.String("email", email), zap.Error(err))
	}

	if err := h.repo.UpsertStatus(email, models.StatusInProgress, ""); err != nil {
		return h.failWorkflow(c, email, err)
	}

	result := services.PollStatus(ctx, h.pollCfg, func(ctx context.Context) string {
		status, err := h.kb.SyncStatus(ctx)
		if err != nil {
			h.log.Error("failed to check sync status", zap.Error(err))
			return services.IngestStatusFailed
		}
		return status
	})

	switch result.Outcome {
	case services.PollAvailable:
		// Fire-and-forget: the response does not wait for the evaluation.
		h.worker.Enqueue(models.EvaluationJob{
			Email:           email,
			Name:            sub.metadata.Name,
			ToDesignation:   sub.metadata.ToDesignation,
			FromDesignation: sub.metadata.FromDesignation,
		})

		if err := h.repo.UpsertStatus(email, models.StatusCompleted, ""); err != nil {
			return h.failWorkflow(c, email, err)
		}

		return c.JSON(models.UploadResponse{
			Message:          "File uploaded and knowledge base is available",
			Status:           result.LastStatus,
			EvaluatorInvoked: true,
		})

	case services.PollFailed:
		message := "Knowledge base data source failed to sync"
		if err := h.repo.UpsertStatus(email, models.StatusFailed, message); err != nil {
			return h.failWorkflow(c, email, err)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(models.UploadResponse{
			Message: message,
			Status:  result.LastStatus,
		})

	default:
		message := fmt.Sprintf("Knowledge base did not become available after %d attempts", h.pollCfg.MaxAttempts)
		if err := h.repo.UpsertStatus(email, models.StatusTimeout, message); err != nil {
			return h.failWorkflow(c, email, err)
		}

		return c.Status(fiber.StatusRequestTimeout).JSON(models.TimeoutResponse{
			Message:    message,
			LastStatus: result.LastStatus,
		})
	}
}

// failWorkflow converts any workflow error into a structured 500 body and
// best-effort marks the candidate FAILED. A secondary failure to record the
// status is reported alongside the primary error, never in place of it.
func (h *UploadHandler) failWorkflow(c *fiber.Ctx, email string, err error) error {
	h.log.Error("upload workflow failed", zap.String("email", email), zap.Error(err))

	body := fiber.Map{
		"message": "Error processing request",
		"error":   err.Error(),
		"email":   email,
	}

	if dbErr := h.repo.UpsertStatus(email, models.StatusFailed, err.Error()); dbErr != nil {
		h.log.Error("failed to record failure status", zap.String("email", email), zap.Error(dbErr))
		body["dbUpdateError"] = dbErr.Error()
	}

	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
