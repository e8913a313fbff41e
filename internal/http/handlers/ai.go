package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorai-backend/internal/http/response"
	"github.com/yungbote/creatorai-backend/internal/platform/apierr"
	"github.com/yungbote/creatorai-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
	"github.com/yungbote/creatorai-backend/internal/services"
)

type AIHandler struct {
	log        *logger.Logger
	generation services.GenerationService
}

func NewAIHandler(log *logger.Logger, generation services.GenerationService) *AIHandler {
	return &AIHandler{log: log.With("handler", "AIHandler"), generation: generation}
}

// POST /api/ai/generate-article
// body: { "prompt": "...", "length": 800 }
func (h *AIHandler) GenerateArticle(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" form:"prompt"`
		Length int    `json:"length" form:"length"`
	}
	if !h.bind(c, &req) || !h.requirePrompt(c, req.Prompt) {
		return
	}
	content, err := h.generation.GenerateArticle(c.Request.Context(), h.caller(c), req.Prompt, req.Length)
	h.respond(c, content, err)
}

// POST /api/ai/generate-blog-title
// body: { "prompt": "..." }
func (h *AIHandler) GenerateBlogTitle(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" form:"prompt"`
	}
	if !h.bind(c, &req) || !h.requirePrompt(c, req.Prompt) {
		return
	}
	content, err := h.generation.GenerateBlogTitle(c.Request.Context(), h.caller(c), req.Prompt)
	h.respond(c, content, err)
}

// POST /api/ai/generate-image
// body: { "prompt": "...", "publish": false }
func (h *AIHandler) GenerateImage(c *gin.Context) {
	var req struct {
		Prompt  string `json:"prompt" form:"prompt"`
		Publish *bool  `json:"publish" form:"publish"`
	}
	if !h.bind(c, &req) || !h.requirePrompt(c, req.Prompt) {
		return
	}
	publish := req.Publish != nil && *req.Publish
	content, err := h.generation.GenerateImage(c.Request.Context(), h.caller(c), req.Prompt, publish)
	h.respond(c, content, err)
}

// POST /api/ai/remove-image-background
// multipart: image=<file>
func (h *AIHandler) RemoveImageBackground(c *gin.Context) {
	img, ok := h.formFile(c, "image")
	if !ok {
		return
	}
	content, err := h.generation.RemoveBackground(c.Request.Context(), h.caller(c), img)
	h.respond(c, content, err)
}

// POST /api/ai/remove-image-object
// multipart: image=<file>, object="..."
func (h *AIHandler) RemoveImageObject(c *gin.Context) {
	img, ok := h.formFile(c, "image")
	if !ok {
		return
	}
	content, err := h.generation.RemoveObject(c.Request.Context(), h.caller(c), img, c.PostForm("object"))
	h.respond(c, content, err)
}

// POST /api/ai/resume-review
// multipart: resume=<pdf>
func (h *AIHandler) ResumeReview(c *gin.Context) {
	resume, ok := h.formFile(c, "resume")
	if !ok {
		return
	}
	content, err := h.generation.ReviewResume(c.Request.Context(), h.caller(c), resume)
	h.respond(c, content, err)
}

func (h *AIHandler) caller(c *gin.Context) *ctxutil.RequestData {
	return ctxutil.GetRequestData(c.Request.Context())
}

func (h *AIHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		response.RespondError(c, apierr.Validation("Invalid request body."))
		return false
	}
	return true
}

func (h *AIHandler) requirePrompt(c *gin.Context, prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		response.RespondError(c, apierr.Validation("Prompt is required."))
		return false
	}
	return true
}

// formFile returns nil without failing when the field is absent, so the
// pipeline reports it after the quota check.
func (h *AIHandler) formFile(c *gin.Context, field string) (*services.Upload, bool) {
	fh, err := c.FormFile(field)
	switch {
	case err == nil:
		return uploadFromHeader(fh), true
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, true
	default:
		h.log.Warn("multipart parse failed", "field", field, "error", err)
		response.RespondError(c, apierr.Validation("Invalid upload."))
		return nil, false
	}
}

func uploadFromHeader(fh *multipart.FileHeader) *services.Upload {
	return &services.Upload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *AIHandler) respond(c *gin.Context, content string, err error) {
	if err != nil {
		kind := apierr.KindOf(err)
		if kind == apierr.KindUnexpected || kind == apierr.KindExternal {
			h.log.Error("request failed", "path", c.FullPath(), "kind", string(kind), "error", err)
		}
		_ = c.Error(err)
		response.RespondError(c, err)
		return
	}
	response.RespondContent(c, content)
}
