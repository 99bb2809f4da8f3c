package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/ocr"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// LPRRequestDTO carries one image, base64 encoded, in any format the
// imaging package decodes.
type LPRRequestDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// LPRResponseDTO is the recognition outcome. DetectedPlate is empty and
// ErrorMessage set when no plate was accepted.
type LPRResponseDTO struct {
	RunID         string                `json:"run_id"`
	DetectedPlate string                `json:"detected_plate"`
	Format        plate.Format          `json:"format,omitempty"`
	Confidence    float64               `json:"confidence,omitempty"`
	Record        *pipeline.PlateRecord `json:"record,omitempty"`
	Candidates    int                   `json:"candidates"`
	Warnings      []string              `json:"warnings,omitempty"`
	ErrorMessage  string                `json:"error_message,omitempty"`
}

type LPRHandler struct {
	pipeline *pipeline.Pipeline
}

func NewLPRHandler(p *pipeline.Pipeline) *LPRHandler {
	return &LPRHandler{pipeline: p}
}

// POST /api/v1/lpr/process-image
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	var req LPRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	img, err := imaging.DecodeBase64(req.ImageBase64)
	if err != nil {
		log.Printf("LPRHandler: could not decode image: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image data", "details": err.Error()})
		return
	}

	res, err := h.pipeline.ProcessImage(c.Request.Context(), img)
	if err != nil {
		log.Printf("LPRHandler: pipeline failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "plate recognition failed", "details": err.Error()})
		return
	}

	resp := LPRResponseDTO{
		RunID:      res.RunID,
		Candidates: len(res.Candidates),
		Warnings:   res.Warnings,
	}
	if res.Record == nil {
		resp.ErrorMessage = "no plate recognized"
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.DetectedPlate = res.Record.Text
	resp.Format = res.Record.Format
	resp.Confidence = res.Record.Confidence
	resp.Record = res.Record
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/lpr/backends
func (h *LPRHandler) Backends(c *gin.Context) {
	r := h.pipeline.Recognizer()
	c.JSON(http.StatusOK, gin.H{
		"primary":   ocr.Describe(r.Primary),
		"secondary": ocr.Describe(r.Secondary),
	})
}
