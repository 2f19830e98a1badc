package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/scan-token-service/internal/api/dto"
	"github.com/spec-kit/scan-token-service/internal/domain"
	"github.com/spec-kit/scan-token-service/internal/service"
	apperrors "github.com/spec-kit/scan-token-service/pkg/util"
)

const defaultHistoryLimit = 20

// ScansHandler accepts decoded barcodes from scanning clients.
type ScansHandler struct {
	scans *service.ScanService
}

// NewScansHandler constructs handler.
func NewScansHandler(scans *service.ScanService) *ScansHandler {
	return &ScansHandler{scans: scans}
}

// Submit handles POST /scans.
func (h *ScansHandler) Submit(c *fiber.Ctx) error {
	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Format == "" {
		return apperrors.NewValidationError("format required", nil)
	}

	result, err := h.scans.Scan(c.UserContext(), service.ScanInput{
		Format:   req.Format,
		RawValue: req.RawValue,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return mapServiceError(err)
	}

	resp := toScanResponse(result.Event)
	resp.Token = toVerifiedResponse(result.Verified)
	resp.Claims = nil
	return c.JSON(fiber.Map{"data": resp})
}

// History handles GET /scans/:deviceID.
func (h *ScansHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		return apperrors.NewValidationError("limit must be positive", map[string]any{"limit": limit})
	}

	scans, err := h.scans.History(c.UserContext(), c.Params("deviceID"), limit)
	if err != nil {
		return mapServiceError(err)
	}

	items := make([]dto.ScanResponse, 0, len(scans))
	for _, scan := range scans {
		items = append(items, toScanResponse(scan))
	}
	return c.JSON(fiber.Map{"data": items})
}

func toScanResponse(event domain.ScanEvent) dto.ScanResponse {
	return dto.ScanResponse{
		ID:        event.ID,
		DeviceID:  event.DeviceID,
		Format:    string(event.Format),
		Outcome:   string(event.Outcome),
		Reason:    event.Reason,
		Claims:    event.Claims,
		ScannedAt: event.ScannedAt,
	}
}
