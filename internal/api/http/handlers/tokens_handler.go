package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/scan-token-service/internal/api/dto"
	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/service"
	apperrors "github.com/spec-kit/scan-token-service/pkg/util"
)

// TokensHandler exposes token issuance and verification.
type TokensHandler struct {
	tokens *service.TokenService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(tokens *service.TokenService) *TokensHandler {
	return &TokensHandler{tokens: tokens}
}

// Issue handles POST /tokens.
func (h *TokensHandler) Issue(c *fiber.Ctx) error {
	var req dto.IssueTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issued, err := h.tokens.Issue(c.UserContext(), auth.Claims(req.Claims))
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.IssueTokenResponse{
			Token:     issued.Token,
			IssuedAt:  issued.IssuedAt,
			ExpiresAt: issued.ExpiresAt,
		},
	})
}

// Verify handles POST /tokens/verify.
func (h *TokensHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	verified, err := h.tokens.Verify(c.UserContext(), req.Token)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": toVerifiedResponse(verified)})
}

func toVerifiedResponse(v *auth.Verified) *dto.VerifiedTokenResponse {
	if v == nil {
		return nil
	}
	resp := &dto.VerifiedTokenResponse{
		Header:    v.Header,
		Claims:    v.Claims,
		ExpiresAt: v.ExpiresAt.UTC(),
	}
	if !v.IssuedAt.IsZero() {
		iat := v.IssuedAt.UTC()
		resp.IssuedAt = &iat
	}
	return resp
}
