package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/scan-token-service/pkg/util"
)

// IssuerKeyHeader carries the plaintext issuer key on token issuance requests.
const IssuerKeyHeader = "X-Issuer-Key"

// IssuerMiddleware restricts token issuance to holders of the issuer key.
type IssuerMiddleware struct {
	keyHash string
}

// NewIssuerMiddleware constructs middleware for the given bcrypt hash.
func NewIssuerMiddleware(keyHash string) *IssuerMiddleware {
	return &IssuerMiddleware{keyHash: keyHash}
}

// Handle rejects requests without a matching issuer key.
func (m *IssuerMiddleware) Handle(c *fiber.Ctx) error {
	if m.keyHash == "" {
		return apperrors.NewForbidden("token issuance disabled")
	}
	key := c.Get(IssuerKeyHeader)
	if key == "" {
		return apperrors.NewUnauthorized("missing issuer key")
	}
	if err := CompareIssuerKey(m.keyHash, key); err != nil {
		return apperrors.NewUnauthorized("invalid issuer key")
	}
	return c.Next()
}
