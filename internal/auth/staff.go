package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Context keys for staff data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyAuthType = "auth_type"
)

type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeStaff AuthType = "staff"
)

// StaffUserID identifies staff requests in audit events. Unguarded
// requests use DefaultUserID.
const (
	DefaultUserID = uint(0)
	StaffUserID   = uint(1)
)

var ErrInvalidToken = errors.New("invalid staff token")

// HashToken creates a bcrypt hash of a staff token.
func HashToken(token string, cost int) (string, error) {
	if len(token) > 72 {
		return "", errors.New("token exceeds maximum length of 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckToken compares a token with its hash.
func CheckToken(token, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidToken
	}
	return err
}

// GenerateStaffToken creates a random token and its bcrypt hash.
func GenerateStaffToken(cost int) (token, hash string, err error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(b)
	hash, err = HashToken(token, cost)
	return token, hash, err
}

// StaffGuard authenticates staff requests by bearer token.
type StaffGuard struct {
	tokenHash string
	limiter   *RateLimiter
}

// NewStaffGuard creates a guard. An empty tokenHash disables the check;
// limiter may be nil.
func NewStaffGuard(tokenHash string, limiter *RateLimiter) *StaffGuard {
	return &StaffGuard{tokenHash: strings.TrimSpace(tokenHash), limiter: limiter}
}

// Enabled reports whether a token is required.
func (g *StaffGuard) Enabled() bool {
	return g.tokenHash != ""
}

// Handler returns the Gin middleware for staff routes.
func (g *StaffGuard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Enabled() {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		ip := c.ClientIP()
		if g.limiter != nil {
			if allowed, retryAfter := g.limiter.Allow(ip); !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many failed attempts",
					"retry_after": retryAfter.String(),
				})
				return
			}
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || CheckToken(token, g.tokenHash) != nil {
			if g.limiter != nil {
				g.limiter.RecordFailure(ip)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "staff token required",
			})
			return
		}

		if g.limiter != nil {
			g.limiter.RecordSuccess(ip)
		}
		c.Set(ContextKeyUserID, StaffUserID)
		c.Set(ContextKeyAuthType, AuthTypeStaff)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID retrieves the staff user ID from the context.
// Returns DefaultUserID (0) if the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
