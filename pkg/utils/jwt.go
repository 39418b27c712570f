package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// SessionTokenType 会话令牌类型
const SessionTokenType = "session"

// JWTService signs and validates the session cookie. The cookie only carries the
// session id; the principal and bearer token stay on the server.
type JWTService struct {
	secretKey []byte
	ttl       time.Duration
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTService{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

// TTL 会话有效期
func (j *JWTService) TTL() time.Duration {
	return j.ttl
}

// GenerateSessionToken 为会话 id 签发令牌
func (j *JWTService) GenerateSessionToken(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(j.ttl)

	claims := &models.SessionClaims{
		SessionID: sessionID,
		Type:      SessionTokenType,
		Exp:       expiry.Unix(),
		Iat:       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	return tokenString, expiry, nil
}

// ValidateSessionToken 验证令牌并返回 claims
func (j *JWTService) ValidateSessionToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Type != SessionTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", SessionTokenType, claims.Type)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token carries no session id")
	}

	// 检查是否过期
	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return claims, nil
}
