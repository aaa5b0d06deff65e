// internal/app/sessions.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/seguimed/notas/internal/models"
)

const (
	sessionKeyTpl = "session:%s" // session:${token}
	tokenPrefix   = "sk-notas-"
	timeFormat    = "2006-01-02 15:04:05"
)

// Sessions holds admin login sessions in Redis. One session per token, set
// on login against the identity provider, dropped on logout or TTL expiry.
type Sessions struct {
	enabled bool
	redis   *redis.Client
	ttl     time.Duration
	header  string
}

func NewSessions(config *Config) (*Sessions, error) {
	if !config.Server.EnableAuth {
		return &Sessions{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Sessions{
		enabled: true,
		redis:   client,
		ttl:     time.Duration(config.Auth.SessionTTLMinutes) * time.Minute,
		header:  config.Auth.SessionHeader,
	}, nil
}

func (s *Sessions) Enabled() bool {
	return s.enabled
}

func (s *Sessions) Header() string {
	return s.header
}

func (s *Sessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (s *Sessions) Issue(ctx context.Context, identity *models.Identity) (string, error) {
	if !s.enabled {
		return "", nil
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"account_id":       identity.AccountID,
		"email":            identity.Email,
		"display_name":     identity.DisplayName,
		"is_admin":         strconv.FormatBool(identity.IsAdmin),
		"created_dttm_utc": time.Now().UTC().Format(timeFormat),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func (s *Sessions) Validate(ctx context.Context, token string) (*models.Identity, error) {
	if !s.enabled {
		return nil, fmt.Errorf("sessions are disabled")
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	fields, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Debug.Printf("Redis error validating session: %v", err)
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("session not found")
	}

	isAdmin, _ := strconv.ParseBool(fields["is_admin"])
	return &models.Identity{
		AccountID:   fields["account_id"],
		Email:       fields["email"],
		DisplayName: fields["display_name"],
		IsAdmin:     isAdmin,
	}, nil
}

func (s *Sessions) Revoke(ctx context.Context, token string) error {
	if !s.enabled {
		return nil
	}
	key := fmt.Sprintf(sessionKeyTpl, token)
	return s.redis.Del(ctx, key).Err()
}
