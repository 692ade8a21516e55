package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const mePath = "/api/auth/me"

// RemoteProvider validates bearer tokens against the auth service
type RemoteProvider struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewRemoteProvider(baseURL string, timeout time.Duration) *RemoteProvider {
	return &RemoteProvider{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  util.GetLogger(),
	}
}

type meResponse struct {
	Success bool `json:"success"`
	Data    struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Role    string `json:"role"`
	} `json:"data"`
}

func (p *RemoteProvider) Authenticate(ctx context.Context, r *http.Request) (*Identity, error) {
	ctx, span := util.StartSpan(ctx, "RemoteProvider.Authenticate")
	defer span.End()

	header := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if !strings.HasPrefix(header, "Bearer ") || token == "" {
		return nil, apperr.Unauthenticated("Not authorized, no token")
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetAuthToken(token).
		Get(p.baseURL + mePath)
	if err != nil {
		util.RecordError(span, err)
		p.logger.Error("Auth service call failed", zap.Error(err))
		return nil, apperr.Transient("auth service unavailable", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	default:
		p.logger.Warn("Auth service returned unexpected status", zap.Int("status", resp.StatusCode()))
		return nil, apperr.Transient("auth service unavailable",
			fmt.Errorf("auth service returned status %d", resp.StatusCode()))
	}

	var me meResponse
	if err := json.Unmarshal(resp.Body(), &me); err != nil {
		return nil, apperr.Transient("auth service unavailable", fmt.Errorf("failed to decode identity: %w", err))
	}

	userID := me.Data.MongoID
	if userID == "" {
		userID = me.Data.ID
	}
	if userID == "" {
		return nil, apperr.Unauthenticated("Not authorized, token failed")
	}

	role := strings.ToLower(me.Data.Role)
	if role == "" {
		role = RoleUser
	}
	return &Identity{UserID: userID, Role: role}, nil
}
