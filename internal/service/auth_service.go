package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/qs3c/sheetsync_server/config"
	"github.com/qs3c/sheetsync_server/internal/model"
	"github.com/qs3c/sheetsync_server/internal/model/dto"
	"github.com/qs3c/sheetsync_server/internal/pkg/jwt"
	"github.com/qs3c/sheetsync_server/internal/pkg/oauth"
)

const (
	providerGoogle   = "google"
	googleIssuer     = "https://accounts.google.com/"
	defaultLoginNext = "/dashboard"
)

var (
	ErrInvalidOAuthState = errors.New("登录状态无效或已过期")
	ErrEmailMissing      = errors.New("第三方账号没有提供邮箱")
	ErrOAuthFailed       = errors.New("第三方登录失败")
)

// GoogleClient Google OAuth 客户端
type GoogleClient interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetUser(ctx context.Context, token *oauth2.Token) (*oauth.GoogleUser, error)
}

type AuthService struct {
	profileService *ProfileService
	stateStore     *oauth.StateStore
	google         GoogleClient
	cfg            *config.Config
}

func NewAuthService(profileService *ProfileService, stateStore *oauth.StateStore, google GoogleClient, cfg *config.Config) *AuthService {
	return &AuthService{
		profileService: profileService,
		stateStore:     stateStore,
		google:         google,
		cfg:            cfg,
	}
}

// GetGoogleAuthURL 生成 state 并返回 Google 授权 URL
func (s *AuthService) GetGoogleAuthURL(ctx context.Context, next string) (string, error) {
	state, err := s.stateStore.GenerateState(ctx, &oauth.StateData{
		Provider: providerGoogle,
		Next:     sanitizeNext(next),
	})
	if err != nil {
		return "", err
	}
	return s.google.GetAuthURL(state), nil
}

// GoogleCallback 处理 Google OAuth 回调
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (*dto.LoginResponse, error) {
	data, err := s.stateStore.ValidateState(ctx, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) || errors.Is(err, oauth.ErrEmptyState) {
			return nil, ErrInvalidOAuthState
		}
		return nil, err
	}
	if data.Provider != providerGoogle {
		return nil, ErrInvalidOAuthState
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", ErrOAuthFailed, err)
	}

	googleUser, err := s.google.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: get google user: %v", ErrOAuthFailed, err)
	}
	if googleUser.Email == "" {
		return nil, ErrEmailMissing
	}

	identity := &dto.Identity{
		UserID: GoogleProfileID(googleUser.Sub),
		Email:  googleUser.Email,
	}
	if googleUser.Name != "" {
		identity.FullName = &googleUser.Name
	}
	if googleUser.Picture != "" {
		identity.AvatarURL = &googleUser.Picture
	}

	plan := model.PlanFree
	// 创建失败不阻塞登录，拉取资料时会再次创建
	profile, err := s.profileService.EnsureProfile(ctx, identity)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", identity.UserID).Msg("ensure profile on login failed")
	} else {
		plan = profile.Plan
	}

	jwtToken, err := jwt.GenerateToken(identity.UserID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours,
		jwt.WithEmail(identity.Email),
		jwt.WithMetadata(jwt.UserMetadata{
			FullName:  googleUser.Name,
			AvatarURL: googleUser.Picture,
		}),
	)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: jwtToken,
		User: &dto.UserInfo{
			ID:        identity.UserID,
			Email:     identity.Email,
			FullName:  identity.FullName,
			AvatarURL: identity.AvatarURL,
			Plan:      plan,
		},
		Next: data.Next,
	}, nil
}

// GoogleProfileID 由 Google subject 确定性地派生用户 ID
func GoogleProfileID(sub string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(googleIssuer+sub)).String()
}

// sanitizeNext 只允许站内相对路径
func sanitizeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return defaultLoginNext
	}
	return next
}
