package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"posapp/internal/domain/model"
	"posapp/internal/repository"
	"posapp/internal/usecase"
	"posapp/pkg/e"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

// token 形
type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User     `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	const op = "LoginUsecase.Execute"
	var out LoginOutput

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return out, e.Wrap(op, usecase.NewValidationError("username and password are required"))
	}

	//usernameでユーザー取得
	user, err := u.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return out, e.Wrap(op, usecase.ErrInvalidCredentials)
	}
	if err != nil {
		return out, e.Wrap(op, err)
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, e.Wrap(op, usecase.ErrInvalidCredentials)
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(*user, now)
	if err != nil {
		return out, e.Wrap(op, err)
	}

	out.User = *user
	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}
	return out, nil
}
