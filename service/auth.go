package service

import (
	"context"
	"errors"
	"strings"

	"event_hub/constants"
	"event_hub/helper"
	"event_hub/model"
	"event_hub/repository"

	"go.uber.org/zap"
)

var registerRequiredFields = []string{"email", "password", "name"}

type AuthService struct {
	store  Store
	tokens *helper.TokenManager
	log    *zap.Logger
}

func NewAuthService(store Store, tokens *helper.TokenManager, log *zap.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, log: log}
}

// Register creates a user and returns it with a fresh access token.
func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (*model.User, string, error) {
	email := helper.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		return nil, "", validation(constants.MISSING_REQUIRED_FIELDS, map[string]any{
			"required": registerRequiredFields,
		})
	}
	if !helper.Valid(email) {
		return nil, "", validation(constants.INVALID_EMAIL_FORMAT, nil)
	}
	if len(in.Password) > helper.MaxPasswordBytes {
		return nil, "", validation(constants.PASSWORD_TOO_LONG, nil)
	}

	hash, err := helper.HashPassword(in.Password)
	if err != nil {
		return nil, "", internal(err)
	}
	user := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsOrganizer:  in.IsOrganizer,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.store.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			return newError(KindConflict, constants.EMAIL_ALREADY_EXISTS, nil)
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return s.store.CreateUser(ctx, &user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, "", newError(KindConflict, constants.EMAIL_ALREADY_EXISTS, nil)
	}
	if err != nil {
		return nil, "", wrap(err)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, "", internal(err)
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.Bool("is_organizer", user.IsOrganizer))
	return &user, token, nil
}

// Authenticate checks the credentials and returns the user with a fresh
// access token. Unknown email and wrong password fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, in model.LoginInput) (*model.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", validation(constants.MISSING_LOGIN_INPUT, nil)
	}

	user, err := s.store.GetUserByEmail(ctx, helper.NormalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", newError(KindUnauthorized, constants.INVALID_CREDENTIALS, nil)
	}
	if err != nil {
		return nil, "", internal(err)
	}
	if !helper.CheckPasswordHash(in.Password, user.PasswordHash) {
		return nil, "", newError(KindUnauthorized, constants.INVALID_CREDENTIALS, nil)
	}

	token, err := s.tokens.GenerateAccessToken(*user)
	if err != nil {
		return nil, "", internal(err)
	}
	return user, token, nil
}

// Identify returns the user a verified token refers to.
func (s *AuthService) Identify(ctx context.Context, userId uint) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(constants.USER_NOT_FOUND)
	}
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}

// wrap passes service errors through and turns anything else into an
// internal error.
func wrap(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	return internal(err)
}
