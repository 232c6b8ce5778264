package service

import (
	"context"
	"fmt"
	"strings"

	"profilehub/internal/core/auth"
	"profilehub/internal/domain"
	"profilehub/pkg/utils"
)

// AccountService is the session collaborator: it turns credentials into
// signed tokens. Unknown emails auto-register on first login.
type AccountService struct {
	accounts domain.AccountRepository
	jwter    *auth.JWTer
}

func NewAccountService(accounts domain.AccountRepository, jwter *auth.JWTer) *AccountService {
	return &AccountService{accounts: accounts, jwter: jwter}
}

type LoginResult struct {
	Token   string          `json:"token"`
	IsNew   bool            `json:"isNew"`
	Account *domain.Account `json:"account"`
}

func (s *AccountService) Login(ctx context.Context, email, password, name string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if a == nil {
		// 自动注册
		if name == "" {
			if at := strings.IndexByte(email, '@'); at > 0 {
				name = email[:at]
			} else {
				name = "user"
			}
		}
		a = &domain.Account{
			ID:           utils.NewID(),
			Email:        email,
			Name:         name,
			PasswordHash: utils.HashPassword(password),
			Role:         "user",
		}
		if err := s.accounts.Create(ctx, a); err != nil {
			// 并发兜底：唯一冲突 → 再查一次，走校验分支
			if a2, e2 := s.accounts.FindByEmail(ctx, email); e2 == nil && a2 != nil {
				a = a2
			} else {
				return nil, fmt.Errorf("create account: %w", err)
			}
		} else {
			tok, err := s.jwter.Issue(a.ID, a.Role)
			if err != nil {
				return nil, fmt.Errorf("issue token: %w", err)
			}
			return &LoginResult{Token: tok, IsNew: true, Account: a}, nil
		}
	}

	if !utils.CheckPassword(password, a.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	tok, err := s.jwter.Issue(a.ID, a.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: tok, IsNew: false, Account: a}, nil
}
