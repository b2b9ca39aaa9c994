package usecase

import (
	"context"
	"fmt"

	"github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/domain/repository"
	pkgAuth "github.com/packlab/packstore/internal/pkg/auth"
)

// adminSubject is the token subject for the single admin principal.
const adminSubject int64 = 1

// AdminUseCase guards the introspection surface behind password login and
// expiring bearer tokens.
type AdminUseCase struct {
	orders       repository.OrderRepository
	licenses     repository.LicenseRepository
	hasher       pkgAuth.PasswordHasher
	tokens       pkgAuth.Strategy
	passwordHash string
}

// NewAdminUseCase constructs AdminUseCase, hashing the configured password.
func NewAdminUseCase(orders repository.OrderRepository, licenses repository.LicenseRepository, hasher pkgAuth.PasswordHasher, tokens pkgAuth.Strategy, password string) (*AdminUseCase, error) {
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminUseCase{
		orders:       orders,
		licenses:     licenses,
		hasher:       hasher,
		tokens:       tokens,
		passwordHash: hash,
	}, nil
}

// Login validates the admin password and returns a session token.
func (u *AdminUseCase) Login(password string) (string, error) {
	if password == "" {
		return "", errors.ErrInvalidCredentials
	}
	if err := u.hasher.Compare(u.passwordHash, password); err != nil {
		return "", errors.ErrInvalidCredentials
	}
	return u.tokens.IssueToken(adminSubject)
}

// ParseToken validates an admin session token.
func (u *AdminUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Orders dumps the payment ledger.
func (u *AdminUseCase) Orders(ctx context.Context) ([]model.Order, error) {
	return u.orders.List(ctx)
}

// Licenses dumps the license registry.
func (u *AdminUseCase) Licenses(ctx context.Context) ([]model.License, error) {
	return u.licenses.List(ctx)
}
