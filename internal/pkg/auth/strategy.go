package auth

import "time"

// Strategy issues and verifies bearer tokens for the admin surface.
type Strategy interface {
	IssueToken(subject int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
