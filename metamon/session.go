// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"context"
)

// Session holds a wallet identity and the token obtained for it. Sessions
// are not safe for concurrent use.
type Session struct {
	client *Client

	cred Credential

	token string
}

func NewSession(client *Client, cred *Credential) *Session {
	return &Session{
		client: client,
		cred:   *cred,
	}
}

func (s *Session) Name() string {
	return s.cred.DisplayName()
}

func (s *Session) Address() string {
	return s.cred.Address
}

// Token returns the session token, logging in first if necessary.
func (s *Session) Token(ctx context.Context) (string, error) {
	if len(s.token) != 0 {
		return s.token, nil
	}
	token, err := s.client.Login(ctx, &s.cred)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

// SellList fetches shop listings with the session token.
func (s *Session) SellList(ctx context.Context, q *SellListQuery) ([]*ShopOrder, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.SellList(ctx, token, s.cred.Address, q)
}
