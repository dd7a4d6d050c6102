package usecase

import (
	"context"
	"errors"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
)

type chain []Authenticator

// NewChain tries each authenticator in order. The first one that claims the
// request decides the outcome; if none does the chain returns ErrNotApplicable.
func NewChain(authenticators ...Authenticator) Authenticator {
	return chain(authenticators)
}

func (c chain) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	for _, authenticator := range c {
		client, err := authenticator.Authenticate(ctx, req)
		if errors.Is(err, clientAuthDomain.ErrNotApplicable) {
			continue
		}
		return client, err
	}
	return nil, clientAuthDomain.ErrNotApplicable
}
