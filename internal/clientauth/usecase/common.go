package usecase

import (
	"context"
	"errors"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// resolveApplication returns the application a request targets, or
// ErrNotApplicable when it does not use method. Unknown clients are reported
// as ErrInvalidClient.
func resolveApplication(
	ctx context.Context,
	apps ApplicationReader,
	req *clientAuthDomain.Request,
	method directoryDomain.AuthMethod,
) (*directoryDomain.Application, string, error) {
	if req.AssertionType != clientAuthDomain.AssertionTypeJWTBearer || req.Assertion == "" {
		return nil, "", clientAuthDomain.ErrNotApplicable
	}

	subject, err := clientAuthService.PeekClientID(req.Assertion)
	if err != nil {
		return nil, "", err
	}
	clientID := req.ClientID
	if clientID == "" {
		clientID = subject
	}
	if subject != clientID {
		return nil, clientID, apperrors.Wrap(clientAuthDomain.ErrInvalidClient, "assertion subject does not match client id")
	}

	app, err := apps.GetApplicationByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, clientID, apperrors.Wrap(clientAuthDomain.ErrInvalidClient, "unknown client")
		}
		return nil, clientID, err
	}
	if app.AuthMethod != method {
		return nil, clientID, clientAuthDomain.ErrNotApplicable
	}
	return app, clientID, nil
}
