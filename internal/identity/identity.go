// Package identity verifies identity assertions issued by an external
// provider (Firebase Authentication) for third-party sign-in.
package identity

import (
	"context"
	"strings"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/gofiber/fiber/v2/log"
	"github.com/jusastore/store-backend/internal/apperr"
	"google.golang.org/api/option"
)

var (
	ErrInvalidAssertion = apperr.Unauthenticated("Invalid identity token")
	ErrMissingEmail     = apperr.InvalidArgument("Identity token carries no email")
	ErrUnavailable      = apperr.New(apperr.KindUnexpected, "external sign-in is not configured")
)

// Identity is what the provider vouches for.
type Identity struct {
	UID   string
	Email string
	Name  string
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier builds an auth client from a project id and/or a
// service account file.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, apperr.Wrap(err, "init firebase app")
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "init firebase auth")
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Identity{}, ErrInvalidAssertion
	}

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Debugw("identity token rejected", "error", err)
		return Identity{}, ErrInvalidAssertion
	}

	id := Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if name, ok := tok.Claims["name"].(string); ok {
		id.Name = strings.TrimSpace(name)
	}
	if id.Email == "" {
		return Identity{}, ErrMissingEmail
	}
	return id, nil
}

// Disabled is used when no provider is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (Identity, error) {
	return Identity{}, ErrUnavailable
}
