package cognito

import "context"

// Client is the subset of the Cognito user pool API used as a credential store.
type Client interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error)
	Login(ctx context.Context, input LoginInput) error
}

// SignUpInput contains the parameters for signing up a new user.
type SignUpInput struct {
	Username string
	Password string
}

// SignUpOutput contains the result of a successful sign-up.
type SignUpOutput struct {
	UserSub   string
	Confirmed bool
}

// LoginInput contains the credentials checked by Login.
type LoginInput struct {
	Username string
	Password string
}
