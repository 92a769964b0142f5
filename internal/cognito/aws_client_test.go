package cognito

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

type fakeIdentityProvider struct {
	signUpFn       func(*cip.SignUpInput) (*cip.SignUpOutput, error)
	initiateAuthFn func(*cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error)
}

func (f *fakeIdentityProvider) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	return f.signUpFn(in)
}

func (f *fakeIdentityProvider) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	return f.initiateAuthFn(in)
}

func TestAWSClient_SignUp(t *testing.T) {
	var got *cip.SignUpInput
	c := &AWSClient{
		cip: &fakeIdentityProvider{signUpFn: func(in *cip.SignUpInput) (*cip.SignUpOutput, error) {
			got = in
			return &cip.SignUpOutput{UserSub: aws.String("sub-1"), UserConfirmed: true}, nil
		}},
		clientID:     "app-client-1",
		clientSecret: "s3cr3t",
	}

	out, err := c.SignUp(context.Background(), SignUpInput{Username: "alice", Password: "Str0ng!pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UserSub != "sub-1" || !out.Confirmed {
		t.Errorf("unexpected output: %+v", out)
	}
	if aws.ToString(got.Username) != "alice" || aws.ToString(got.ClientId) != "app-client-1" {
		t.Errorf("unexpected request: %+v", got)
	}
	if aws.ToString(got.SecretHash) != "zJ+oCEoXTjLwmdUpYpb4MZYTBzTibt+VH35IqTNGpq4=" {
		t.Errorf("secret hash = %q", aws.ToString(got.SecretHash))
	}
}

func TestAWSClient_SignUp_NoSecret(t *testing.T) {
	c := &AWSClient{
		cip: &fakeIdentityProvider{signUpFn: func(in *cip.SignUpInput) (*cip.SignUpOutput, error) {
			if in.SecretHash != nil {
				t.Errorf("expected no secret hash without a client secret")
			}
			return &cip.SignUpOutput{}, nil
		}},
		clientID: "app-client-1",
	}
	if _, err := c.SignUp(context.Background(), SignUpInput{Username: "alice", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAWSClient_Login(t *testing.T) {
	tests := []struct {
		name    string
		out     *cip.InitiateAuthOutput
		err     error
		wantErr error
	}{
		{
			name: "success",
			out:  &cip.InitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("x")}},
		},
		{
			name:    "pending challenge",
			out:     &cip.InitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired},
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "bad password",
			err:     &smithy.GenericAPIError{Code: "NotAuthorizedException", Message: "Incorrect username or password."},
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "throttled",
			err:     &smithy.GenericAPIError{Code: "TooManyRequestsException", Message: "slow down"},
			wantErr: ErrTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AWSClient{
				cip: &fakeIdentityProvider{initiateAuthFn: func(in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
					if in.AuthFlow != types.AuthFlowTypeUserPasswordAuth {
						t.Errorf("unexpected auth flow %s", in.AuthFlow)
					}
					if in.AuthParameters["USERNAME"] != "alice" {
						t.Errorf("unexpected USERNAME %q", in.AuthParameters["USERNAME"])
					}
					return tt.out, tt.err
				}},
				clientID: "app-client-1",
			}

			err := c.Login(context.Background(), LoginInput{Username: "alice", Password: "pw"})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMapAWSError_NonAPIError(t *testing.T) {
	base := errors.New("dial tcp: timeout")
	err := mapAWSError(base)
	if !errors.Is(err, base) {
		t.Errorf("expected transport error to stay wrapped, got %v", err)
	}
	if _, ok := LookupError(err); ok {
		t.Error("transport error should not map to a cognito sentinel")
	}
}

func TestAWSClient_SecretHash(t *testing.T) {
	tests := []struct {
		username string
		want     string
	}{
		{"alice", "zJ+oCEoXTjLwmdUpYpb4MZYTBzTibt+VH35IqTNGpq4="},
		{"bob", "q1hWgOUANpFsz69Pmq4RstPPqEOXcvvYnm1jSUv8fHk="},
	}
	c := &AWSClient{clientID: "app-client-1", clientSecret: "s3cr3t"}
	for _, tt := range tests {
		if got := aws.ToString(c.secretHash(tt.username)); got != tt.want {
			t.Errorf("secretHash(%q) = %q, want %q", tt.username, got, tt.want)
		}
	}
}

func TestMapAWSError_UnknownException(t *testing.T) {
	base := &smithy.GenericAPIError{Code: "InternalErrorException", Message: "boom"}
	err := mapAWSError(base)
	if !errors.Is(err, base) {
		t.Errorf("expected the API error to stay wrapped, got %v", err)
	}
	if _, ok := LookupError(err); ok {
		t.Error("unknown exception should not map to a sentinel")
	}
}
