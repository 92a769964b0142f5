package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// identityProvider is the part of the SDK client AWSClient calls.
type identityProvider interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

// AWSClient implements Client using the AWS SDK v2.
type AWSClient struct {
	cip          identityProvider
	clientID     string
	clientSecret string
}

// NewAWSClient creates a new AWSClient for the given region and app client.
func NewAWSClient(ctx context.Context, region, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSClient{
		cip:          cip.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

// secretHash is Base64(HMAC_SHA256(secret, username+clientID)), required when
// the app client has a secret. It is nil otherwise.
func (c *AWSClient) secretHash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(c.clientSecret))
	mac.Write([]byte(username + c.clientID))
	return aws.String(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

func (c *AWSClient) SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error) {
	out, err := c.cip.SignUp(ctx, &cip.SignUpInput{
		ClientId:   &c.clientID,
		SecretHash: c.secretHash(input.Username),
		Username:   &input.Username,
		Password:   &input.Password,
	})
	if err != nil {
		return SignUpOutput{}, mapAWSError(err)
	}
	return SignUpOutput{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}, nil
}

// Login checks the credentials with USER_PASSWORD_AUTH. The pool's tokens are discarded.
func (c *AWSClient) Login(ctx context.Context, input LoginInput) error {
	authParams := map[string]string{
		"USERNAME": input.Username,
		"PASSWORD": input.Password,
	}
	if h := c.secretHash(input.Username); h != nil {
		authParams["SECRET_HASH"] = *h
	}

	out, err := c.cip.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       &c.clientID,
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: authParams,
	})
	if err != nil {
		return mapAWSError(err)
	}
	if out.AuthenticationResult == nil {
		// A challenge (new password, MFA) is pending; this client cannot answer it.
		return fmt.Errorf("challenge %s: %w", out.ChallengeName, ErrNotAuthorized)
	}
	return nil
}

var _ Client = (*AWSClient)(nil)
