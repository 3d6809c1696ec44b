// Package directory wraps the AWS IdentityStore client behind the small
// surface the remove-user-from-group action consumes.
package directory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/rs/zerolog"
)

// API is the subset of identitystore.Client used by this package, declared as
// an interface so tests can hook in fakes.
type API interface {
	GetUserId(
		ctx context.Context,
		params *identitystore.GetUserIdInput,
		optFns ...func(*identitystore.Options),
	) (*identitystore.GetUserIdOutput, error)
	GetGroupMembershipId(
		ctx context.Context,
		params *identitystore.GetGroupMembershipIdInput,
		optFns ...func(*identitystore.Options),
	) (*identitystore.GetGroupMembershipIdOutput, error)
	DeleteGroupMembership(
		ctx context.Context,
		params *identitystore.DeleteGroupMembershipInput,
		optFns ...func(*identitystore.Options),
	) (*identitystore.DeleteGroupMembershipOutput, error)
}

// Client issues lookups and deletes against one identity store. It carries no
// cross-invocation state; callers construct one per invocation.
type Client struct {
	api             API
	identityStoreID string
	logger          *zerolog.Logger
}

// NewClient builds a client scoped to region with static credentials. The
// credential values are never logged.
func NewClient(region, accessKeyID, secretAccessKey, identityStoreID string, logger *zerolog.Logger) *Client {
	api := identitystore.New(identitystore.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
	})

	return NewClientWithAPI(api, identityStoreID, logger)
}

// NewClientWithAPI wires an existing API implementation; tests use it to
// inject fakes.
func NewClientWithAPI(api API, identityStoreID string, logger *zerolog.Logger) *Client {
	clientLogger := logger.With().
		Str("component", "directory-client").
		Str("identity_store_id", identityStoreID).
		Logger()

	return &Client{
		api:             api,
		identityStoreID: identityStoreID,
		logger:          &clientLogger,
	}
}
