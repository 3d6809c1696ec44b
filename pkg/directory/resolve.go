package directory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/document"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/types"

	"github.com/relayops/identity-actions/pkg/fault"
)

// userNameAttributePath is the unique attribute users are resolved by.
const userNameAttributePath = "userName"

// ResolveUserID looks up the durable user identifier for userName. The id is
// returned exactly as the directory gives it. A missing user is fatal; the
// condition will not resolve on its own.
func (c *Client) ResolveUserID(ctx context.Context, userName string) (string, error) {
	logger := c.logger.With().Str("method", "ResolveUserID").Str("user_name", userName).Logger()
	logger.Debug().Msg("resolve user id")

	resp, err := c.api.GetUserId(ctx, &identitystore.GetUserIdInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		AlternateIdentifier: &types.AlternateIdentifierMemberUniqueAttribute{
			Value: types.UniqueAttribute{
				AttributePath:  aws.String(userNameAttributePath),
				AttributeValue: document.NewLazyDocument(userName),
			},
		},
	})

	switch {
	case err == nil:
	case fault.IsNotFound(err):
		return "", fault.Fatal("User not found: %s", userName)
	default:
		return "", fault.Classify(err, fmt.Sprintf("Failed to get user ID for %s", userName))
	}

	userID := aws.ToString(resp.UserId)
	logger.Debug().Str("user_id", userID).Msg("user resolved")

	return userID, nil
}
