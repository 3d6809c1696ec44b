package directory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/identitystore/types"

	"github.com/relayops/identity-actions/pkg/fault"
)

// RemoveMembership locates the membership record for (groupID, userID) and
// deletes it if present. It reports true when a record was deleted and false
// when no record existed at lookup or delete time; "not a member" is a
// successful no-op, not an error. At most one lookup and one delete are
// issued; retrying on a retryable failure is the caller's responsibility.
func (c *Client) RemoveMembership(ctx context.Context, groupID, userID string) (bool, error) {
	logger := c.logger.With().
		Str("method", "RemoveMembership").
		Str("group_id", groupID).
		Str("user_id", userID).
		Logger()
	logger.Debug().Msg("remove membership")

	resp, err := c.api.GetGroupMembershipId(ctx, &identitystore.GetGroupMembershipIdInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		GroupId:         aws.String(groupID),
		MemberId:        &types.MemberIdMemberUserId{Value: userID},
	})

	switch {
	case err == nil:
	case fault.IsNotFound(err):
		logger.Info().Msg("user is not a member of group, nothing to remove")
		return false, nil
	default:
		return false, fault.Classify(err, "Failed to get membership ID")
	}

	membershipID := aws.ToString(resp.MembershipId)

	_, err = c.api.DeleteGroupMembership(ctx, &identitystore.DeleteGroupMembershipInput{
		IdentityStoreId: aws.String(c.identityStoreID),
		MembershipId:    aws.String(membershipID),
	})

	switch {
	case err == nil:
	case fault.IsNotFound(err):
		// Deleted by a concurrent actor between lookup and delete.
		logger.Info().Str("membership_id", membershipID).Msg("membership already removed")
		return false, nil
	default:
		return false, fault.Classify(err, "Failed to remove user from group")
	}

	logger.Info().Str("membership_id", membershipID).Msg("membership removed")

	return true, nil
}
