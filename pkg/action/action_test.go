package action_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/relayops/identity-actions/pkg/action"
	"github.com/relayops/identity-actions/pkg/fault"
)

type fakeClient struct {
	resolveUserID    func(userName string) (string, error)
	removeMembership func(groupID, userID string) (bool, error)

	resolveCalls int
	removeCalls  int
}

func (f *fakeClient) ResolveUserID(_ context.Context, userName string) (string, error) {
	f.resolveCalls++
	return f.resolveUserID(userName)
}

func (f *fakeClient) RemoveMembership(_ context.Context, groupID, userID string) (bool, error) {
	f.removeCalls++
	return f.removeMembership(groupID, userID)
}

func newAction(client *fakeClient) (*action.Action, *int) {
	logger := zerolog.Nop()
	factoryCalls := 0

	act := action.NewWithFactory(&logger, func(string, action.Secrets, string) action.Client {
		factoryCalls++
		return client
	})

	return act, &factoryCalls
}

func validParams() action.Params {
	return action.Params{
		UserName:        "rick",
		IdentityStoreID: "d-123",
		GroupID:         "G1",
		Region:          "us-east-1",
	}
}

func validSecrets() action.Secrets {
	return action.Secrets{AccessKeyID: "AKIA123", SecretAccessKey: "shhh"}
}

func happyClient() *fakeClient {
	return &fakeClient{
		resolveUserID:    func(string) (string, error) { return "U1", nil },
		removeMembership: func(string, string) (bool, error) { return true, nil },
	}
}

func TestInvokeRemovesMembership(t *testing.T) {
	assert := require.New(t)

	act, _ := newAction(happyClient())

	before := time.Now().UTC()
	result, err := act.Invoke(context.Background(), validParams(), validSecrets())
	assert.NoError(err)

	assert.Equal("rick", result.UserName)
	assert.Equal("G1", result.GroupID)
	assert.Equal("U1", result.UserID)
	assert.True(result.Removed)
	assert.False(result.RemovedAt.Before(before))
	assert.False(result.RemovedAt.After(time.Now().UTC()))
}

func TestInvokeTrimsParams(t *testing.T) {
	assert := require.New(t)

	client := &fakeClient{
		resolveUserID: func(userName string) (string, error) {
			assert.Equal("rick", userName)
			return "U1", nil
		},
		removeMembership: func(groupID, userID string) (bool, error) {
			assert.Equal("G1", groupID)
			assert.Equal("U1", userID)
			return true, nil
		},
	}
	act, _ := newAction(client)

	params := action.Params{
		UserName:        "  rick  ",
		IdentityStoreID: " d-123 ",
		GroupID:         " G1 ",
		Region:          " us-east-1 ",
	}

	result, err := act.Invoke(context.Background(), params, validSecrets())
	assert.NoError(err)
	assert.Equal("rick", result.UserName)
	assert.Equal("G1", result.GroupID)
}

func TestInvokeValidatesFieldsInOrder(t *testing.T) {
	cases := []struct {
		name   string
		params action.Params
		field  string
	}{
		{"missing user name", action.Params{IdentityStoreID: "d-123", GroupID: "G1", Region: "us-east-1"}, "userName"},
		{"missing identity store", action.Params{UserName: "rick", GroupID: "G1", Region: "us-east-1"}, "identityStoreId"},
		{"missing group", action.Params{UserName: "rick", IdentityStoreID: "d-123", Region: "us-east-1"}, "groupId"},
		{"missing region", action.Params{UserName: "rick", IdentityStoreID: "d-123", GroupID: "G1"}, "region"},
		{"blank user name", action.Params{UserName: "   ", IdentityStoreID: "d-123", GroupID: "G1", Region: "us-east-1"}, "userName"},
		{"all missing reports first field", action.Params{}, "userName"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			client := happyClient()
			act, factoryCalls := newAction(client)

			_, err := act.Invoke(context.Background(), tc.params, validSecrets())

			classified, ok := fault.FromError(err)
			assert.True(ok)
			assert.False(classified.Retryable)
			assert.Equal("Invalid or missing "+tc.field+" parameter", classified.Message)
			assert.Zero(*factoryCalls, "no client is constructed for invalid input")
		})
	}
}

func TestInvokeRequiresCredentials(t *testing.T) {
	cases := []struct {
		name    string
		secrets action.Secrets
	}{
		{"missing access key", action.Secrets{SecretAccessKey: "shhh"}},
		{"missing secret key", action.Secrets{AccessKeyID: "AKIA123"}},
		{"missing both", action.Secrets{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)

			act, factoryCalls := newAction(happyClient())

			_, err := act.Invoke(context.Background(), validParams(), tc.secrets)

			classified, ok := fault.FromError(err)
			assert.True(ok)
			assert.False(classified.Retryable)
			assert.Equal("Missing required AWS credentials in secrets", classified.Message)
			assert.Zero(*factoryCalls, "credential check happens before any remote call")
		})
	}
}

func TestInvokeNotAMember(t *testing.T) {
	assert := require.New(t)

	client := &fakeClient{
		resolveUserID:    func(string) (string, error) { return "U1", nil },
		removeMembership: func(string, string) (bool, error) { return false, nil },
	}
	act, _ := newAction(client)

	result, err := act.Invoke(context.Background(), validParams(), validSecrets())
	assert.NoError(err)
	assert.False(result.Removed)
}

func TestInvokeIsIdempotent(t *testing.T) {
	assert := require.New(t)

	member := true
	client := &fakeClient{
		resolveUserID: func(string) (string, error) { return "U1", nil },
		removeMembership: func(string, string) (bool, error) {
			if member {
				member = false
				return true, nil
			}
			return false, nil
		},
	}
	act, _ := newAction(client)

	first, err := act.Invoke(context.Background(), validParams(), validSecrets())
	assert.NoError(err)
	assert.True(first.Removed)

	second, err := act.Invoke(context.Background(), validParams(), validSecrets())
	assert.NoError(err)
	assert.False(second.Removed, "second removal reports removed=false, not an error")
}

func TestInvokePropagatesClassifiedErrors(t *testing.T) {
	assert := require.New(t)

	client := &fakeClient{
		resolveUserID: func(string) (string, error) {
			return "", fault.Retryable("Service temporarily unavailable: rate exceeded")
		},
	}
	act, _ := newAction(client)

	_, err := act.Invoke(context.Background(), validParams(), validSecrets())

	classified, ok := fault.FromError(err)
	assert.True(ok)
	assert.True(classified.Retryable)
	assert.Equal("Service temporarily unavailable: rate exceeded", classified.Message)
	assert.Zero(client.removeCalls, "removal is not attempted when resolution fails")
}

func TestInvokeWrapsUnclassifiedErrors(t *testing.T) {
	assert := require.New(t)

	client := &fakeClient{
		resolveUserID: func(string) (string, error) { return "", errors.New("wire exploded") },
	}
	act, _ := newAction(client)

	_, err := act.Invoke(context.Background(), validParams(), validSecrets())

	classified, ok := fault.FromError(err)
	assert.True(ok)
	assert.False(classified.Retryable)
	assert.Equal("Unexpected error: wire exploded", classified.Message)
}

func TestInvokeWrapsPanics(t *testing.T) {
	assert := require.New(t)

	logger := zerolog.Nop()
	act := action.NewWithFactory(&logger, func(string, action.Secrets, string) action.Client {
		panic("client construction blew up")
	})

	_, err := act.Invoke(context.Background(), validParams(), validSecrets())

	classified, ok := fault.FromError(err)
	assert.True(ok)
	assert.False(classified.Retryable)
	assert.Contains(classified.Message, "Unexpected error: client construction blew up")
}

func TestErrorIsPurePassthrough(t *testing.T) {
	assert := require.New(t)

	act, _ := newAction(happyClient())

	in := fault.Fatal("X")
	out := act.Error(context.Background(), in)
	assert.Same(in, out.(*fault.Error))
	assert.EqualError(out, "X")
}

func TestHaltSummary(t *testing.T) {
	assert := require.New(t)

	act, _ := newAction(happyClient())

	summary := act.Halt(context.Background(), action.HaltParams{Reason: "r"})
	assert.Equal("unknown", summary.UserName)
	assert.Equal("unknown", summary.GroupID)
	assert.Equal("r", summary.Reason)
	assert.True(summary.CleanupCompleted)
	assert.False(summary.HaltedAt.IsZero())
}

func TestHaltKeepsKnownFields(t *testing.T) {
	assert := require.New(t)

	act, _ := newAction(happyClient())

	summary := act.Halt(context.Background(), action.HaltParams{Reason: "timeout", UserName: "rick", GroupID: "G1"})
	assert.Equal("rick", summary.UserName)
	assert.Equal("G1", summary.GroupID)
	assert.Equal("timeout", summary.Reason)
	assert.True(summary.CleanupCompleted)
}
