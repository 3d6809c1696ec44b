// Package action implements the remove-user-from-group automation action and
// its invoke/error/halt lifecycle contract.
package action

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relayops/identity-actions/pkg/directory"
	"github.com/relayops/identity-actions/pkg/fault"
)

// Client is the directory capability the action depends on.
type Client interface {
	ResolveUserID(ctx context.Context, userName string) (string, error)
	RemoveMembership(ctx context.Context, groupID, userID string) (bool, error)
}

// ClientFactory builds a directory client for one invocation.
type ClientFactory func(region string, secrets Secrets, identityStoreID string) Client

// Action sequences user resolution and membership removal. It holds no
// per-invocation state; a fresh client is constructed on every Invoke.
type Action struct {
	logger    *zerolog.Logger
	newClient ClientFactory
}

// New builds the action with the real IdentityStore-backed client factory.
func New(logger *zerolog.Logger) *Action {
	actionLogger := logger.With().Str("component", "remove-user-from-group").Logger()

	return &Action{
		logger: &actionLogger,
		newClient: func(region string, secrets Secrets, identityStoreID string) Client {
			return directory.NewClient(region, secrets.AccessKeyID, secrets.SecretAccessKey, identityStoreID, &actionLogger)
		},
	}
}

// NewWithFactory builds the action with a custom client factory; tests use it
// to inject fakes.
func NewWithFactory(logger *zerolog.Logger, factory ClientFactory) *Action {
	actionLogger := logger.With().Str("component", "remove-user-from-group").Logger()

	return &Action{
		logger:    &actionLogger,
		newClient: factory,
	}
}

// Invoke validates params and credentials, resolves the user, and removes the
// group membership. Every failure it returns is a *fault.Error: classified
// errors from the directory propagate unchanged and anything else is wrapped
// fatal at this boundary.
func (a *Action) Invoke(ctx context.Context, params Params, secrets Secrets) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fault.Fatal("Unexpected error: %v", r)
			return
		}

		if err == nil {
			return
		}

		if _, ok := fault.FromError(err); !ok {
			err = fault.Fatal("Unexpected error: %s", err.Error())
		}
	}()

	fields := []struct {
		name  string
		value *string
	}{
		{"userName", &params.UserName},
		{"identityStoreId", &params.IdentityStoreID},
		{"groupId", &params.GroupID},
		{"region", &params.Region},
	}

	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			return nil, fault.Fatal("Invalid or missing %s parameter", field.name)
		}

		*field.value = trimmed
	}

	if secrets.AccessKeyID == "" || secrets.SecretAccessKey == "" {
		return nil, fault.Fatal("Missing required AWS credentials in secrets")
	}

	logger := a.logger.With().
		Str("user_name", params.UserName).
		Str("group_id", params.GroupID).
		Str("identity_store_id", params.IdentityStoreID).
		Logger()
	logger.Info().Msg("removing user from group")

	client := a.newClient(params.Region, secrets, params.IdentityStoreID)

	userID, err := client.ResolveUserID(ctx, params.UserName)
	if err != nil {
		return nil, err
	}

	removed, err := client.RemoveMembership(ctx, params.GroupID, userID)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("user_id", userID).Bool("removed", removed).Msg("action completed")

	return &Result{
		UserName:  params.UserName,
		GroupID:   params.GroupID,
		UserID:    userID,
		Removed:   removed,
		RemovedAt: time.Now().UTC(),
	}, nil
}

// Error re-raises a previously reported failure unchanged. Retry and backoff
// policy belong entirely to the calling framework.
func (a *Action) Error(_ context.Context, in error) error {
	a.logger.Error().Err(in).Msg("re-raising action error")
	return in
}

// Halt reports that the job was aborted. It performs no remote calls and
// never fails; missing identifying fields are reported as "unknown".
func (a *Action) Halt(_ context.Context, params HaltParams) HaltSummary {
	a.logger.Warn().Str("reason", params.Reason).Msg("action halted")

	return HaltSummary{
		UserName:         orUnknown(params.UserName),
		GroupID:          orUnknown(params.GroupID),
		Reason:           orUnknown(params.Reason),
		HaltedAt:         time.Now().UTC(),
		CleanupCompleted: true,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}

	return s
}
