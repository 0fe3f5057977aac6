package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/tapledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer(testutil.NewDB(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeBillingWrite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, RoleTreasurer, ObjectBilling, ActionWrite))
	assert.NoError(t, svc.Authorize(ctx, "Admin", ObjectBilling, ActionWrite))
	assert.ErrorIs(t, svc.Authorize(ctx, RoleMember, ObjectBilling, ActionWrite), ErrForbidden)
}

func TestAuthorizeInheritsMemberPermissions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, RoleTreasurer, ObjectOrder, ActionWrite))
	assert.NoError(t, svc.Authorize(ctx, RoleMember, ObjectStats, ActionRead))
	assert.ErrorIs(t, svc.Authorize(ctx, "guest", ObjectStats, ActionRead), ErrForbidden)
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, " ", ObjectBilling, ActionRead), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, RoleMember, "", ActionRead), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, RoleMember, ObjectBilling, ""), ErrInvalidAction)
}

func TestSeedPoliciesIsIdempotent(t *testing.T) {
	enforcer, err := NewEnforcer(testutil.NewDB(t))
	require.NoError(t, err)

	before, err := enforcer.GetPolicy()
	require.NoError(t, err)
	require.NoError(t, seedPolicies(enforcer))
	after, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}
