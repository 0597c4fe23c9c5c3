package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/auth"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/schedule/store"
)

// =============================================================================
// PASSWORDS
// =============================================================================

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, auth.CheckPassword(hash, "correct horse battery"))
	assert.False(t, auth.CheckPassword(hash, "wrong password"))
	assert.False(t, auth.CheckPassword("", "anything"))
}

func TestTempPasswordIsUsableAndUnique(t *testing.T) {
	a, err := auth.TempPassword()
	require.NoError(t, err)
	b, err := auth.TempPassword()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

// =============================================================================
// TOKENS
// =============================================================================

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("test-secret"))
	staff := &schedule.Staff{ID: 42, Username: "alice", Role: schedule.RoleAdmin}

	token, err := issuer.Issue(staff)
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, schedule.StaffID(42), id.StaffID)
	assert.Equal(t, schedule.RoleAdmin, id.Role)
	assert.True(t, id.IsAdmin())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenIssuer([]byte("secret-a")).Issue(&schedule.Staff{ID: 1, Role: schedule.RoleStaff})
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer([]byte("secret-b")).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("test-secret"))

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "token %q", token)
	}
}

// =============================================================================
// LOGIN
// =============================================================================

func newAuthFixture(t *testing.T) (*auth.Service, *store.Memory, schedule.StaffID) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	alice := &schedule.Staff{
		Username:     "alice",
		FullName:     "Alice",
		Role:         schedule.RoleStaff,
		IsActive:     true,
		PasswordHash: hash,
	}
	require.NoError(t, mem.CreateStaff(ctx, alice))

	svc := auth.NewService(mem, auth.NewTokenIssuer([]byte("test-secret")))
	return svc, mem, alice.ID
}

func TestLogin(t *testing.T) {
	svc, _, aliceID := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, aliceID, result.Staff.ID)
	assert.False(t, result.MustChangePassword)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Unknown users get the same error as a wrong password.
	_, err = svc.Login(ctx, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, mem, aliceID := newAuthFixture(t)
	ctx := context.Background()

	staff, err := mem.GetStaff(ctx, aliceID)
	require.NoError(t, err)
	staff.IsActive = false
	require.NoError(t, mem.UpdateStaff(ctx, staff))

	_, err = svc.Login(ctx, "alice", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrAccountDisabled)
}

func TestLoginRejectsOpenPlaceholder(t *testing.T) {
	svc, mem, _ := newAuthFixture(t)
	ctx := context.Background()

	open := &schedule.Staff{
		Username: schedule.OpenShiftUsername,
		FullName: "Open Shift",
		Role:     schedule.RoleSystem,
		IsActive: true,
	}
	require.NoError(t, mem.CreateStaff(ctx, open))

	_, err := svc.Login(ctx, schedule.OpenShiftUsername, "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// =============================================================================
// CHANGE PASSWORD
// =============================================================================

func TestChangePassword(t *testing.T) {
	svc, mem, aliceID := newAuthFixture(t)
	ctx := context.Background()

	// Flag set, as for a fresh account.
	staff, err := mem.GetStaff(ctx, aliceID)
	require.NoError(t, err)
	staff.MustChangePassword = true
	require.NoError(t, mem.UpdateStaff(ctx, staff))

	require.NoError(t, svc.ChangePassword(ctx, aliceID, "hunter2hunter2", "a new password"))

	result, err := svc.Login(ctx, "alice", "a new password")
	require.NoError(t, err)
	assert.False(t, result.MustChangePassword, "change clears the flag")

	_, err = svc.Login(ctx, "alice", "hunter2hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePasswordGuards(t *testing.T) {
	svc, _, aliceID := newAuthFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, aliceID, "wrong current", "a new password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, aliceID, "hunter2hunter2", "short")
	assert.ErrorIs(t, err, schedule.ErrInvalidState)
}

// =============================================================================
// IDENTIFY
// =============================================================================

func TestIdentifyReflectsLiveRecord(t *testing.T) {
	svc, mem, aliceID := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	id, err := svc.Identify(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, aliceID, id.StaffID)
	assert.Equal(t, "alice", id.Username)

	// Deactivation takes effect on the next request, not at token expiry.
	staff, err := mem.GetStaff(ctx, aliceID)
	require.NoError(t, err)
	staff.IsActive = false
	require.NoError(t, mem.UpdateStaff(ctx, staff))

	_, err = svc.Identify(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrAccountDisabled)
}
