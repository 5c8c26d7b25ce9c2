package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuditLogAndList(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)

	owner := seedOwner(t, db, "acme-owner", "Acme")

	require.NoError(t, audit.Log(context.Background(), AuditEntry{
		UserID:   &owner.ID,
		Username: owner.Username,
		Action:   "invitation.send",
		Resource: "invitation:abc",
		Result:   "success",
		Metadata: map[string]any{"member_id": "m1"},
	}))
	require.NoError(t, audit.Log(context.Background(), AuditEntry{
		Action: "invitation.accept",
		Result: "success",
	}))

	logs, total, err := audit.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	filtered, total, err := audit.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{Action: "invitation.send"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Contains(t, filtered[0].Metadata, "member_id")
}

func TestAuditLogRequiresActionAndResult(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, audit.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, audit.Log(context.Background(), AuditEntry{Action: "x"}))
}

func TestAuditCleanupOlderThan(t *testing.T) {
	db := newTestDB(t)
	audit, err := NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, audit.Log(context.Background(), AuditEntry{Action: "old", Result: "success"}))
	require.NoError(t, db.Exec(
		"UPDATE audit_logs SET created_at = ? WHERE action = ?",
		time.Now().AddDate(0, 0, -120), "old").Error)
	require.NoError(t, audit.Log(context.Background(), AuditEntry{Action: "new", Result: "success"}))

	removed, err := audit.CleanupOlderThan(context.Background(), 90)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, total, err := audit.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}
