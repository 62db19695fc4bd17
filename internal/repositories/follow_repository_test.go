package repositories

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/mehedi90s/socialite/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestFollowRepository(t *testing.T) *PostgresFollowRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Follow{}, &models.FollowRequest{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return NewPostgresFollowRepository(db)
}

func TestFollowLifecycle(t *testing.T) {
	repo := newTestFollowRepository(t)

	if err := repo.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2}); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}

	following, err := repo.IsFollowing(1, 2)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !following {
		t.Error("expected 1 to follow 2")
	}

	count, err := repo.GetFollowersCount(2)
	if err != nil {
		t.Fatalf("GetFollowersCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 follower, got %d", count)
	}

	if err := repo.DeleteFollow(1, 2); err != nil {
		t.Fatalf("DeleteFollow failed: %v", err)
	}
	following, err = repo.IsFollowing(1, 2)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Error("expected follow to be gone")
	}
}

func TestDeleteFollowNotFound(t *testing.T) {
	repo := newTestFollowRepository(t)
	if err := repo.DeleteFollow(1, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFollowRequestLifecycle(t *testing.T) {
	repo := newTestFollowRepository(t)

	request := &models.FollowRequest{RequesterID: 1, TargetID: 2, Status: models.FollowRequestPending}
	if err := repo.CreateFollowRequest(request); err != nil {
		t.Fatalf("CreateFollowRequest failed: %v", err)
	}
	if request.ID == 0 {
		t.Fatal("expected request to get an ID")
	}

	pending, err := repo.GetPendingFollowRequest(1, 2)
	if err != nil {
		t.Fatalf("GetPendingFollowRequest failed: %v", err)
	}
	if pending.ID != request.ID {
		t.Errorf("expected request %d, got %d", request.ID, pending.ID)
	}

	if err := repo.UpdateFollowRequestStatus(request.ID, models.FollowRequestAccepted); err != nil {
		t.Fatalf("UpdateFollowRequestStatus failed: %v", err)
	}

	// Accepted requests are no longer pending.
	if _, err := repo.GetPendingFollowRequest(1, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected no pending request after accept, got %v", err)
	}

	updated, err := repo.GetFollowRequestByID(request.ID)
	if err != nil {
		t.Fatalf("GetFollowRequestByID failed: %v", err)
	}
	if updated.Status != models.FollowRequestAccepted {
		t.Errorf("expected status accepted, got %q", updated.Status)
	}
}

func TestUpdateFollowRequestStatusNotFound(t *testing.T) {
	repo := newTestFollowRepository(t)
	if err := repo.UpdateFollowRequestStatus(99, models.FollowRequestAccepted); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGetPendingFollowRequestsScopedToTarget(t *testing.T) {
	repo := newTestFollowRepository(t)

	for _, r := range []*models.FollowRequest{
		{RequesterID: 1, TargetID: 2, Status: models.FollowRequestPending},
		{RequesterID: 3, TargetID: 2, Status: models.FollowRequestPending},
		{RequesterID: 1, TargetID: 4, Status: models.FollowRequestPending},
	} {
		if err := repo.CreateFollowRequest(r); err != nil {
			t.Fatalf("CreateFollowRequest failed: %v", err)
		}
	}

	requests, err := repo.GetPendingFollowRequests(2)
	if err != nil {
		t.Fatalf("GetPendingFollowRequests failed: %v", err)
	}
	if len(requests) != 2 {
		t.Errorf("expected 2 pending requests for target 2, got %d", len(requests))
	}
	for _, r := range requests {
		if r.TargetID != 2 {
			t.Errorf("request %d leaked from target %d", r.ID, r.TargetID)
		}
	}
}

func TestDeletePendingFollowRequestIsIdempotent(t *testing.T) {
	repo := newTestFollowRepository(t)

	if err := repo.DeletePendingFollowRequest(1, 2); err != nil {
		t.Errorf("deleting a missing request should not error: %v", err)
	}

	if err := repo.CreateFollowRequest(&models.FollowRequest{RequesterID: 1, TargetID: 2, Status: models.FollowRequestPending}); err != nil {
		t.Fatalf("CreateFollowRequest failed: %v", err)
	}
	if err := repo.DeletePendingFollowRequest(1, 2); err != nil {
		t.Fatalf("DeletePendingFollowRequest failed: %v", err)
	}
	if _, err := repo.GetPendingFollowRequest(1, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected request gone, got %v", err)
	}
}
