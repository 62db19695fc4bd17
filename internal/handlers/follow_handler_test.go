package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/notify"
	"github.com/mehedi90s/socialite/backend/internal/notify/notifytest"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type followTestEnv struct {
	handler    *FollowHandler
	followRepo repositories.FollowRepository
	store      *notifytest.Store
	transport  *notifytest.Transport
}

// newFollowTestEnv runs the follow flow against real repositories over an
// in-memory database, with the notification store and transport faked.
func newFollowTestEnv(t *testing.T) *followTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Follow{}, &models.FollowRequest{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	userRepo := repositories.NewPostgresUserRepository(db)
	for _, user := range []models.User{
		{ID: 1, Username: "alice", DisplayName: "Alice", Email: "alice@example.com"},
		{ID: 2, Username: "bob", DisplayName: "Bob", Email: "bob@example.com", IsPrivate: true},
		{ID: 3, Username: "carol", DisplayName: "Carol", Email: "carol@example.com"},
	} {
		u := user
		if err := userRepo.CreateUser(&u); err != nil {
			t.Fatalf("seeding user %s failed: %v", user.Username, err)
		}
	}

	store := notifytest.NewStore()
	transport := notifytest.NewTransport()
	followRepo := repositories.NewPostgresFollowRepository(db)
	svc := notify.NewService(store, notify.NewEmitter(transport, store, userRepo, nil))

	return &followTestEnv{
		handler:    NewFollowHandler(followRepo, userRepo, svc),
		followRepo: followRepo,
		store:      store,
		transport:  transport,
	}
}

func (env *followTestEnv) followRequest(t *testing.T, method string, userID uint, targetID, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	c, rec := authedContext(e, req, userID)
	c.SetParamNames("id")
	c.SetParamValues(targetID)

	switch method {
	case http.MethodPost:
		return rec, env.handler.FollowUser(c)
	case http.MethodDelete:
		return rec, env.handler.UnfollowUser(c)
	case http.MethodPut:
		return rec, env.handler.UpdateFollowRequestStatus(c)
	}
	t.Fatalf("unsupported method %s", method)
	return nil, nil
}

func TestFollowPublicUser(t *testing.T) {
	env := newFollowTestEnv(t)

	rec, err := env.followRequest(t, http.MethodPost, 3, "1", "")
	if err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	data := decodeEnvelope(t, rec)
	if got, ok := data["following"].(bool); !ok || !got {
		t.Errorf("expected following true, got %v", data)
	}

	following, err := env.followRepo.IsFollowing(3, 1)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !following {
		t.Error("follow edge should exist")
	}

	all := env.store.All()
	if len(all) != 1 || all[0].Type != models.NotificationFollow || all[0].RecipientID != 1 {
		t.Errorf("expected one follow notification for user 1, got %+v", all)
	}
	if all[0].Message != "Carol started following you" {
		t.Errorf("unexpected message %q", all[0].Message)
	}
}

func TestFollowPrivateUserFilesRequest(t *testing.T) {
	env := newFollowTestEnv(t)

	// Repeating the request supersedes, never stacks.
	for i := 0; i < 2; i++ {
		rec, err := env.followRequest(t, http.MethodPost, 1, "2", "")
		if err != nil {
			t.Fatalf("FollowUser call %d failed: %v", i+1, err)
		}
		data := decodeEnvelope(t, rec)
		if got, ok := data["requested"].(bool); !ok || !got {
			t.Errorf("expected requested true, got %v", data)
		}
	}

	requests, err := env.followRepo.GetPendingFollowRequests(2)
	if err != nil {
		t.Fatalf("GetPendingFollowRequests failed: %v", err)
	}
	if len(requests) != 1 {
		t.Errorf("expected exactly one pending request, got %d", len(requests))
	}

	all := env.store.All()
	if len(all) != 1 || all[0].Type != models.NotificationFollowRequest {
		t.Errorf("expected exactly one follow_request notification, got %+v", all)
	}

	following, err := env.followRepo.IsFollowing(1, 2)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Error("private target must not gain a follow edge before acceptance")
	}
}

func TestFollowValidation(t *testing.T) {
	env := newFollowTestEnv(t)

	tests := []struct {
		name     string
		userID   uint
		targetID string
		wantCode int
	}{
		{"self follow", 1, "1", http.StatusBadRequest},
		{"malformed target", 1, "abc", http.StatusBadRequest},
		{"unknown target", 1, "99", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.followRequest(t, http.MethodPost, tt.userID, tt.targetID, "")
			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != tt.wantCode {
				t.Errorf("expected %d, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestFollowAlreadyFollowing(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 3, "1", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	_, err := env.followRequest(t, http.MethodPost, 3, "1", "")
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestUnfollowRemovesNotification(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 3, "1", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	if _, err := env.followRequest(t, http.MethodDelete, 3, "1", ""); err != nil {
		t.Fatalf("UnfollowUser failed: %v", err)
	}

	following, err := env.followRepo.IsFollowing(3, 1)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Error("follow edge should be gone")
	}
	if got := len(env.store.All()); got != 0 {
		t.Errorf("follow notification should be removed, %d left", got)
	}
	if got := len(env.transport.EventsFor(notify.EventNotificationRemoved)); got != 1 {
		t.Errorf("expected 1 removal event, got %d", got)
	}
}

// failingFollowRepo overrides DeleteFollow to simulate a database failure.
type failingFollowRepo struct {
	repositories.FollowRepository
	deleteFollowErr error
}

func (f *failingFollowRepo) DeleteFollow(followerID, followingID uint) error {
	return f.deleteFollowErr
}

func TestUnfollowSurfacesDatabaseFailure(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 3, "1", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}

	env.handler.followRepository = &failingFollowRepo{
		FollowRepository: env.followRepo,
		deleteFollowErr:  errors.New("connection refused"),
	}

	_, err := env.followRequest(t, http.MethodDelete, 3, "1", "")
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusInternalServerError {
		t.Errorf("a database failure must surface as 500, got %v", err)
	}

	// The follow notification must still be there: nothing was unfollowed.
	if got := len(env.store.All()); got != 1 {
		t.Errorf("expected the follow notification untouched, got %d records", got)
	}
}

func TestWithdrawPendingFollowRequest(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 1, "2", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	if _, err := env.followRequest(t, http.MethodDelete, 1, "2", ""); err != nil {
		t.Fatalf("UnfollowUser failed: %v", err)
	}

	requests, err := env.followRepo.GetPendingFollowRequests(2)
	if err != nil {
		t.Fatalf("GetPendingFollowRequests failed: %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("pending request should be withdrawn, %d left", len(requests))
	}
	if got := len(env.store.All()); got != 0 {
		t.Errorf("follow_request notification should be removed, %d left", got)
	}
}

func pendingRequestID(t *testing.T, env *followTestEnv, targetID uint) uint {
	t.Helper()
	requests, err := env.followRepo.GetPendingFollowRequests(targetID)
	if err != nil || len(requests) != 1 {
		t.Fatalf("expected one pending request, got %d (err %v)", len(requests), err)
	}
	return requests[0].ID
}

func TestAcceptFollowRequest(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 1, "2", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	requestID := pendingRequestID(t, env, 2)

	rec, err := env.followRequest(t, http.MethodPut, 2, itoa(requestID), `{"status": "accepted"}`)
	if err != nil {
		t.Fatalf("UpdateFollowRequestStatus failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	following, err := env.followRepo.IsFollowing(1, 2)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !following {
		t.Error("accepting should create the follow edge")
	}

	all := env.store.All()
	if len(all) != 1 {
		t.Fatalf("expected only the follow_accept notification, got %+v", all)
	}
	if all[0].Type != models.NotificationFollowAccept || all[0].RecipientID != 1 {
		t.Errorf("expected follow_accept for the requester, got %+v", all[0])
	}
	if got := len(env.transport.EventsFor(notify.EventNotificationRemoved)); got != 1 {
		t.Errorf("expected the follow_request removal to be signalled, got %d events", got)
	}
}

func TestRejectFollowRequest(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 1, "2", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	requestID := pendingRequestID(t, env, 2)

	if _, err := env.followRequest(t, http.MethodPut, 2, itoa(requestID), `{"status": "rejected"}`); err != nil {
		t.Fatalf("UpdateFollowRequestStatus failed: %v", err)
	}

	following, err := env.followRepo.IsFollowing(1, 2)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Error("rejecting must not create a follow edge")
	}
	if got := len(env.store.All()); got != 0 {
		t.Errorf("rejection should leave no notifications, got %d", got)
	}
}

func TestUpdateFollowRequestGuards(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 1, "2", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}
	requestID := pendingRequestID(t, env, 2)

	// Only the target may act on the request.
	_, err := env.followRequest(t, http.MethodPut, 3, itoa(requestID), `{"status": "accepted"}`)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-target, got %v", err)
	}

	// Invalid status values are rejected up front.
	_, err = env.followRequest(t, http.MethodPut, 2, itoa(requestID), `{"status": "maybe"}`)
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %v", err)
	}

	// A handled request cannot be handled twice.
	if _, err := env.followRequest(t, http.MethodPut, 2, itoa(requestID), `{"status": "accepted"}`); err != nil {
		t.Fatalf("UpdateFollowRequestStatus failed: %v", err)
	}
	_, err = env.followRequest(t, http.MethodPut, 2, itoa(requestID), `{"status": "rejected"}`)
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409 for replayed decision, got %v", err)
	}
}

func TestGetPendingFollowRequestsEnriched(t *testing.T) {
	env := newFollowTestEnv(t)

	if _, err := env.followRequest(t, http.MethodPost, 1, "2", ""); err != nil {
		t.Fatalf("FollowUser failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/follow-requests", nil)
	c, rec := authedContext(e, req, 2)

	if err := env.handler.GetPendingFollowRequests(c); err != nil {
		t.Fatalf("GetPendingFollowRequests failed: %v", err)
	}
	data := decodeEnvelope(t, rec)
	requests := data["requests"].([]interface{})
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	requester := requests[0].(map[string]interface{})["requester"].(map[string]interface{})
	if requester["username"] != "alice" {
		t.Errorf("expected enriched requester alice, got %v", requester["username"])
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
