package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/notify"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
	"gorm.io/gorm"
)

// FollowHandler handles follow, unfollow and follow-request HTTP requests.
// Follows to private accounts go through a pending request; every transition
// drives the notification lifecycle (create, supersede, remove).
type FollowHandler struct {
	followRepository    repositories.FollowRepository
	userRepository      repositories.UserRepository
	notificationService *notify.Service
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notificationService *notify.Service) *FollowHandler {
	return &FollowHandler{
		followRepository:    followRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/follow-requests", h.GetPendingFollowRequests)
	g.PUT("/follow-requests/:id", h.UpdateFollowRequestStatus)
}

// FollowUser follows a public user directly, or files a follow request for a
// private one. A repeated request to the same private user supersedes the
// earlier pending request instead of stacking.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if currentUserID == uint(targetID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	target, err := h.userRepository.GetUserByID(uint(targetID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing, err := h.followRepository.IsFollowing(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	currentUser, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if target.IsPrivate {
		// Supersede any earlier pending request so exactly one survives.
		if err := h.followRepository.DeletePendingFollowRequest(currentUserID, uint(targetID)); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		request := &models.FollowRequest{
			RequesterID: currentUserID,
			TargetID:    uint(targetID),
			Status:      models.FollowRequestPending,
		}
		if err := h.followRepository.CreateFollowRequest(request); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		// Best-effort: the request stands even if notification creation fails.
		h.notificationService.NotifyFollowRequest(c.Request().Context(), currentUser, uint(targetID))

		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": true}})
	}

	follow := &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: uint(targetID),
	}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notificationService.NotifyFollow(c.Request().Context(), currentUser, uint(targetID))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user, or withdraws a pending follow request. Both
// paths remove the corresponding notification from the target's clients.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()

	switch err := h.followRepository.DeleteFollow(currentUserID, uint(targetID)); {
	case err == nil:
		// Unfollow toggles the earlier follow notification away rather than
		// leaving a stale entry.
		if err := h.notificationService.Remove(ctx, uint(targetID), currentUserID, models.NotificationFollow); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// No follow row: treat as withdrawing a pending follow request.
	if err := h.followRepository.DeletePendingFollowRequest(currentUserID, uint(targetID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.notificationService.Remove(ctx, uint(targetID), currentUserID, models.NotificationFollowRequest); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// EnrichedFollowRequest includes requester info
type EnrichedFollowRequest struct {
	models.FollowRequest
	Requester models.UserCompact `json:"requester"`
}

// GetPendingFollowRequests retrieves pending follow requests for the authenticated user
func (h *FollowHandler) GetPendingFollowRequests(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requests, err := h.followRepository.GetPendingFollowRequests(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]EnrichedFollowRequest, len(requests))
	for i, request := range requests {
		enriched[i] = EnrichedFollowRequest{FollowRequest: request}
		if requester, err := h.userRepository.GetUserByID(request.RequesterID); err == nil {
			enriched[i].Requester = requester.ToCompact()
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requests": enriched}})
}

// UpdateFollowRequestStatus accepts or rejects a follow request. Either way
// the follow_request notification is deleted and a removal signal goes out;
// accepting additionally creates the follow edge and notifies the requester.
func (h *FollowHandler) UpdateFollowRequestStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	var req models.UpdateFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	followRequest, err := h.followRepository.GetFollowRequestByID(uint(requestID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Ensure the authenticated user is the target of the request
	if followRequest.TargetID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this follow request")
	}
	if followRequest.Status != models.FollowRequestPending {
		return echo.NewHTTPError(http.StatusConflict, "Follow request already handled")
	}

	if err := h.followRepository.UpdateFollowRequestStatus(uint(requestID), req.Status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()

	// Accept and reject both clear the follow_request notification from the
	// target's clients.
	if err := h.notificationService.Remove(ctx, currentUserID, followRequest.RequesterID, models.NotificationFollowRequest); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Status == models.FollowRequestAccepted {
		follow := &models.Follow{
			FollowerID:  followRequest.RequesterID,
			FollowingID: currentUserID,
		}
		if err := h.followRepository.CreateFollow(follow); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if currentUser, err := h.userRepository.GetUserByID(currentUserID); err == nil {
			h.notificationService.NotifyFollowAccept(ctx, currentUser, followRequest.RequesterID)
		}
	}

	followRequest.Status = req.Status
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": followRequest})
}
