package repositories

import (
	"github.com/mehedi90s/socialite/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow and follow-request data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowersCount(userID uint) (int64, error)
	GetFollowingCount(userID uint) (int64, error)

	CreateFollowRequest(request *models.FollowRequest) error
	GetFollowRequestByID(id uint) (*models.FollowRequest, error)
	GetPendingFollowRequest(requesterID, targetID uint) (*models.FollowRequest, error)
	GetPendingFollowRequests(targetID uint) ([]models.FollowRequest, error)
	UpdateFollowRequestStatus(id uint, status string) error
	DeletePendingFollowRequest(requesterID, targetID uint) error
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowersCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) CreateFollowRequest(request *models.FollowRequest) error {
	return r.db.Create(request).Error
}

func (r *PostgresFollowRepository) GetFollowRequestByID(id uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// GetPendingFollowRequest returns the pending request for the pair, or
// gorm.ErrRecordNotFound when none exists.
func (r *PostgresFollowRepository) GetPendingFollowRequest(requesterID, targetID uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	err := r.db.Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.FollowRequestPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *PostgresFollowRepository) GetPendingFollowRequests(targetID uint) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := r.db.Where("target_id = ? AND status = ?", targetID, models.FollowRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *PostgresFollowRepository) UpdateFollowRequestStatus(id uint, status string) error {
	res := r.db.Model(&models.FollowRequest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePendingFollowRequest removes a withdrawn request. Deleting a request
// that no longer exists is not an error.
func (r *PostgresFollowRepository) DeletePendingFollowRequest(requesterID, targetID uint) error {
	return r.db.Where("requester_id = ? AND target_id = ? AND status = ?", requesterID, targetID, models.FollowRequestPending).
		Delete(&models.FollowRequest{}).Error
}
