package notifytest

import (
	"sync"

	"github.com/mehedi90s/socialite/backend/internal/models"
	"gorm.io/gorm"
)

// Users is an in-memory UserRepository keyed by user ID.
type Users struct {
	mu    sync.Mutex
	users map[uint]models.User
}

// NewUsers creates a Users fake seeded with the given users.
func NewUsers(seed ...models.User) *Users {
	u := &Users{users: make(map[uint]models.User)}
	for _, user := range seed {
		u.users[user.ID] = user
	}
	return u
}

func (u *Users) CreateUser(user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[user.ID] = *user
	return nil
}

func (u *Users) GetUserByID(id uint) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (u *Users) GetUserByUsername(username string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *Users) UpdateUser(user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[user.ID] = *user
	return nil
}
