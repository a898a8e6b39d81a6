package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/techhaven/pkg/errors"
)

type memRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*User)}
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.Email] = u
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memRepo) Update(context.Context, *User) error { return nil }

func init() {
	hashCost = bcrypt.MinCost
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", " Alice@Example.com ", "secret123", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.Password, "密码必须加密存储")
	assert.False(t, u.IsAdmin())

	logged, err := svc.Login(ctx, "ALICE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "不存在的邮箱与密码错误返回相同错误")
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Bob", "not-an-email", "secret123", RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	_, err = svc.Register(ctx, "Bob", "bob@example.com", "123", RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = svc.Register(ctx, "B", "bob@example.com", "secret123", RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)

	_, err = svc.Register(ctx, "Bob", "bob@example.com", "secret123", RoleAdmin)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Bob2", "BOB@example.com", "secret123", RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestNewUserDefaultsRole(t *testing.T) {
	u := NewUser("Carl", "carl@example.com", "hash", Role("root"))
	assert.Equal(t, RoleUser, u.Role)

	u.UpdateProfile("  Carl Jr ", "")
	assert.Equal(t, "Carl Jr", u.Name)
}
