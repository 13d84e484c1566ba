package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/go-redis/redis/v8"
)

// userDoc is the stored document; unlike model.User it keeps the hash
type userDoc struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastLogin time.Time `json:"lastLogin"`
}

func toDoc(u *model.User) userDoc {
	return userDoc{
		ID: u.ID, Username: u.Username, Email: u.Email, Password: u.PasswordHash, Role: u.Role,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt, LastLogin: u.LastLogin,
	}
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID: d.ID, Username: d.Username, Email: d.Email, PasswordHash: d.Password, Role: d.Role,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt, LastLogin: d.LastLogin,
	}
}

type userRepository struct {
	rdb *redis.Client
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(rdb *redis.Client) repository.UserRepository {
	return &userRepository{rdb: rdb}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	id, err := r.rdb.Incr(ctx, keyUserSeq).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate user id: %w", err)
	}

	nameKey, mailKey := usernameKey(user.Username), emailKey(user.Email)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if ok, err := claimable(ctx, tx, nameKey, id); err != nil || !ok {
			return duplicateOr(err, "username")
		}
		if ok, err := claimable(ctx, tx, mailKey, id); err != nil || !ok {
			return duplicateOr(err, "email")
		}

		doc := toDoc(user)
		doc.ID = id
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, nameKey, id, 0)
			pipe.Set(ctx, mailKey, id, 0)
			pipe.Set(ctx, userKey(id), data, 0)
			return nil
		})
		return err
	}, nameKey, mailKey)
	if err != nil {
		return wrapTxErr(err, "create user")
	}

	user.ID = id
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := r.rdb.Get(ctx, usernameKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var doc userDoc
	if err := getJSON(ctx, r.rdb, userKey(id), &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *userRepository) Update(ctx context.Context, id int64, upd repository.UserUpdate) (*model.User, error) {
	watched := []string{userKey(id)}
	if upd.Username != nil {
		watched = append(watched, usernameKey(*upd.Username))
	}
	if upd.Email != nil {
		watched = append(watched, emailKey(*upd.Email))
	}

	var updated *model.User
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		var doc userDoc
		if err := getJSON(ctx, tx, userKey(id), &doc); err != nil {
			return err
		}
		user := doc.toModel()
		oldName, oldMail := user.Username, user.Email
		repository.ApplyUserUpdate(user, upd)

		if user.Username != oldName {
			if ok, err := claimable(ctx, tx, usernameKey(user.Username), id); err != nil || !ok {
				return duplicateOr(err, "username")
			}
		}
		if user.Email != oldMail {
			if ok, err := claimable(ctx, tx, emailKey(user.Email), id); err != nil || !ok {
				return duplicateOr(err, "email")
			}
		}

		user.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(toDoc(user))
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if user.Username != oldName {
				pipe.Del(ctx, usernameKey(oldName))
				pipe.Set(ctx, usernameKey(user.Username), id, 0)
			}
			if user.Email != oldMail {
				pipe.Del(ctx, emailKey(oldMail))
				pipe.Set(ctx, emailKey(user.Email), id, 0)
			}
			pipe.Set(ctx, userKey(id), data, 0)
			return nil
		})
		updated = user
		return err
	}, watched...)
	if err != nil {
		return nil, wrapTxErr(err, "update user")
	}
	return updated, nil
}

func (r *userRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		var doc userDoc
		if err := getJSON(ctx, tx, userKey(id), &doc); err != nil {
			return err
		}
		doc.Password = hash
		doc.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(id), data, 0)
			return nil
		})
		return err
	}, userKey(id))
	return wrapTxErr(err, "set password hash")
}

func duplicateOr(err error, field string) error {
	if err != nil {
		return err
	}
	return &repository.DuplicateKeyError{Field: field}
}
