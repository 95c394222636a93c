package memory

import (
	"context"

	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	at access
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.at(true, func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				return domain.ErrUsernameExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.at(false, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.at(false, func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				break
			}
		}
		return nil
	})
	return out, err
}
