package memory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
)

var ErrDuplicateIdempotencyKey = errors.New("memory: idempotency key already recorded")

type idempotencyRepository struct {
	view
}

func idempotencyIndex(key, endpoint string) string {
	return endpoint + "\x00" + key
}

func (r *idempotencyRepository) GetByKey(_ context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	var out *entity.IdempotencyKey
	r.read(func(st *state) {
		if k, ok := st.idempotency[idempotencyIndex(key, endpoint)]; ok {
			out = &k
		}
	})
	return out, nil
}

func (r *idempotencyRepository) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	return r.write(func(st *state) error {
		idx := idempotencyIndex(ikey.Key, ikey.Endpoint)
		if _, exists := st.idempotency[idx]; exists {
			return ErrDuplicateIdempotencyKey
		}
		if ikey.ID == uuid.Nil {
			ikey.ID = uuid.New()
		}
		ikey.CreatedAt = r.s.stamp()
		st.idempotency[idx] = *ikey
		return nil
	})
}

func (r *idempotencyRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.write(func(st *state) error {
		for idx, k := range st.idempotency {
			if k.ExpiresAt.Before(now) {
				delete(st.idempotency, idx)
				n++
			}
		}
		return nil
	})
	return n, err
}
