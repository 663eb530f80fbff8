package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/utils"
)

const (
	DefaultBillPrefix         = "INV"
	DefaultBillNumberAttempts = 5
)

// BillNumberGenerator proposes a human readable bill number. Proposals may
// collide; the billing service checks and retries.
type BillNumberGenerator interface {
	Next(at time.Time) (string, error)
}

// PrefixedBillNumbers produces <prefix>-<yyMMddHHmmss>-<4 hex>.
type PrefixedBillNumbers struct {
	Prefix string
}

func (g PrefixedBillNumbers) Next(at time.Time) (string, error) {
	prefix := g.Prefix
	if prefix == "" {
		prefix = DefaultBillPrefix
	}
	return utils.GenerateBillNumber(prefix, at)
}

// reserveBillNumber asks gen for numbers until one is not yet used, giving up
// after attempts tries.
func reserveBillNumber(ctx context.Context, bills repository.BillRepository, gen BillNumberGenerator, at time.Time, attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		number, err := gen.Next(at)
		if err != nil {
			return "", apperror.NewPersistenceError("generate bill number", err)
		}
		exists, err := bills.NumberExists(ctx, number)
		if err != nil {
			return "", storageErr("check bill number", err)
		}
		if !exists {
			return number, nil
		}
		log.Debug().Str("bill_number", number).Int("attempt", i+1).Msg("bill number taken, retrying")
	}
	return "", apperror.NewConflictError("Could not allocate a unique bill number")
}
