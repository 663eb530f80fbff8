package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
	"github.com/sangkips/retailpos/pkg/apperror"
)

// DateLayout is the calendar date format accepted in queries and bodies.
const DateLayout = "2006-01-02"

// paramUUID parses a path parameter, answering 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// batchKey reads /products/:id/batches/:location/:batch.
func batchKey(c *gin.Context) (entity.BatchKey, bool) {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return entity.BatchKey{}, false
	}
	return entity.BatchKey{
		ProductID: productID,
		Location:  c.Param("location"),
		BatchID:   c.Param("batch"),
	}, true
}

// parseDate reads a local calendar date. Empty input yields nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return nil, apperror.NewFieldError(field, "Must be a date in YYYY-MM-DD form")
	}
	return &t, nil
}

func cartLines(lines []request.CartLineRequest) []service.CartLine {
	out := make([]service.CartLine, 0, len(lines))
	for _, l := range lines {
		// binding already checked the uuid
		id, _ := uuid.Parse(l.ProductID)
		out = append(out, service.CartLine{ProductID: id, Quantity: l.Quantity})
	}
	return out
}
