package logs

import (
	"errors"

	"github.com/BLxcwg666/hooklog/internal/pkg/pagination"
)

// ListQuery selects one page of logs for one user, optionally narrowed to a
// single token.
type ListQuery struct {
	UserID  string
	TokenID *string
	Page    pagination.Query
}

var errLogNotFound = errors.New("log not found")
