package usecase

import (
	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/repository"
)

func lookupError(what string, err error) *Error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(what)
	}
	return internal("failed to load "+what, err)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
