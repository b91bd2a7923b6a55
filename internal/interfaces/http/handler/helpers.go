package handler

import (
	"github.com/licsync/backend/internal/domain/shared"
	"github.com/licsync/backend/internal/interfaces/http/dto"
)

// listFilter converts bound query parameters into a repository filter,
// keeping the defaults for anything omitted.
func listFilter(req dto.ListRequest) shared.Filter {
	f := shared.DefaultFilter()
	if req.Page > 0 {
		f.Page = req.Page
	}
	if req.PageSize > 0 {
		f.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		f.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		f.OrderDir = req.OrderDir
	}
	f.Search = req.Search
	return f
}
