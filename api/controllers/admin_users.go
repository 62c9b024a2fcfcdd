package controllers

import (
	"net/http"

	"github.com/shopit-dev/shopit-backend/api/responses"
	"github.com/shopit-dev/shopit-backend/internal/users"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/pagination"
)

type userListResponse struct {
	Users      []users.UserDTO `json:"users"`
	Pagination pagination.Page `json:"pagination"`
}

// AdminUsersList pages through every account, newest first.
func AdminUsersList(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user repository unavailable"))
			return
		}

		params := pagination.FromRequest(r)
		list, total, err := repo.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}

		dtos := make([]users.UserDTO, 0, len(list))
		for i := range list {
			dtos = append(dtos, *users.FromModel(&list[i]))
		}

		responses.WriteSuccess(w, userListResponse{Users: dtos, Pagination: pagination.NewPage(params, total)})
	}
}
