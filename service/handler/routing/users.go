package routing

import (
	"net/http"

	"github.com/antinvestor/service-fileshare/service/types"
)

// ListUsers returns every account except the caller, for populating the
// share dialog. Identifying details are limited to username and email.
func (server *ApiServer) ListUsers(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	users, err := server.UserRepo.List(r.Context(), actor)
	if err != nil {
		return err
	}

	userList := make([]*types.UserRecord, len(users))
	for i, user := range users {
		userList[i] = user.ToApi()
	}

	return writeJSON(w, http.StatusOK, map[string]any{"users": userList})
}
