package routing

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type shareRequest struct {
	UserIDs   []string `json:"userIds"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
}

type shareLinkRequest struct {
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// ShareWithUsers grants a set of users viewer access to the caller's file.
func (server *ApiServer) ShareWithUsers(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	var req shareRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return fmt.Errorf("invalid parameter: request body is not valid json")
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return err
	}

	result, err := server.Shares.ShareWithUsers(r.Context(), actor, mux.Vars(r)["id"], req.UserIDs, expiresAt)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, result)
}

// CreateShareLink mints a link token for the file, or returns the
// outstanding one when an active link already exists.
func (server *ApiServer) CreateShareLink(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	var req shareLinkRequest
	if r.Body != nil && r.ContentLength != 0 {
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			return fmt.Errorf("invalid parameter: request body is not valid json")
		}
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return err
	}

	token, err := server.Shares.CreateShareLink(r.Context(), actor, mux.Vars(r)["id"], expiresAt)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"shareToken": token})
}

func (server *ApiServer) ListShares(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	shareList, err := server.Shares.ListShares(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"shares": shareList})
}

func (server *ApiServer) AuditLog(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	logs, err := server.Gateway.GetAuditLog(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (server *ApiServer) TokenFileInfo(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	record, err := server.Gateway.GetInfoByToken(r.Context(), actor, mux.Vars(r)["token"])
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"file": record})
}

func (server *ApiServer) TokenDownload(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	result, err := server.Gateway.DownloadByToken(r.Context(), actor, mux.Vars(r)["token"])
	if err != nil {
		return err
	}
	defer result.Cleanup()

	return streamFile(w, r, result)
}
