package routing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/antinvestor/service-fileshare/service/business"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/types"
	"github.com/gorilla/mux"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/security"
	"github.com/pitabwire/util"
)

var errUnauthenticated = errors.New("caller is not authenticated")

// ApiServer bundles the collaborators the HTTP boundary needs. The boundary
// never authenticates credentials; it only extracts the already-verified
// caller identity and authorizes it against grant state.
type ApiServer struct {
	Service  *frame.Service
	Gateway  business.AccessGateway
	Shares   business.ShareService
	UserRepo repository.UserRepository
}

// NewRouter registers every resource-affecting route behind the access
// gateway.
func NewRouter(server *ApiServer) *mux.Router {

	router := mux.NewRouter().StrictSlash(true)

	addHandler(server.Service, router, server.UploadFile, "/files/upload", "UploadFile", http.MethodPost)
	addHandler(server.Service, router, server.MyFiles, "/files/my-files", "MyFiles", http.MethodGet)
	addHandler(server.Service, router, server.SharedWithMe, "/files/shared-with-me", "SharedWithMe", http.MethodGet)

	addHandler(server.Service, router, server.TokenFileInfo, "/files/share/{token}/info", "TokenFileInfo", http.MethodGet)
	addHandler(server.Service, router, server.TokenDownload, "/files/share/{token}/download", "TokenDownload", http.MethodGet)

	addHandler(server.Service, router, server.FileInfo, "/files/{id}/info", "FileInfo", http.MethodGet)
	addHandler(server.Service, router, server.DownloadFile, "/files/{id}/download", "DownloadFile", http.MethodGet)
	addHandler(server.Service, router, server.ShareWithUsers, "/files/{id}/share", "ShareWithUsers", http.MethodPost)
	addHandler(server.Service, router, server.CreateShareLink, "/files/{id}/share-link", "CreateShareLink", http.MethodPost)
	addHandler(server.Service, router, server.ListShares, "/files/{id}/shares", "ListShares", http.MethodGet)
	addHandler(server.Service, router, server.AuditLog, "/files/{id}/audit-log", "AuditLog", http.MethodGet)
	addHandler(server.Service, router, server.DeleteFile, "/files/{id}", "DeleteFile", http.MethodDelete)

	addHandler(server.Service, router, server.ListUsers, "/users", "ListUsers", http.MethodGet)

	return router
}

func addHandler(service *frame.Service, router *mux.Router,
	f func(w http.ResponseWriter, r *http.Request) error, path string, name string, method string) {

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		r = r.WithContext(frame.ToContext(r.Context(), service))

		err := f(w, r)
		if err != nil {
			writeError(w, r, err)
		}
	})

	router.Methods(method).
		Path(path).
		Name(name).
		Handler(handler)
}

// actorID extracts the authenticated caller identity placed in the request
// context by the authentication middleware.
func actorID(r *http.Request) (string, error) {
	claims := security.ClaimsFromContext(r.Context())
	if claims == nil {
		return "", errUnauthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errUnauthenticated
	}

	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses. Forbidden and
// NotShared are surfaced identically so unauthorized callers cannot probe
// for file existence; all link failures collapse into one message so the
// token path cannot be used as an enumeration oracle.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		_ = writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})

	case errors.Is(err, types.ErrForbidden), errors.Is(err, types.ErrNotShared):
		_ = writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied"})

	case errors.Is(err, types.ErrGrantExpired):
		_ = writeJSON(w, http.StatusForbidden, errorResponse{Error: types.ErrGrantExpired.Error()})

	case errors.Is(err, types.ErrInvalidOrExpiredLink):
		_ = writeJSON(w, http.StatusNotFound, errorResponse{Error: types.ErrInvalidOrExpiredLink.Error()})

	case errors.Is(err, types.ErrFileNotFound):
		_ = writeJSON(w, http.StatusNotFound, errorResponse{Error: types.ErrFileNotFound.Error()})

	case errors.Is(err, types.ErrInvalidGrantee),
		errors.Is(err, types.ErrSelfShare),
		errors.Is(err, types.ErrEmptyGranteeSet):
		_ = writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	default:
		util.Log(r.Context()).WithError(err).Error("request failed")
		_ = writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// parseExpiry accepts the optional expiresAt value sent by clients. The
// web client posts the bare datetime-local format; API clients use RFC3339.
func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return &t, nil
		}
	}

	return nil, errors.New("invalid parameter: expiresAt is not a recognised timestamp")
}
