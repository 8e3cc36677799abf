package routing

import (
	"fmt"
	"io"
	"net/http"

	"github.com/antinvestor/service-fileshare/service/business"
	"github.com/gorilla/mux"
	"github.com/pitabwire/util"
)

// UploadFile receives a multipart upload and stores it for the caller.
func (server *ApiServer) UploadFile(w http.ResponseWriter, r *http.Request) error {

	ctx := r.Context()

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	source, header, err := r.FormFile("file")
	if err != nil {
		return fmt.Errorf("invalid parameter: a file is required")
	}
	defer util.CloseAndLogOnError(ctx, source)

	record, err := server.Gateway.Upload(ctx, &business.UploadRequest{
		OwnerID:     actor,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        source,
	})
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, map[string]any{"file": record})
}

func (server *ApiServer) MyFiles(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	fileList, err := server.Gateway.ListOwned(r.Context(), actor)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"files": fileList})
}

func (server *ApiServer) SharedWithMe(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	fileList, err := server.Gateway.ListSharedWith(r.Context(), actor)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"files": fileList})
}

func (server *ApiServer) FileInfo(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	record, err := server.Gateway.GetInfo(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"file": record})
}

func (server *ApiServer) DownloadFile(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	result, err := server.Gateway.Download(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	defer result.Cleanup()

	return streamFile(w, r, result)
}

func (server *ApiServer) DeleteFile(w http.ResponseWriter, r *http.Request) error {

	actor, err := actorID(r)
	if err != nil {
		return err
	}

	err = server.Gateway.Delete(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{"message": "file deleted"})
}

// streamFile writes file content to the response. Audit has already been
// recorded by the gateway, so a copy failure here is logged rather than
// re-surfaced as an API error.
func streamFile(w http.ResponseWriter, r *http.Request, result *business.DownloadResult) error {

	contentType := result.File.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.OriginalFilename))

	_, err := io.Copy(w, result.Data)
	if err != nil {
		util.Log(r.Context()).WithError(err).
			WithField("file_id", result.File.ID).
			Warn("file stream interrupted")
	}

	return nil
}
