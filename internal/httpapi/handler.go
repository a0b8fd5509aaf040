// Package httpapi is the HTTP surface: it decodes requests into the
// structs the services expect, invokes them, and translates results back
// to HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/palisade-db/palisade/internal/service"
	"github.com/palisade-db/palisade/internal/status"
)

// Handler wires the container and object services onto HTTP routes.
type Handler struct {
	containers *service.ContainerService
	objects    *service.ObjectService
	router     *mux.Router
}

// NewHandler builds the router and registers every route.
func NewHandler(containers *service.ContainerService, objects *service.ObjectService) *Handler {
	h := &Handler{containers: containers, objects: objects, router: mux.NewRouter()}
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.router.HandleFunc("/containers", h.handleCreateContainer).Methods(http.MethodPost, http.MethodPut)
	h.router.HandleFunc("/containers", h.handleRemoveContainer).Methods(http.MethodDelete)
	h.router.HandleFunc("/objects", h.handleInsertObject).Methods(http.MethodPost)
	h.router.HandleFunc("/objects", h.handleGetObject).Methods(http.MethodGet)
	h.router.HandleFunc("/objects", h.handleRemoveObject).Methods(http.MethodDelete)
	h.router.HandleFunc("/ping", h.handlePing).Methods(http.MethodGet)
	h.router.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	h.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

type containerRequest struct {
	ObjectContainerName string `json:"object_container_name"`
}

type objectRequest struct {
	ContainerName string `json:"container_name"`
	ObjectID      string `json:"object_id"`
	ObjectData    string `json:"object_data"`
}

type statusResponse struct {
	InternalStatusCode string `json:"internal_status_code"`
}

type objectResponse struct {
	InternalStatusCode string `json:"internal_status_code"`
	ObjectData         string `json:"object_data,omitempty"`
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeStatus(w http.ResponseWriter, code status.Code) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(statusResponse{InternalStatusCode: code.Hex()})
}

func writeObject(w http.ResponseWriter, code status.Code, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(objectResponse{InternalStatusCode: code.Hex(), ObjectData: string(data)})
}

func (h *Handler) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var req containerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, status.RequestDecodeFailed)
		return
	}
	writeStatus(w, h.containers.Create(r.Context(), req.ObjectContainerName))
}

func (h *Handler) handleRemoveContainer(w http.ResponseWriter, r *http.Request) {
	var req containerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, status.RequestDecodeFailed)
		return
	}
	writeStatus(w, h.containers.Remove(r.Context(), req.ObjectContainerName))
}

func (h *Handler) handleInsertObject(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, status.RequestDecodeFailed)
		return
	}
	writeStatus(w, h.objects.Insert(r.Context(), req.ContainerName, req.ObjectID, []byte(req.ObjectData)))
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, status.RequestDecodeFailed)
		return
	}
	data, code := h.objects.Get(r.Context(), req.ContainerName, req.ObjectID)
	writeObject(w, code, data)
}

func (h *Handler) handleRemoveObject(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, status.RequestDecodeFailed)
		return
	}
	writeStatus(w, h.objects.Remove(r.Context(), req.ContainerName, req.ObjectID))
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
