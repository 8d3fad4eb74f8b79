package export

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/edutools/lms-export/internal"
	"github.com/edutools/lms-export/internal/transport"
)

// prepareTimeout bounds the record building and rendering phase of one
// request. Streaming the finished document is not bounded.
const prepareTimeout = 60 * time.Second

// Handler exposes the export processor over HTTP. Each request gets its own
// request-scoped Processor.
type Handler struct {
	*transport.BaseHandler
	Store    Store
	Defaults internal.ExportConfig
}

func NewHandler(baseHandler *transport.BaseHandler, store Store, defaults internal.ExportConfig) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Store:       store,
		Defaults:    defaults,
	}
}

// CreateExport runs one export end to end and streams the rendered document
// back as an attachment.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var dto ExportRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("CreateExport: malformed request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	opts, err := dto.ToOptions(h.Defaults)
	if err != nil {
		h.Logger.Warn("CreateExport: invalid export options", "error", err)
		h.WriteAppError(w, err)
		return
	}

	processor, err := NewProcessor(h.Store, h.Logger, opts)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), prepareTimeout)
	defer cancel()

	if err := processor.Prepare(ctx); err != nil {
		h.Logger.Error("CreateExport: prepare failed", "data", opts.Data, "error", err)
		h.WriteAppError(w, err)
		return
	}

	doc, err := processor.Document()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename()+`"`)
	if _, err := doc.WriteTo(w); err != nil {
		// headers are already out, all we can do is log
		h.Logger.Error("CreateExport: streaming document failed", "error", err)
	}
}

type RolesResponse struct {
	Roles []RoleOption `json:"roles"`
}

type RoleOption struct {
	Shortname string `json:"shortname"`
	Name      string `json:"name"`
}

// ListRoles returns the assignable role shortnames for the export form's
// role picker. Reserved system roles are omitted, matching what a user
// export can actually request.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.AllRoles(r.Context())
	if err != nil {
		h.Logger.Error("ListRoles: failed to fetch roles", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to fetch roles")
		return
	}

	resp := RolesResponse{Roles: make([]RoleOption, 0, len(roles))}
	for _, role := range roles {
		if reservedRoles[role.Shortname] {
			continue
		}
		resp.Roles = append(resp.Roles, RoleOption{Shortname: role.Shortname, Name: role.Name})
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
