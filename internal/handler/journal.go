package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mindtab/mindtab/internal/ctxkeys"
	"github.com/mindtab/mindtab/internal/model"
	"github.com/mindtab/mindtab/internal/service"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 200
	maxUploadMemory     = 10 << 20
)

type JournalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	limit := defaultJournalLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxJournalLimit)
	}

	journals, err := h.journalService.Journals(user.ID, q.Get("project"), limit)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}
	if journals == nil {
		journals = []*model.Journal{}
	}

	writeJSON(w, http.StatusOK, journals)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	journal, err := h.journalService.ByID(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.JournalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	journal, err := h.journalService.Create(user.ID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, journal)
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journalID := r.PathValue("id")

	var in service.JournalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	journal, err := h.journalService.Update(r.Context(), user.ID, journalID, in)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "journal_id", journalID)
		return
	}

	writeJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journalID := r.PathValue("id")

	err := h.journalService.Delete(r.Context(), user.ID, journalID)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "journal_id", journalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HTML returns the journal rendered from markdown, front matter split out.
func (h *JournalHandler) HTML(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	rendered, err := h.journalService.Render(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, rendered)
}

// UploadAttachment stores the multipart field "file" for the journal.
func (h *JournalHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journalID := r.PathValue("id")

	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close uploaded file", "error", closeErr)
		}
	}()

	attachment, err := h.journalService.AddAttachment(r.Context(), user.ID, journalID, file, header)
	if err != nil {
		writeServiceError(w, r, err, "user_id", user.ID, "journal_id", journalID)
		return
	}

	slog.Info("journal attachment uploaded", "user_id", user.ID, "journal_id", journalID, "file_id", attachment.ID, "size", attachment.Size)
	writeJSON(w, http.StatusCreated, attachment)
}
