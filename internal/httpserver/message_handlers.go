package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gossip/internal/service"
)

func handleDirectHistory(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		remoteID, err := strconv.ParseInt(chi.URLParam(r, "remoteUserID"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		msgs, err := msgSvc.HistoryBetween(r.Context(), userID, remoteID, 0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, msgs)
	}
}

func handleGroupHistory(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDParam(w, r)
		if !ok {
			return
		}
		msgs, err := msgSvc.GroupHistory(r.Context(), groupID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, msgs)
	}
}

type recentRequest struct {
	FromUserID int64 `json:"fromUserId" validate:"required"`
}

func handleRecentMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := msgSvc.Recent(r.Context(), req.FromUserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, entries)
	}
}
