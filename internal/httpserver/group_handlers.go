package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gossip/internal/service"
)

type groupCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

func handleCreateGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req groupCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		group, err := groupSvc.Create(r.Context(), req.Name, user.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, apiResponse{
			Success: true,
			Data:    group,
			Message: "Group created successfully",
		})
	}
}

func handleListGroups(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		groups, err := groupSvc.ListForUser(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, groups)
	}
}

type groupInfoRequest struct {
	GroupID int64 `json:"groupId" validate:"required"`
}

func handleGroupInfo(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupInfoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		group, err := groupSvc.GetByID(r.Context(), req.GroupID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, group)
	}
}

func handleGroupInfoByID(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDParam(w, r)
		if !ok {
			return
		}
		group, err := groupSvc.GetByID(r.Context(), groupID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, group)
	}
}

type groupJoinRequest struct {
	GroupID int64 `json:"groupId" validate:"required"`
}

func handleJoinGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		var req groupJoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := groupSvc.Join(r.Context(), req.GroupID, user.ID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "User Joined Group")
	}
}

type groupUpdateRequest struct {
	Name string `json:"name" validate:"required"`
}

func handleUpdateGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		groupID, ok := groupIDParam(w, r)
		if !ok {
			return
		}
		var req groupUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := groupSvc.Rename(r.Context(), groupID, user.ID, req.Name); err != nil {
			writeServiceError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Group Updated")
	}
}

func handleDeleteGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		groupID, ok := groupIDParam(w, r)
		if !ok {
			return
		}
		if err := groupSvc.Delete(r.Context(), groupID, user.ID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Group Deleted")
	}
}

type groupLeaveRequest struct {
	UserID int64 `json:"userId" validate:"required"`
}

func handleLeaveGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDParam(w, r)
		if !ok {
			return
		}
		var req groupLeaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := groupSvc.Leave(r.Context(), groupID, req.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "User Left Group")
	}
}

func groupIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid group id")
		return 0, false
	}
	return id, true
}
