package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/darmiel/vertrag/internal/api/presenter"
)

// handleListTasks responds with the list of tasks and their statuses.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, s.taskManager.ListStatus(), http.StatusOK)
}

type TriggerTaskResponse struct {
	Status string `json:"status"`
}

// handleTriggerTask starts a run of the named task in the background.
func (s *Server) handleTriggerTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.taskManager.Trigger(name); err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, TriggerTaskResponse{
		Status: "triggered",
	}, http.StatusAccepted)
}

// handleLogsForTask retrieves the logs of the current or last run of a task.
func (s *Server) handleLogsForTask(w http.ResponseWriter, r *http.Request) {
	logs, err := s.taskManager.GetLogs(chi.URLParam(r, "name"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, logs, http.StatusOK)
}
