package api

import (
	"net/http"

	"github.com/taskflow/task-sync/internal/api/handlers"
	"github.com/taskflow/task-sync/internal/sync"
)

// SetupRouter exposes the sync engine as a JSON API. The rendering layer
// is expected to sit in front of these routes; no semantics live here.
func SetupRouter(engine *sync.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(engine)
	taskHandler := handlers.NewTaskHandler(engine)
	groupHandler := handlers.NewGroupHandler(engine)
	notificationHandler := handlers.NewNotificationHandler(engine)

	mux.HandleFunc("GET /session", sessionHandler.GetSession)
	mux.HandleFunc("POST /session/signup", sessionHandler.SignUp)
	mux.HandleFunc("POST /session/signin", sessionHandler.SignIn)
	mux.HandleFunc("GET /session/oauth/{provider}", sessionHandler.OAuthStart)
	mux.HandleFunc("POST /session/oauth/{provider}", sessionHandler.OAuthComplete)
	mux.HandleFunc("POST /session/signout", sessionHandler.SignOut)

	mux.HandleFunc("GET /tasks", taskHandler.ListTasks)
	mux.HandleFunc("POST /tasks", taskHandler.CreateTask)
	mux.HandleFunc("POST /tasks/{id}/toggle", taskHandler.ToggleTask)
	mux.HandleFunc("POST /tasks/{id}/status", taskHandler.SetStatus)
	mux.HandleFunc("PATCH /tasks/{id}", taskHandler.UpdateTask)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.DeleteTask)
	mux.HandleFunc("GET /tasks/{id}/comments", taskHandler.ListComments)
	mux.HandleFunc("POST /tasks/{id}/comments", taskHandler.CreateComment)

	mux.HandleFunc("GET /groups", groupHandler.ListGroups)
	mux.HandleFunc("POST /groups", groupHandler.CreateGroup)
	mux.HandleFunc("POST /groups/{id}/select", groupHandler.SelectGroup)
	mux.HandleFunc("POST /groups/leave", groupHandler.LeaveGroup)
	mux.HandleFunc("GET /groups/members", groupHandler.ListMembers)
	mux.HandleFunc("POST /groups/members", groupHandler.AddMember)
	mux.HandleFunc("DELETE /groups/members/{userId}", groupHandler.RemoveMember)
	mux.HandleFunc("GET /groups/activity", groupHandler.Activity)

	mux.HandleFunc("GET /notifications", notificationHandler.ListNotifications)
	mux.HandleFunc("POST /notifications/{id}/read", notificationHandler.MarkRead)
	mux.HandleFunc("POST /notifications/read-all", notificationHandler.MarkAllRead)

	return mux
}
