// routes/chat_handlers.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/gorilla/mux"
)

// ListChatsHandler GET /chat. Администратор получает все чаты.
func ListChatsHandler(chats *service.Chats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := identity(r)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		list, err := chats.List(r.Context(), viewer, page(r))
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, list)
	}
}

// GetChatHandler GET /chat/{id}. Чат уже загружен охранником.
func GetChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, ok := middleware.ChatFrom(r.Context())
		if !ok {
			errs.Write(w, r, errs.NotFound("chat", mux.Vars(r)["id"]))
			return
		}
		errs.WriteJSON(w, http.StatusOK, chat)
	}
}

// DeleteChatHandler DELETE /chat/{id}
func DeleteChatHandler(chats *service.Chats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chat, err := chats.Delete(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, chat)
	}
}
