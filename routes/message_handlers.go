// routes/message_handlers.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/gorilla/mux"
)

// StartChatHandler POST /chat/{id}: {id} это ID товара.
// productId в теле необязателен, но если передан, должен совпадать с путем.
func StartChatHandler(chats *service.Chats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, err := identity(r)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		var req models.NewMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			errs.Write(w, r, err)
			return
		}

		productID := mux.Vars(r)["id"]
		if req.ProductID != "" && req.ProductID != productID {
			errs.Write(w, r, errs.Validation("Некорректные данные", map[string]string{"productId": "не совпадает с товаром в пути"}))
			return
		}

		chat, err := chats.StartWithMessage(r.Context(), sender, productID, req.NewMessage)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusCreated, chat)
	}
}

// AppendMessageHandler PUT /chat/{id}: новое сообщение в существующий чат
func AppendMessageHandler(chats *service.Chats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, err := identity(r)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		chat, ok := middleware.ChatFrom(r.Context())
		if !ok {
			errs.Write(w, r, errs.NotFound("chat", mux.Vars(r)["id"]))
			return
		}
		var req models.NewMessageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			errs.Write(w, r, err)
			return
		}

		updated, err := chats.Append(r.Context(), sender, chat, req.NewMessage)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, updated)
	}
}
