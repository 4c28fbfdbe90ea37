// routes/api_routes.go
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/middleware"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/LilVoxy/coursework_market/websocket"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Лимиты страниц по умолчанию
const (
	userPageLimit    = 5
	productPageLimit = 10
	chatPageLimit    = 10

	maxBodySize = 1 << 20
)

// Banner ответ на GET /
const Banner = "Coursework market API"

// Deps зависимости обработчиков
type Deps struct {
	Users      *service.Users
	Products   *service.Products
	Chats      *service.Chats
	Auth       *middleware.Authenticator
	Hub        *websocket.Manager
	Health     func(ctx context.Context) error
	CORSOrigin string
}

// SetupRoutes настраивает все маршруты API и WebSocket.
// CORS, логирование и перехват паник оборачивают весь маршрутизатор, чтобы preflight
// доходил и до путей без OPTIONS.
func SetupRoutes(d Deps) http.Handler {
	router := mux.NewRouter()

	auth := d.Auth.RequireAuth
	selfOrAdmin := d.Auth.SelfOrAdmin().Middleware
	productOwner := d.Auth.ProductOwner(d.Products).Middleware
	chatParticipant := d.Auth.ChatParticipant(d.Chats).Middleware

	// API пользователей
	router.Handle("/user", middleware.CheckParams(userPageLimit)(ListUsersHandler(d.Users))).Methods(http.MethodGet)
	router.Handle("/user", RegisterHandler(d.Users)).Methods(http.MethodPost)
	router.Handle("/user/login", LoginHandler(d.Users)).Methods(http.MethodPost)
	router.Handle("/user/name/{name}", SearchUsersByNameHandler(d.Users)).Methods(http.MethodGet)
	router.Handle("/user/email/{email}", SearchUsersByEmailHandler(d.Users)).Methods(http.MethodGet)
	router.Handle("/user/{id}", GetUserHandler(d.Users)).Methods(http.MethodGet)
	router.Handle("/user/{id}", selfOrAdmin(UpdateUserHandler(d.Users))).Methods(http.MethodPut)
	router.Handle("/user/{id}", selfOrAdmin(DeleteUserHandler(d.Users))).Methods(http.MethodDelete)

	// API товаров
	router.Handle("/product", middleware.CheckParams(productPageLimit)(ListProductsHandler(d.Products))).Methods(http.MethodGet)
	router.Handle("/product", auth(CreateProductHandler(d.Products))).Methods(http.MethodPost)
	router.Handle("/product/name/{name}", SearchProductsByNameHandler(d.Products)).Methods(http.MethodGet)
	router.Handle("/product/{id}", GetProductHandler(d.Products)).Methods(http.MethodGet)
	router.Handle("/product/{id}", productOwner(UpdateProductHandler(d.Products))).Methods(http.MethodPut)
	router.Handle("/product/{id}", productOwner(DeleteProductHandler(d.Products))).Methods(http.MethodDelete)

	// API чатов и сообщений
	router.Handle("/chat", auth(middleware.CheckParams(chatPageLimit)(ListChatsHandler(d.Chats)))).Methods(http.MethodGet)
	router.Handle("/chat/{id}", chatParticipant(GetChatHandler())).Methods(http.MethodGet)
	router.Handle("/chat/{id}", auth(StartChatHandler(d.Chats))).Methods(http.MethodPost)
	router.Handle("/chat/{id}", chatParticipant(AppendMessageHandler(d.Chats))).Methods(http.MethodPut)
	router.Handle("/chat/{id}", chatParticipant(DeleteChatHandler(d.Chats))).Methods(http.MethodDelete)

	// WebSocket соединения
	if d.Hub != nil {
		router.HandleFunc("/ws", d.Hub.HandleConnections).Methods(http.MethodGet)
	}

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, Banner)
	}).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				log.Error().Err(err).Msg("❌ Хранилище недоступно")
				errs.WriteJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
				return
			}
		}
		errs.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Страница не найдена", http.StatusNotFound)
	})

	return middleware.CORS(d.CORSOrigin)(middleware.Logging(middleware.Recover(router)))
}

// decodeJSON читает тело запроса в dst. Неизвестные поля игнорируются.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.Validation("Слишком большое тело запроса", nil)
		}
		return errs.Validation("Некорректный JSON", nil)
	}
	return nil
}

// identity пользователь, установленный RequireAuth или охранником
func identity(r *http.Request) (*models.User, error) {
	u, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return nil, errs.Unauthorized("нет пользователя в контексте")
	}
	return u, nil
}

// page параметры страницы, разобранные CheckParams
func page(r *http.Request) models.Page {
	p, _ := middleware.PageFrom(r.Context())
	return p
}
