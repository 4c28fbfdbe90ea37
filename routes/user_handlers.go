// routes/user_handlers.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/gorilla/mux"
)

// ListUsersHandler GET /user
func ListUsersHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), page(r))
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, list)
	}
}

// GetUserHandler GET /user/{id}
func GetUserHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, u)
	}
}

// SearchUsersByNameHandler GET /user/name/{name}
func SearchUsersByNameHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		found, err := users.SearchByName(r.Context(), name)
		writeSearch(w, r, found, err, "user", name)
	}
}

// SearchUsersByEmailHandler GET /user/email/{email}
func SearchUsersByEmailHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := mux.Vars(r)["email"]
		found, err := users.SearchByEmail(r.Context(), email)
		writeSearch(w, r, found, err, "user", email)
	}
}

// RegisterHandler POST /user
func RegisterHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.NewUser
		if err := decodeJSON(w, r, &in); err != nil {
			errs.Write(w, r, err)
			return
		}
		u, err := users.Register(r.Context(), in)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusCreated, u)
	}
}

// LoginHandler POST /user/login
func LoginHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := decodeJSON(w, r, &creds); err != nil {
			// Неразборчивое тело не должно отличаться от неверного пароля
			errs.Write(w, r, errs.UnauthorizedWrap(err))
			return
		}
		session, err := users.Login(r.Context(), creds)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, session)
	}
}

// UpdateUserHandler PUT /user/{id}
func UpdateUserHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd models.UserUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			errs.Write(w, r, err)
			return
		}
		u, err := users.Update(r.Context(), mux.Vars(r)["id"], upd)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, u)
	}
}

// DeleteUserHandler DELETE /user/{id}
func DeleteUserHandler(users *service.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.Delete(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, u)
	}
}

// writeSearch пустой результат поиска отдается как 404 с []
func writeSearch[T any](w http.ResponseWriter, r *http.Request, found []T, err error, resource, query string) {
	if err == nil && len(found) == 0 {
		err = errs.NotFound(resource, query)
	}
	if err != nil {
		errs.WriteNotFoundList(w, r, err)
		return
	}
	errs.WriteJSON(w, http.StatusOK, found)
}
