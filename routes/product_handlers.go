// routes/product_handlers.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/coursework_market/errs"
	"github.com/LilVoxy/coursework_market/models"
	"github.com/LilVoxy/coursework_market/service"
	"github.com/gorilla/mux"
)

// ListProductsHandler GET /product
func ListProductsHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := products.List(r.Context(), page(r))
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, list)
	}
}

// GetProductHandler GET /product/{id}
func GetProductHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := products.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, p)
	}
}

// SearchProductsByNameHandler GET /product/name/{name}
func SearchProductsByNameHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		found, err := products.SearchByName(r.Context(), name)
		writeSearch(w, r, found, err, "product", name)
	}
}

// CreateProductHandler POST /product. Владелец берется из токена.
func CreateProductHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := identity(r)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		var in models.ProductInput
		if err := decodeJSON(w, r, &in); err != nil {
			errs.Write(w, r, err)
			return
		}
		p, err := products.Create(r.Context(), owner, in)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusCreated, p)
	}
}

// UpdateProductHandler PUT /product/{id}
func UpdateProductHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd models.ProductUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			errs.Write(w, r, err)
			return
		}
		p, err := products.Update(r.Context(), mux.Vars(r)["id"], upd)
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, p)
	}
}

// DeleteProductHandler DELETE /product/{id}
func DeleteProductHandler(products *service.Products) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := products.Delete(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			errs.Write(w, r, err)
			return
		}
		errs.WriteJSON(w, http.StatusOK, p)
	}
}
