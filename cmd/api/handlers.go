package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/gateway"
	"github.com/Ba9900/Mzize-Tradings/internal/models"
	"github.com/Ba9900/Mzize-Tradings/internal/reconcile"
	"github.com/Ba9900/Mzize-Tradings/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func handleListPlans(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)

		result, err := store.ListPlans(r.Context(), db, page, pageSize)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleCreatePlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title            string   `json:"title"`
			Description      string   `json:"description"`
			Price            float64  `json:"price"`
			Bedrooms         int      `json:"bedrooms"`
			Bathrooms        float64  `json:"bathrooms"`
			Stories          int      `json:"stories"`
			GarageSpaces     int      `json:"garage_spaces"`
			SquareFootage    int      `json:"square_footage"`
			StyleCategory    string   `json:"style_category"`
			FeaturedImageURL string   `json:"featured_image_url"`
			GalleryImages    []string `json:"gallery_images"`
			PlanFiles        []string `json:"plan_files"`
			IsFeatured       bool     `json:"is_featured"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		plan, err := store.CreatePlan(r.Context(), db, &models.HousePlan{
			Title:            req.Title,
			Description:      req.Description,
			Price:            decimal.NewFromFloat(req.Price),
			Bedrooms:         req.Bedrooms,
			Bathrooms:        decimal.NewFromFloat(req.Bathrooms),
			Stories:          req.Stories,
			GarageSpaces:     req.GarageSpaces,
			SquareFootage:    req.SquareFootage,
			StyleCategory:    req.StyleCategory,
			FeaturedImageURL: req.FeaturedImageURL,
			GalleryImages:    req.GalleryImages,
			PlanFiles:        req.PlanFiles,
			IsFeatured:       req.IsFeatured,
			IsActive:         true,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, plan)
	}
}

func handleGetPlan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid plan ID")
			return
		}

		plan, err := store.GetPlan(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, plan)
	}
}

func handleGetCart(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDQuery(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		cart, err := store.GetCart(r.Context(), db, userID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, cart)
	}
}

func handleAddToCart(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   int64 `json:"user_id"`
			PlanID   int64 `json:"plan_id"`
			Quantity int   `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		item, err := store.AddToCart(r.Context(), db, req.UserID, req.PlanID, req.Quantity)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func handleUpdateCartItem(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cart item ID")
			return
		}

		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		item, err := store.UpdateCartItem(r.Context(), db, id, req.Quantity)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func handleRemoveCartItem(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid cart item ID")
			return
		}

		if err := store.RemoveCartItem(r.Context(), db, id); err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
	}
}

func handleClearCart(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDQuery(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		if err := store.ClearCart(r.Context(), db, userID); err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
	}
}

func handleCheckoutSummary(db *sql.DB, checkout config.CheckoutConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID int64 `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		summary, err := store.GetCheckoutSummary(r.Context(), db, req.UserID, checkout.VATRate, checkout.Currency)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, summary)
	}
}

func handleCheckout(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         int64                 `json:"user_id"`
			BillingAddress models.BillingAddress `json:"billing_address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		order, err := store.Checkout(r.Context(), db, req.UserID, req.BillingAddress)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, order)
	}
}

func handleListOrders(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDQuery(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		page, pageSize := pageParams(r)

		result, err := store.ListOrders(r.Context(), db, userID, page, pageSize)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleGetOrder(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		order, err := store.GetOrder(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleUpdateOrderStatus(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		order, err := store.UpdateOrderStatus(r.Context(), db, id, req.Status)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleProcessPayment(db *sql.DB, gateways ...gateway.Gateway) http.HandlerFunc {
	byMethod := make(map[string]gateway.Gateway, len(gateways))
	for _, gw := range gateways {
		byMethod[gw.Method()] = gw
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrderID       int64             `json:"order_id"`
			PaymentMethod string            `json:"payment_method"`
			Payer         gateway.PayerInfo `json:"payer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		gw, ok := byMethod[req.PaymentMethod]
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid payment method")
			return
		}

		order, err := store.GetOrder(r.Context(), db, req.OrderID)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		initiation, err := gw.Initiate(r.Context(), db, order, req.Payer)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, initiation)
	}
}

func handleGetPayment(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := store.GetPayment(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, payment)
	}
}

func handleCancelPayment(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid payment ID")
			return
		}

		payment, err := store.CancelPayment(r.Context(), db, id)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, payment)
	}
}

// handleNotification is the inbound gateway callback endpoint. Everything
// except a signature failure is acknowledged with 200; gateways retry on
// anything else and a retry storm helps nobody.
func handleNotification(engine *reconcile.Engine, logger *zap.Logger, gatewayName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid form payload")
			return
		}

		err := engine.Process(r.Context(), gatewayName, r.PostForm)
		if errors.Is(err, gateway.ErrInvalidSignature) {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		if err != nil {
			logger.Error("notification processing failed",
				zap.String("gateway", gatewayName),
				zap.Error(err))
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func userIDQuery(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrPlanNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrPaymentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrInvalidState):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
