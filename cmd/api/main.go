package main

import (
	"net/http"

	"github.com/Ba9900/Mzize-Tradings/internal/config"
	"github.com/Ba9900/Mzize-Tradings/internal/database"
	"github.com/Ba9900/Mzize-Tradings/internal/gateway"
	"github.com/Ba9900/Mzize-Tradings/internal/reconcile"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	payfast := gateway.NewPayFast(cfg.PayFast, cfg.Server.BaseURL)
	ozow := gateway.NewOzow(cfg.Ozow, cfg.Server.BaseURL)
	engine := reconcile.NewEngine(db, logger, payfast, ozow)

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/plans", handleListPlans(db))
		r.Post("/plans", handleCreatePlan(db))
		r.Get("/plans/{id}", handleGetPlan(db))

		r.Get("/cart", handleGetCart(db))
		r.Post("/cart/add", handleAddToCart(db))
		r.Put("/cart/update/{id}", handleUpdateCartItem(db))
		r.Delete("/cart/remove/{id}", handleRemoveCartItem(db))
		r.Delete("/cart/clear", handleClearCart(db))
		r.Post("/checkout/summary", handleCheckoutSummary(db, cfg.Checkout))

		r.Get("/orders", handleListOrders(db))
		r.Post("/orders", handleCheckout(db))
		r.Get("/orders/{id}", handleGetOrder(db))
		r.Put("/orders/{id}/status", handleUpdateOrderStatus(db))

		r.Post("/payments/process", handleProcessPayment(db, payfast, ozow))
		r.Get("/payments/{id}", handleGetPayment(db))
		r.Post("/payments/{id}/cancel", handleCancelPayment(db))

		r.HandleFunc("/payments/payfast/notify", handleNotification(engine, logger, payfast.Name()))
		r.HandleFunc("/payments/ozow/notify", handleNotification(engine, logger, ozow.Name()))

		r.HandleFunc("/payments/payfast/return", redirectTo("/payment-success"))
		r.HandleFunc("/payments/payfast/cancel", redirectTo("/payment-cancelled"))
		r.HandleFunc("/payments/ozow/success", redirectTo("/payment-success"))
		r.HandleFunc("/payments/ozow/cancel", redirectTo("/payment-cancelled"))
		r.HandleFunc("/payments/ozow/error", redirectTo("/payment-error"))
	})

	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
