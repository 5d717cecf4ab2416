package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linemk/tech-store/internal/app"
	"github.com/linemk/tech-store/internal/app/handlers"
	"github.com/linemk/tech-store/internal/config"
	"github.com/linemk/tech-store/internal/lib/logger"
	"github.com/linemk/tech-store/internal/lib/logger/handlers/urllog"
	"github.com/linemk/tech-store/internal/security/authmiddleware"
	"github.com/linemk/tech-store/internal/service"
	"github.com/linemk/tech-store/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	// витрина обслуживается с единственного разрешенного origin
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// реализация слоев по работе с хранилищем по каждой коллекции
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	cartStore := storage.NewCartStorage()

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute, cfg.Seed)
	userService := service.NewUserService(application.Logger, userRepo)
	productService := service.NewProductService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartStore, productRepo)
	orderService := service.NewOrderService(application.Logger, orderRepo, cartStore)

	// в свежей установке создаём учетную запись администратора
	if err := authService.EnsureSeedAdmin(context.Background()); err != nil {
		log.Error("failed to seed admin", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to seed admin"))
	}

	// публичные эндпоинты: аутентификация и легаси-проверка логина
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))
	router.Get("/usuarios", handlers.LoginCheckHandler(application.Logger, authService))

	router.Group(func(r chi.Router) {
		// все остальные маршруты требуют подтверждённой личности
		authMW := authmiddleware.New()
		r.Use(authMW)

		r.Get("/productos", handlers.ListProductsHandler(application.Logger, productService))

		r.Get("/pedidos", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Post("/pedidos", handlers.CreateOrderHandler(application.Logger, orderService))

		r.Get("/carrito", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/carrito", handlers.AddToCartHandler(application.Logger, cartService))
		r.Delete("/carrito", handlers.ClearCartHandler(application.Logger, cartService))
		r.Put("/carrito/{productoId}", handlers.SetCartQuantityHandler(application.Logger, cartService))
		r.Delete("/carrito/{productoId}", handlers.RemoveFromCartHandler(application.Logger, cartService))
		r.Post("/carrito/checkout", handlers.CheckoutHandler(application.Logger, orderService))

		// административные маршруты: роль проверяется сервером, а не клиентом
		r.Group(func(ar chi.Router) {
			ar.Use(authmiddleware.RequireAdmin)

			ar.Get("/usuarios/all", handlers.ListUsersHandler(application.Logger, userService))
			ar.Post("/usuarios", handlers.CreateUserHandler(application.Logger, userService))
			ar.Put("/usuarios/{id}", handlers.UpdateUserHandler(application.Logger, userService))
			ar.Delete("/usuarios/{id}", handlers.DeleteUserHandler(application.Logger, userService))

			ar.Post("/productos", handlers.CreateProductHandler(application.Logger, productService))
			ar.Put("/productos/{id}", handlers.UpdateProductHandler(application.Logger, productService))
			ar.Delete("/productos/{id}", handlers.DeleteProductHandler(application.Logger, productService))

			ar.Put("/pedidos/{id}", handlers.UpdateOrderHandler(application.Logger, orderService))
			ar.Delete("/pedidos/{id}", handlers.DeleteOrderHandler(application.Logger, orderService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
