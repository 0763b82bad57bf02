package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	accountStore "github.com/MrJamesThe3rd/expenso/internal/account/store"
	"github.com/MrJamesThe3rd/expenso/internal/auth"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	categoryStore "github.com/MrJamesThe3rd/expenso/internal/category/store"
	"github.com/MrJamesThe3rd/expenso/internal/config"
	"github.com/MrJamesThe3rd/expenso/internal/database"
	"github.com/MrJamesThe3rd/expenso/internal/exchange"
	expensoHttp "github.com/MrJamesThe3rd/expenso/internal/http"
	accountHandler "github.com/MrJamesThe3rd/expenso/internal/http/account"
	categoryHandler "github.com/MrJamesThe3rd/expenso/internal/http/category"
	exchangeHandler "github.com/MrJamesThe3rd/expenso/internal/http/exchange"
	operationHandler "github.com/MrJamesThe3rd/expenso/internal/http/operation"
	userHandler "github.com/MrJamesThe3rd/expenso/internal/http/user"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
	operationStore "github.com/MrJamesThe3rd/expenso/internal/operation/store"
	"github.com/MrJamesThe3rd/expenso/internal/user"
	userStore "github.com/MrJamesThe3rd/expenso/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var (
		userService      = user.NewService(userStore.New(db))
		accountService   = account.NewService(accountStore.New(db))
		categoryService  = category.NewService(categoryStore.New(db))
		operationService = operation.NewService(operationStore.New(db))
		exchangeClient   = exchange.NewClient(cfg.Exchange.BaseURL, cfg.Exchange.Timeout)
	)

	var (
		userH      = userHandler.NewHandler(userService, tokens)
		accountH   = accountHandler.NewHandler(accountService)
		categoryH  = categoryHandler.NewHandler(categoryService)
		operationH = operationHandler.NewHandler(operationService)
		exchangeH  = exchangeHandler.NewHandler(exchangeClient)
	)

	router := expensoHttp.New(tokens, userH, accountH, categoryH, operationH, exchangeH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
