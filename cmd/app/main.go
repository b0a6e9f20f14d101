package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/cart"
	"github.com/jusastore/store-backend/internal/category"
	"github.com/jusastore/store-backend/internal/config"
	"github.com/jusastore/store-backend/internal/identity"
	"github.com/jusastore/store-backend/internal/order"
	"github.com/jusastore/store-backend/internal/product"
	"github.com/jusastore/store-backend/internal/session"
	"github.com/jusastore/store-backend/internal/user"
	"github.com/shopspring/decimal"
)

// Prices and totals go out as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	log.SetLevel(parseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalw("open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Errorw("close store", "error", err)
		}
	}()

	verifier := identity.Verifier(identity.Disabled{})
	if cfg.FirebaseEnabled() {
		fv, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			log.Fatalw("init firebase", "error", err)
		}
		verifier = fv
	} else {
		log.Warn("firebase not configured; google sign-in disabled")
	}

	app := newApp(cfg, st, verifier)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorw("shutdown", "error", err)
		}
	}()

	log.Infow("listening", "addr", cfg.Addr, "store", cfg.StoreDriver)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorw("server stopped", "error", err)
	}
}

// newApp wires handlers onto a Fiber app. Routes registered after the
// session middleware require a bearer token.
func newApp(cfg config.Config, st stores, verifier identity.Verifier) *fiber.App {
	productService := product.NewService(st.products)
	userService := user.NewService(st.users)
	cartService := cart.NewService(st.carts, productService)
	orderService := order.NewService(st.orders, st.carts, productService)
	categoryService := category.NewService(productService, category.DefaultCollections)

	productHandler := product.NewHandler(productService, cfg.AllowBulkProducts)
	userHandler := user.NewHandler(userService, session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), verifier)
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService)
	categoryHandler := category.NewHandler(categoryService)

	app := fiber.New(fiber.Config{
		AppName:      "jusa-store",
		ErrorHandler: apperr.Handler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return st.ping(c.UserContext()) == nil
		},
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the Jusa store API"})
	})

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)

	app.Use(session.Middleware(cfg.JWTSecret))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	return app
}

func parseLevel(s string) log.Level {
	switch s {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
