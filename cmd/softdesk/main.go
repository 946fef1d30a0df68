package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/internal"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/handler"
	"github.com/softdesk-lab/softdesk/pkg/config"
)

var (
	readHeaderTimeout = 10 * time.Second
	cancelTimeout     = 10 * time.Second
)

// @title						SoftDesk Support API
// @version					1.0.0
// @description				Issue-tracking backend with project-scoped, role-derived permissions.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description				Obtain a token via /api/login and supply it as 'Bearer ${TOKEN}'
func main() {
	backendConfig := config.GetConfig()

	if err := loadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	store, err := dao.InitDB(backendConfig)
	if err != nil {
		klog.Fatalf("Failed to init database: %s", err)
	}
	if err := store.InitMigration(); err != nil {
		klog.Fatalf("Failed to migrate database: %s", err)
	}

	registerConfig := &handler.RegisterConfig{
		Store:     store,
		Evaluator: authz.NewEvaluator(store),
	}

	startServer(backendConfig, registerConfig)
}

// loadDebugEnvironment reads .debug.env in debug mode so local runs
// can point at a local postgres.
func loadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}
	if _, err := os.Stat(".debug.env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(".debug.env")
}

func startServer(backendConfig *config.Config, registerConfig *handler.RegisterConfig) {
	klog.Info("starting server")
	backend := internal.Register(registerConfig)

	// reference: https://gin-gonic.com/en/docs/examples/graceful-restart-or-stop
	srv := &http.Server{
		Addr:              backendConfig.ServerAddr,
		Handler:           backend.R,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	klog.Info("Shutdown Gin Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		klog.Info("Gin Server Shutdown:", err)
	}
	klog.Info("Gin Server exiting")
}
