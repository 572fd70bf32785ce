package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"digitalwill-backend/docs"
	priceHandler "digitalwill-backend/internal/api/price"
	walletHandler "digitalwill-backend/internal/api/wallet"
	willHandler "digitalwill-backend/internal/api/will"
	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/middleware"
	activityRepo "digitalwill-backend/internal/repository/activity"
	userRepo "digitalwill-backend/internal/repository/user"
	priceService "digitalwill-backend/internal/service/price"
	walletService "digitalwill-backend/internal/service/wallet"
	willService "digitalwill-backend/internal/service/will"
	"digitalwill-backend/internal/workflow"
	"digitalwill-backend/pkg/blockchain"
	"digitalwill-backend/pkg/database"
	"digitalwill-backend/pkg/logger"
	"digitalwill-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Digital Will Backend API
// @version 1.0
// @description Digital Will Backend API
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(logger.DefaultConfig())
	defer logger.Sync()
	logger.Info("Starting Digital Will Backend v1.0.0")

	// 创建根context和WaitGroup用于协调关闭
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config: ", err)
		os.Exit(1)
	}

	// 2. 连接数据库并迁移
	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database: ", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database: ", err)
		os.Exit(1)
	}

	// 3. 连接Redis, 不可用时退回进程内缓存
	var cache database.Cache
	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		cache = database.NewMemoryCache()
	} else {
		cache = database.NewRedisCache(redisClient, cfg.Redis.KeyPrefix)
	}

	// 4. 初始化仓库层
	userRepository := userRepo.NewRepository(db)
	activityRepository := activityRepo.NewRepository(db)

	// 5. 指标, 钱包账户与链客户端
	metrics := middleware.NewMetrics()

	keystore, err := blockchain.NewKeystore(cfg.Wallet.Accounts)
	if err != nil {
		logger.Error("Failed to load wallet accounts: ", err)
		os.Exit(1)
	}
	logger.Info("Wallet accounts loaded", "accounts", keystore.Names())

	contract, err := blockchain.NewWillContract(&cfg.Aptos)
	if err != nil {
		logger.Error("Failed to create will contract client: ", err)
		os.Exit(1)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	defaultVariant, err := workflow.ParseVariant(cfg.Will.DefaultVariant)
	if err != nil {
		logger.Error("Invalid default variant: ", err)
		os.Exit(1)
	}

	// 6. 初始化服务层
	priceSvc := priceService.NewService(&cfg.Price, priceService.NewCoinGeckoFetcher(&cfg.Price), cache, metrics)
	walletSvc := walletService.NewService(keystore, userRepository, jwtManager, contract, priceSvc, metrics, defaultVariant)
	willSvc := willService.NewService(&cfg.Will, contract, activityRepository, cache, metrics)
	walletSvc.SetSessionListener(willSvc)

	if err := priceSvc.Start(ctx); err != nil {
		logger.Error("Failed to start price service", err)
	} else {
		logger.Info("Price service started successfully")
	}

	// 7. 初始化处理器
	walletHdl := walletHandler.NewHandler(walletSvc)
	willHdl := willHandler.NewHandler(willSvc, walletSvc)
	priceHdl := priceHandler.NewHandler(priceSvc)

	// 8. 设置Gin和路由
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	router.Use(middleware.CORS(), metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		walletHdl.RegisterRoutes(v1)
		willHdl.RegisterRoutes(v1)
		priceHdl.RegisterRoutes(v1)
	}

	// 9. Swagger API文档端点
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 10. 启动HTTP服务器
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on ", "address", addr)
		logger.Info("Swagger documentation available at: http://localhost:" + cfg.Server.Port + "/swagger/index.html")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error: ", err)
			cancel()
		}
	}()

	// 11. 等待关闭信号或服务器异常退出
	select {
	case <-sigCh:
		logger.Info("Received shutdown signal, starting graceful shutdown...")
	case <-ctx.Done():
		logger.Info("Server stopped, starting graceful shutdown...")
	}

	// Step 1: 停止HTTP服务器
	logger.Info("Stopping HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: ", err)
	} else {
		logger.Info("HTTP server stopped")
	}
	shutdownCancel()

	// Step 2: 关闭全部钱包会话, 停止轮询
	logger.Info("Closing wallet sessions...")
	walletSvc.CloseAll()
	willSvc.Stop()

	// Step 3: 停止价格服务
	cancel()
	if err := priceSvc.Stop(); err != nil {
		logger.Error("Failed to stop price service: ", err)
	}

	// Step 4: 关闭Redis
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis: ", err)
		}
	}

	// Step 5: 等待所有goroutine结束
	logger.Info("Waiting for all goroutines to finish...")
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("All services stopped gracefully")
	case <-time.After(15 * time.Second):
		logger.Error("Timeout waiting for services to stop, forcing exit", nil)
	}
}
