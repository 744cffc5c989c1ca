// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/config"
	"doc-annotator-go/internal/handler"
	"doc-annotator-go/internal/pipeline"
	"doc-annotator-go/internal/repository"
	"doc-annotator-go/internal/service"
	"doc-annotator-go/pkg/database"
	"doc-annotator-go/pkg/es"
	"doc-annotator-go/pkg/kafka"
	"doc-annotator-go/pkg/llm"
	"doc-annotator-go/pkg/lock"
	"doc-annotator-go/pkg/log"
	"doc-annotator-go/pkg/storage"
	"doc-annotator-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN, cfg.Database.MySQL.AutoMigrate)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// 4. 初始化可选组件：ES 与 MinIO 不可用时服务仍可运行，只是没有检索和归档
	deps := service.Dependencies{
		Store:  repository.NewGormStore(database.DB),
		Locker: lock.NewRedisLocker(database.RDB, cfg.Annotate.LockTTL),
	}
	if cfg.Elasticsearch.Addresses != "" {
		index, err := es.NewMentionIndex(cfg.Elasticsearch)
		if err != nil {
			log.Warnf("Elasticsearch 初始化失败, 实体检索不可用: %v", err)
		} else {
			deps.Index = index
		}
	}
	if cfg.MinIO.Endpoint != "" {
		archiver, err := storage.NewArchiver(rootCtx, cfg.MinIO)
		if err != nil {
			log.Warnf("MinIO 初始化失败, 文档归档不可用: %v", err)
		} else {
			deps.Archiver = archiver
		}
	}

	// 5. 初始化 Service (依赖注入)
	documentService := service.NewDocumentService(deps)
	tokenService := service.NewDocumentTokenService(deps)
	entityService := service.NewEntityItemService(deps)
	labelService := service.NewEntityLabelService(deps)
	relationService := service.NewRelationService(deps)
	relationLabelService := service.NewRelationLabelService(deps)
	promptService := service.NewPromptTemplateService(deps)
	extractionService := service.NewExtractionService(deps, labelService, promptService, llm.NewClient(cfg.LLM))
	searchService := service.NewSearchService(deps.Index)

	// 6. 启动后台 Kafka 消费者
	var producer handler.TaskProducer
	if len(cfg.Kafka.BrokerList()) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka)
		defer kafkaProducer.Close()
		producer = kafkaProducer

		consumer := kafka.NewConsumer(cfg.Kafka, pipeline.NewProcessor(extractionService), kafka.NewRedisAttemptCounter(database.RDB))
		go consumer.Run(rootCtx)
	} else {
		log.Warnf("未配置 Kafka brokers, 异步抽取不可用")
	}

	// 7. 设置 Gin 模式并注册路由
	var jwtManager *token.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	} else {
		log.Warnf("未配置 jwt.secret, API 鉴权已关闭")
	}
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.Handlers{
		Documents: handler.NewDocumentHandler(documentService, tokenService),
		Entities:  handler.NewEntityHandler(entityService, searchService),
		Labels:    handler.NewLabelHandler(labelService),
		AI:        handler.NewAIHandler(extractionService, documentService, producer),

		Relations:      handler.NewRelationHandler(relationService),
		RelationLabels: handler.NewRelationLabelHandler(relationLabelService),
		Prompts:        handler.NewPromptHandler(promptService),
	}, jwtManager)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 先停止消费者，再关闭 HTTP 服务器
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
