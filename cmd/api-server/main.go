// Package main 图书馆服务入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library-admin/internal/apiserver/auth"
	"library-admin/internal/apiserver/server"
	"library-admin/internal/config"
	"library-admin/internal/shared/cache"
	redisstore "library-admin/internal/shared/cache/redis"
	"library-admin/internal/shared/filestore"
	"library-admin/internal/shared/objstore"
	"library-admin/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 configs/{env}.yaml）
	cfg := config.Load()

	log.Printf("Starting library server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化 MongoDB（持久化业务数据）
	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 旧版 author 标量字段一次性迁移为 authors 数组
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	migrated, err := store.MigrateLegacyAuthors(startupCtx)
	if err != nil {
		log.Printf("WARNING: legacy author migration failed: %v", err)
	} else if migrated > 0 {
		log.Printf("Migrated %d publications to the authors array schema", migrated)
	}

	// 首次启动引导管理员账号
	if err := auth.EnsureAdminUser(startupCtx, store, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("WARNING: admin bootstrap failed: %v", err)
	}
	cancelStartup()

	// 初始化缓存（simple=进程内 / redis / none）
	c := newCache(cfg)

	// 初始化文件存储（local=本地磁盘 / minio=对象存储）
	files, err := newFileStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init file storage: %v", err)
	}

	h := server.NewHandler(cfg, store, c, files)
	router, err := h.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF 上传/下载
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Library server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// newCache 根据配置选择缓存后端
func newCache(cfg *config.Config) cache.Cache {
	switch cfg.CacheType {
	case "redis":
		c, err := redisstore.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("Connected to Redis")
		return c
	case "none":
		return cache.NewNoOpCache()
	default:
		return cache.NewMemoryCache()
	}
}

// newFileStore 根据配置选择上传文件存储后端
func newFileStore(cfg *config.Config) (filestore.Store, error) {
	switch cfg.UploadBackend {
	case "minio":
		client, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Println("Connected to MinIO")
		return filestore.NewMinioStore(client), nil
	default:
		return filestore.NewLocalStore(cfg.UploadDir)
	}
}
