package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"securechat/internal/chat"
	"securechat/internal/cipher"
	"securechat/internal/config"
	"securechat/internal/database"
	"securechat/internal/handler"
	"securechat/internal/room"
	"securechat/internal/store"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using default values: %v", err)
	}

	// 環境変数を読み込み
	cfg := config.Load()

	// 暗号化キーを検証（無効なら起動しない）
	c, err := cipher.New(cfg.SecretKey)
	if err != nil {
		log.Fatalf("❌ Refusing to start without a valid CHAT_SECRET_KEY: %v", err)
	}

	// データベース接続を初期化
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer db.Close()

	// コアコンポーネントを組み立て
	s := store.New(db)
	registry := room.NewRegistry()
	pipeline := chat.New(s, registry, c)

	h := handler.New(s, registry, pipeline, cfg)
	router := h.SetupRouter()

	// CORS対応
	corsLayer := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})

	httpHandler := corsLayer.Handler(router)

	fmt.Println("========================================")
	fmt.Println("  SecureChat API Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	if cfg.DBName != "" {
		fmt.Printf("  Database: %s@%s:%s/%s\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")
	log.Println("🚀 Server started successfully")
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, httpHandler))
}
