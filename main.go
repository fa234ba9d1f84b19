package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/rentalhub/backend/config"
	"github.com/rentalhub/backend/matching"
	"github.com/rentalhub/backend/routes"
	"github.com/rentalhub/backend/store"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("Error loading .env file: %v", err)
	}
}

func loadWeights() matching.Weights {
	path := os.Getenv("MATCH_WEIGHTS_FILE")
	if path == "" {
		return matching.DefaultWeights()
	}
	w, err := matching.LoadWeightsFromFile(path)
	if err != nil {
		logrus.Warnf("Falling back to default match weights: %v", err)
	}
	return w
}

func main() {
	loadEnv()

	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	client, err := config.ConnectDB(os.Getenv("MONGO_URI"))
	if err != nil {
		logrus.Fatalf("Failed to connect to the database: %v", err)
	}
	defer config.CloseDBConnection(client)

	config.InitCollections(client, os.Getenv("DB"))
	redisClient := config.InitRedis()

	scorer := matching.NewScorer(loadWeights())
	prefStore := store.NewMongoPreferencesStore(config.PreferencesCollection)
	propStore := store.NewMongoPropertyStore(config.PropertyCollection)

	router := mux.NewRouter()
	routes.Routes(router, client, redisClient, scorer, prefStore, propStore)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Infof("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Error during server shutdown: %v", err)
	}
	logrus.Info("Server gracefully stopped")
}
