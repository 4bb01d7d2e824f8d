package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"ripple_server/routes"
	"ripple_server/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and store
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	store := services.NewDynamoStore(dynamoClient, os.Getenv("TABLE_NAME"))
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	identityService := &services.IdentityService{Store: store}
	profileService := &services.ProfileService{Store: store, Identity: identityService}
	contentService := &services.ContentService{Store: store, Profiles: profileService}
	socialService := &services.SocialService{Store: store}
	accountService := &services.AccountService{Profiles: profileService, Identity: identityService}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Ripple")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterProfileRoutes(r, profileService)
	routes.RegisterContentRoutes(r, contentService)
	routes.RegisterSocialRoutes(r, socialService)
	routes.RegisterIdentityRoutes(r, identityService)
	routes.RegisterAccountRoutes(r, accountService)
	routes.RegisterMediaRoutes(r)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
