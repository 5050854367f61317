// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only use the Docker service name as fallback in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://mongodb:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// DatabaseName returns the configured database name.
func DatabaseName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "source1"
	}
	return dbName
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DatabaseName()).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DatabaseName())

	collections := []string{"users", "workOrders", "vendorApplications", "payments", "notifications"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	// Unique email per account
	userColl := db.Collection("users")
	emailIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := userColl.Indexes().CreateOne(ctx, emailIndexModel); err != nil {
		log.Printf("Error creating email index: %v", err)
	}

	// One application per (workOrder, vendor) pair
	appColl := db.Collection("vendorApplications")
	appIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "workOrderId", Value: 1}, {Key: "vendorId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := appColl.Indexes().CreateOne(ctx, appIndexModel); err != nil {
		log.Printf("Error creating application index: %v", err)
	}

	// One settlement per work order
	paymentColl := db.Collection("payments")
	paymentIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "workOrderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := paymentColl.Indexes().CreateOne(ctx, paymentIndexModel); err != nil {
		log.Printf("Error creating payment index: %v", err)
	}

	// Work orders are listed by client, vendor, and status
	woColl := db.Collection("workOrders")
	for _, keys := range []bson.D{
		{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
		{{Key: "assignedVendorId", Value: 1}, {Key: "createdAt", Value: -1}},
		{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
	} {
		if _, err := woColl.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			log.Printf("Error creating work order index: %v", err)
		}
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
