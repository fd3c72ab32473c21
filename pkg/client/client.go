package client

import (
	"context"
	"time"

	"cleanroom/pkg/logger"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"google.golang.org/api/option"
)

// Client holds the connections shared by a service process. Only the ones a
// service asked for are set.
type Client struct {
	Mongo     *mongo.Client
	Firebase  *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

// SetFirebase initializes the Firebase app. An empty credentialsFile falls
// back to application default credentials.
func (c *Client) SetFirebase(log *logger.Logger, projectID, credentialsFile string) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		log.Fatal("Failed to initialize Firebase app", "error", err)
	}
	c.Firebase = app

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal("Failed to initialize Firebase Auth client", "error", err)
	}
	c.Auth = authClient
	log.Info("Firebase app initialized", "project_id", projectID)
}

// SetFirestore requires SetFirebase to have been called.
func (c *Client) SetFirestore(log *logger.Logger) {
	if c.Firebase == nil {
		log.Fatal("Firestore requested before Firebase was initialized")
	}
	fs, err := c.Firebase.Firestore(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize Firestore client", "error", err)
	}
	c.Firestore = fs
	log.Info("Successfully connected to Firestore")
}

func (c *Client) GracefulShutdown(ctx context.Context, log *logger.Logger) {
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			log.Error("Failed to close Firestore client", "error", err)
		} else {
			log.Info("Closed Firestore client")
		}
	}
}
