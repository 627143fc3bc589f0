// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// services is allocated by ConnectDB and filled in by Startup; DBDeps is
// passed by value between hooks, so the pointer is what they share.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	services *services
}
