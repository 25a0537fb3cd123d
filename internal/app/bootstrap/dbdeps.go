// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/scanmenu/admindesk/internal/app/store/audit"
	"github.com/scanmenu/admindesk/internal/app/system/console"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// AuditStore persists the audit trail.
	AuditStore *audit.Store

	// Consoles holds the live admin consoles; it is in-memory state that
	// the cleanup worker and shutdown share with the handlers.
	Consoles *console.Hub
}
