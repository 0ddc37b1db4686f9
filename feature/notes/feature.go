package notes

import (
	"note-updater/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature wires the batch update service into the server.
type Feature struct {
	service *Service
	db      *gorm.DB
	logger  *zap.Logger
}

// NewFeature creates the notes feature.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Feature {
	return &Feature{
		service: NewService(db, client, bucket, logger),
		db:      db,
		logger:  logger,
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "notes"
}

// IsEnabled reports whether the feature can run. Without a database there
// is no note store to reconcile against.
func (f *Feature) IsEnabled() bool {
	return f.db != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.logger.Info("Loading notes feature")
	NewHandler(f.service).RegisterRoutes(app)
	return nil
}
