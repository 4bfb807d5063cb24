package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"slices"

	"github.com/jo-hoe/foodspots/internal/backend/database"
	"github.com/jo-hoe/foodspots/internal/backend/uploads"
)

var ErrUnknownCollection = errors.New("unknown collection")

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	uploadStore     *uploads.UploadStore
}

func NewCoreService(config *ServiceConfig) *CoreService {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		slog.Error("failed to initialize database service", "error", err)
		panic(err)
	}
	uploadStore, err := uploads.NewUploadStore(config.Uploads.Directory, config.Uploads.URLPrefix)
	if err != nil {
		slog.Error("failed to initialize upload store", "error", err)
		panic(err)
	}
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		uploadStore:     uploadStore,
	}
}

func (service *CoreService) Collections() []string {
	return slices.Clone(service.config.Collections)
}

func (service *CoreService) UploadDirectory() string {
	return service.uploadStore.Directory()
}

func (service *CoreService) UploadURLPrefix() string {
	return service.uploadStore.URLPrefix()
}

// IsHealthy reports whether the collection store can currently be reached.
func (service *CoreService) IsHealthy() bool {
	return service.databaseService.DoesDatabaseExist()
}

// GetEntries returns the stored records of a collection as raw JSON values.
func (service *CoreService) GetEntries(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if !slices.Contains(service.config.Collections, collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return service.databaseService.GetEntries(ctx, collection)
}

// AddEntry stores the optional image and appends {title, image} to the collection.
// The title is stored as given, of any JSON type. A stored image is kept even if
// the append fails afterwards.
func (service *CoreService) AddEntry(ctx context.Context, collection string, title any, image *multipart.FileHeader) (*database.Entry, error) {
	if !slices.Contains(service.config.Collections, collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	entry := database.Entry{Title: title}
	if image != nil {
		imagePath, err := service.uploadStore.Save(image)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		entry.Image = imagePath
	}

	if err := service.databaseService.AppendEntry(ctx, collection, entry); err != nil {
		return nil, fmt.Errorf("failed to append entry to %s: %w", collection, err)
	}
	return &entry, nil
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}
