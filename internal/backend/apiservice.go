package backend

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/jo-hoe/foodspots/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	titleField     = "title"
	imageFormField = "image"
)

type APIService struct {
	coreService *core.CoreService
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (service *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", service.probeHandler)

	for _, collection := range service.coreService.Collections() {
		e.GET("/api/"+collection, service.listEntriesHandler(collection))
		e.POST("/api/"+collection, service.addEntryHandler(collection))
	}

	e.StaticFS(service.coreService.UploadURLPrefix(), os.DirFS(service.coreService.UploadDirectory()))
}

func (service *APIService) probeHandler(ctx echo.Context) error {
	if !service.coreService.IsHealthy() {
		slog.Warn("probeHandler: collection store is unreachable", "status", http.StatusServiceUnavailable)
		return ctx.String(http.StatusServiceUnavailable, "Collection store is unreachable")
	}
	return ctx.String(http.StatusOK, "API Service is running")
}

func (service *APIService) listEntriesHandler(collection string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		entries, err := service.coreService.GetEntries(ctx.Request().Context(), collection)
		if err != nil {
			slog.Error("listEntriesHandler: failed to read collection",
				"status", http.StatusInternalServerError, "collection", collection, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read collection")
		}
		return ctx.JSON(http.StatusOK, entries)
	}
}

func (service *APIService) addEntryHandler(collection string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		title, err := service.requestTitle(ctx)
		if err != nil {
			slog.Warn("addEntryHandler: failed to parse request body",
				"status", http.StatusBadRequest, "collection", collection, "error", err)
			return err
		}

		image, err := service.uploadedImage(ctx)
		if err != nil {
			slog.Warn("addEntryHandler: failed to get uploaded file",
				"status", http.StatusBadRequest, "collection", collection, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to get uploaded file")
		}

		entry, err := service.coreService.AddEntry(ctx.Request().Context(), collection, title, image)
		if err != nil {
			slog.Error("addEntryHandler: failed to add entry",
				"status", http.StatusInternalServerError, "collection", collection, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add entry")
		}
		return ctx.JSON(http.StatusOK, entry)
	}
}

// requestTitle reads the title from form or JSON bodies without constraining
// its type. JSON titles keep their JSON type; a missing title or a body of any
// other content type yields "". Only malformed JSON is rejected.
func (service *APIService) requestTitle(ctx echo.Context) (any, error) {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		var body any
		err := ctx.Echo().JSONSerializer.Deserialize(ctx, &body)
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON body").SetInternal(err)
		}
		fields, _ := body.(map[string]any)
		title, ok := fields[titleField]
		if !ok {
			return "", nil
		}
		return title, nil
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm),
		strings.HasPrefix(contentType, echo.MIMEApplicationForm):
		return ctx.FormValue(titleField), nil
	default:
		return "", nil
	}
}

// uploadedImage returns nil when the request is not multipart or has no image field.
func (service *APIService) uploadedImage(ctx echo.Context) (*multipart.FileHeader, error) {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return nil, nil
	}

	file, err := ctx.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}
