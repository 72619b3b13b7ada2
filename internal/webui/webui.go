// Package webui serves the local transcript archive in the browser,
// archived videos on the index and full-text search over their captions.
package webui

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html"

	"github.com/tavanh/ytscript/internal/search"
	"github.com/tavanh/ytscript/internal/store"
)

var (
	//go:embed templates
	_templatesFS embed.FS
	templatesFS  fs.FS
)

func init() {
	subTemplatesFS, err := fs.Sub(_templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	templatesFS = subTemplatesFS
}

type IndexData struct {
	Videos  []store.Video
	Results []search.Result
	IsQuery bool
	Query   string
}

// NewApp builds the fiber application, separate from Start so tests can
// drive it without a listener.
func NewApp(ctx context.Context, queries *store.Queries) *fiber.App {
	engine := html.NewFileSystem(http.FS(templatesFS), ".html")

	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layout",
	})

	app.Get("/", func(c *fiber.Ctx) error {
		var data IndexData

		query := c.Query("q")
		if query == "" {
			videos, err := queries.Videos(ctx)
			if err != nil {
				log.Printf("[ERROR]: listing archived videos: %v", err)
				return fiber.NewError(http.StatusInternalServerError, "listing archive failed")
			}

			data.Videos = videos
			return c.Render("index", data)
		}

		if len(query) < 3 {
			return fiber.NewError(
				http.StatusUnprocessableEntity,
				"Please type at least 3 characters",
			)
		}
		data.Query = strings.Clone(query)

		log.Printf("[INFO]: searching for %q", query)
		res, err := search.Search(ctx, queries, query)
		if err != nil {
			log.Printf("[ERROR]: %v", err)
			return fiber.NewError(http.StatusInternalServerError, "search failed")
		}

		data.Results = res
		data.IsQuery = true
		return c.Render("index", data)
	})

	return app
}

// Start serves the archive UI on addr until the listener fails.
func Start(ctx context.Context, queries *store.Queries, addr string) error {
	log.Printf("[INFO]: serving archive on http://localhost%s", addr)
	if err := NewApp(ctx, queries).Listen(addr); err != nil {
		return fmt.Errorf("serving archive: %w", err)
	}

	return nil
}
