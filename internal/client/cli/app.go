package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fieldworks/fieldsync/internal/client/client"
	"github.com/fieldworks/fieldsync/internal/client/config"
	"github.com/fieldworks/fieldsync/internal/client/media"
	"github.com/fieldworks/fieldsync/internal/client/services"
	"github.com/fieldworks/fieldsync/internal/filex"
	"github.com/fieldworks/fieldsync/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config *config.Config
	repos  *client.Repositories
	// rest carries the credential surface (tokens, actor id); gw is the
	// same client behind the Gateway interface, which is what commands and
	// tests program against.
	rest *client.RESTClient
	gw   client.Gateway
	sync services.SyncService

	actorID string
	Mode    Mode
	reader  *bufio.Reader

	// session is the draft currently open for editing, nil between resumes.
	session *services.Session
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	// A bare file name lands in ./data/ so the working directory stays
	// clean; explicit paths are used as-is.
	dbPath := c.DatabasePath
	if filepath.Dir(dbPath) == "." {
		dir, err := filex.EnsureSubdDir("data")
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dir, dbPath)
	}

	repos, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	gw := client.NewRESTClient(c.ServerEndpointURL)

	var uploader media.Uploader
	if c.UploadMode == "s3" {
		uploader = media.NewS3Uploader(media.S3Config{
			BaseEndpoint: c.MediaEndpoint,
			Region:       c.MediaRegion,
			Bucket:       c.MediaBucket,
			AccessKey:    c.MediaAccessKey,
			SecretKey:    c.MediaSecretKey,
		})
	} else {
		uploader = media.NewAPIUploader(gw)
	}

	logger := logging.NewSlogLogger(slog.Default())
	sync := services.NewSyncService(repos.Drafts, gw, uploader, logger)

	return &App{
		config: c,
		repos:  repos,
		rest:   gw,
		gw:     gw,
		sync:   sync,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (app *App) setMode(mode Mode) {
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.gw.Close()
	defer a.repos.DB.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.actorID != ""
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.gw.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
