package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/configuration"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/services"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/storage"
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// ObjectStore is the object storage the records point into.
type ObjectStore interface {
	UploadFile(ctx context.Context, localPath, objectName string) error
	SignURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
	ListObjects(ctx context.Context) ([]string, error)
}

// FileScanner vets local files before upload.
type FileScanner interface {
	ScanFile(path string) error
}

// Deps are the collaborators of App. Zero values select the defaults noted
// on each field.
type Deps struct {
	Store   storage.Storage
	Objects ObjectStore
	// Scanner is optional; files are uploaded unscanned without it.
	Scanner FileScanner
	// Events defaults to services.NopPublisher.
	Events services.Publisher
	// Clipboard defaults to the system clipboard.
	Clipboard func(text string) error
	// Now defaults to time.Now.
	Now func() time.Time
	// In and Out default to the process's stdin and stdout.
	In  io.Reader
	Out io.Writer
	// ClearScreen clears the terminal between manager menus.
	ClearScreen bool
}

// App runs the command line operations against one record store.
type App struct {
	cfg  *configuration.Config
	log  *zap.Logger
	deps Deps
}

func New(cfg *configuration.Config, log *zap.Logger, deps Deps) *App {
	if deps.Events == nil {
		deps.Events = services.NopPublisher{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &App{cfg: cfg, log: log, deps: deps}
}

func (a *App) copyToClipboard(url string) bool {
	if err := a.deps.Clipboard(url); err != nil {
		a.log.Debug("clipboard unavailable", zap.Error(err))
		return false
	}
	return true
}
