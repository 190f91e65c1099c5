package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/client/client"
	"github.com/dmitrijs2005/sellingcar/internal/client/config"
	"github.com/dmitrijs2005/sellingcar/internal/client/services"
	"github.com/dmitrijs2005/sellingcar/internal/client/store"
	"github.com/dmitrijs2005/sellingcar/internal/client/view"
	"github.com/dmitrijs2005/sellingcar/internal/filex"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
)

type App struct {
	config      *config.Config
	catalog     *catalog.Catalog
	transport   *client.Transport
	authService services.AuthService
	log         logging.Logger
	db          *sql.DB

	reader *bufio.Reader
	out    io.Writer
	width  func() int

	current *view.View
}

// NewApp opens the local database, loads the resource catalog and wires
// the HTTP transport with the login session's token.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dbPath := c.DBPath
	if dbPath == "" {
		p, err := filex.DataPath("sellingcar", "client.db")
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", dbPath, "error", err)
		return nil, err
	}

	cat, err := loadCatalog(c.ResourcesFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		catalog: cat,
		log:     log,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		width:   view.TerminalWidth,
	}
	a.transport = client.NewTransport(c.RequestTimeout,
		client.WithLogger(log),
		client.WithToken(func() string { return a.authService.Token() }),
	)
	a.authService = services.NewAuthService(a.transport, c.AuthBaseURL, db, log)
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// Run restores a persisted session and blocks in the REPL until the user
// exits or ctx is canceled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if s, err := a.authService.Restore(ctx); err == nil {
		printlnFn("Welcome back,", s.DisplayName())
	} else if !errors.Is(err, services.ErrNotLoggedIn) {
		a.log.Warn(ctx, "cannot restore session", "error", err)
	}

	printlnFn("SellingCar admin (type 'help' for commands)")
	_ = a.Home(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close unmounts the open view and closes the local database.
func (a *App) Close() {
	if a.current != nil {
		a.current.Unmount()
		a.current = nil
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.authService.Current(); sess != nil {
		s = sess.DisplayName()
	}
	if a.current != nil {
		if s != "" {
			s += " "
		}
		s += "@" + a.current.Descriptor().Name
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// mount replaces the open view with a fresh one for d.
func (a *App) mount(ctx context.Context, d *catalog.Descriptor) *view.View {
	if a.current != nil {
		a.current.Unmount()
	}
	rc := a.transport.Resource(a.config.APIBaseURL, d)
	v := view.New(store.New(d, rc, a.log), a.log, view.WithWidth(a.width))
	a.current = v
	_ = v.Mount(ctx)
	return v
}
