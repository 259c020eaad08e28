package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/CrestNiraj12/kabinka/app"
	"github.com/CrestNiraj12/kabinka/domain"
	"github.com/CrestNiraj12/kabinka/infra/auth"
	"github.com/CrestNiraj12/kabinka/infra/config"
	"github.com/CrestNiraj12/kabinka/infra/editor"
	"github.com/CrestNiraj12/kabinka/infra/mastodon"
	"github.com/CrestNiraj12/kabinka/infra/session"
	"github.com/CrestNiraj12/kabinka/infra/store"
	"github.com/CrestNiraj12/kabinka/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

// cliOptions override the environment configuration.
type cliOptions struct {
	Timeline  string
	Anonymous bool
}

func parseCLIArgs(args []string) (cliMode, cliOptions, string) {
	var opts cliOptions
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-version" || arg == "-v":
			return cliVersion, opts, ""
		case arg == "--help" || arg == "-h" || arg == "help":
			return cliHelp, opts, ""
		case arg == "--anonymous":
			opts.Anonymous = true
		case arg == "--timeline":
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				return cliInvalid, opts, "--timeline needs a value"
			}
			i++
			opts.Timeline = args[i]
		case strings.HasPrefix(arg, "--timeline="):
			opts.Timeline = strings.TrimPrefix(arg, "--timeline=")
		default:
			return cliInvalid, opts, fmt.Sprintf("unexpected argument: %s", strings.Join(args[i:], " "))
		}
	}
	return cliRun, opts, ""
}

func usage() string {
	return `Usage: kabinka [--timeline <home|local|federated|bookmarks|favourites|#tag|list:<id>>] [--anonymous]
       kabinka [--version|-version|-v] [--help|-h]`
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func main() {
	mode, opts, msg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("%s %s\ncommit: %s\nbuilt: %s\n", domain.AppTitle, v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", msg, usage())
		os.Exit(2)
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "kabinka: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions) error {
	// 1. Load config from environment, flags win.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if opts.Timeline != "" {
		cfg.Timeline = opts.Timeline
	}
	cfg.Anonymous = cfg.Anonymous || opts.Anonymous
	query, err := domain.ParseTimelineQuery(cfg.Timeline)
	if err != nil {
		return err
	}

	logFile, log, err := openLog(cfg.Log.Path, slog.Level(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer logFile.Close()

	// 2. Local storage and the session.
	db, err := store.Open(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	prefs := store.NewPreferences(db)

	mgr := session.NewManager(store.NewAccounts(db), func(d string) app.InstanceService {
		return mastodon.NewInstanceServiceLogging(mastodon.NewInstanceService(mastodon.NewAnonymousClient(d, cfg.Http.Timeout)), log)
	}, cfg.Instances.CacheSize, cfg.Instances.CacheTTL, log)
	anonymous := cfg.Anonymous || prefs.Bool(domain.PrefAnonymous, domain.PreferenceDefault(domain.PrefAnonymous))
	restoreSession(ctx, mgr, anonymous, cfg.Domain(), log)

	connect := func() tui.Services { return services(mgr, cfg.Http.Timeout, log) }

	// 3. Without a terminal print the timeline and exit.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return dump(ctx, connect().Timeline, mgr, query, os.Stdout)
	}

	deps := tui.Deps{
		Connect: connect,
		Session: accountsWithLogout{Manager: mgr},
		Prefs:   prefs,
		Editor:  editor.NewEnvEditor(),
		Query:   query,
		Log:     log,
	}

	// 4. Run, restarting after each browser login.
	for {
		final, err := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		root, ok := final.(tui.App)
		if !ok {
			return nil
		}
		root.Close()
		if !root.LoginRequested() {
			return nil
		}
		if err := login(ctx, cfg, mgr, log); err != nil {
			log.Error("login failed", "err", err)
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			continue
		}
		leaveAnonymous(prefs, log)
	}
}

type sessionLoader interface {
	SetAnonymous(ctx context.Context, on bool) error
	Load(ctx context.Context, anonDomain string) error
}

// restoreSession resolves the active account at startup. Failures leave the
// session anonymous and are only logged.
func restoreSession(ctx context.Context, mgr sessionLoader, anonymous bool, anonDomain string, log *slog.Logger) {
	if anonymous {
		if err := mgr.SetAnonymous(ctx, true); err != nil {
			log.Warn("entering anonymous mode", "err", err)
		}
	}
	if err := mgr.Load(ctx, anonDomain); err != nil {
		log.Warn("loading saved accounts", "err", err)
	}
}

// leaveAnonymous clears the anonymous preference after a browser login.
func leaveAnonymous(prefs app.Preferences, log *slog.Logger) {
	if err := prefs.SetBool(domain.PrefAnonymous, false); err != nil {
		log.Warn("clearing anonymous preference", "err", err)
	}
}

func openLog(path string, level slog.Level) (io.Closer, *slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	return f, slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), nil
}

// services builds the API clients for the active account, or anonymous ones
// for the active domain.
func services(mgr *session.Manager, timeout time.Duration, log *slog.Logger) tui.Services {
	client := mastodon.NewAnonymousClient(mgr.Domain(), timeout)
	if cur, ok := mgr.Current(); ok {
		client = mastodon.NewClient("https://"+cur.Domain, auth.NewFileTokenProvider(cur.TokenPath), timeout)
	}
	return tui.Services{
		Timeline:      mastodon.NewTimelineServiceLogging(mastodon.NewTimelineService(client), log),
		Statuses:      mastodon.NewStatusServiceLogging(mastodon.NewStatusService(client), log),
		Media:         mastodon.NewMediaServiceLogging(mastodon.NewMediaService(client), log),
		Accounts:      mastodon.NewAccountServiceLogging(mastodon.NewAccountService(client), log),
		Lists:         mastodon.NewListServiceLogging(mastodon.NewListService(client), log),
		Filters:       mastodon.NewFilterServiceLogging(mastodon.NewFilterService(client), log),
		Tags:          mastodon.NewTagServiceLogging(mastodon.NewTagService(client), log),
		Notifications: mastodon.NewNotificationServiceLogging(mastodon.NewNotificationService(client), log),
		Search:        mastodon.NewSearchServiceLogging(mastodon.NewSearchService(client), log),
	}
}

// login runs the browser flow against the configured instance and makes the
// resulting account active.
func login(ctx context.Context, cfg config.Config, mgr *session.Manager, log *slog.Logger) error {
	paths := auth.PathsFor(cfg.Auth.Dir, cfg.Instance)
	if err := auth.EnsureOAuthLogin(ctx, cfg.Instance, paths, cfg.Auth.CallbackPort); err != nil {
		return fmt.Errorf("oauth login: %w", err)
	}
	client := mastodon.NewClient(cfg.Instance, auth.NewFileTokenProvider(paths.Token), cfg.Http.Timeout)
	me, err := mastodon.NewAccountServiceLogging(mastodon.NewAccountService(client), log).CurrentAccount(ctx)
	if err != nil {
		return err
	}
	return mgr.SignIn(ctx, domain.AccountSession{
		AccountID: me.ID,
		Domain:    cfg.Domain(),
		Username:  me.Username,
		TokenPath: paths.Token,
	})
}

// accountsWithLogout removes the stored token when an account is signed out.
type accountsWithLogout struct {
	*session.Manager
}

func (a accountsWithLogout) SignOut(ctx context.Context, id string) error {
	accounts, err := a.Manager.Accounts(ctx)
	if err != nil {
		return err
	}
	if err := a.Manager.SignOut(ctx, id); err != nil {
		return err
	}
	for _, acc := range accounts {
		if acc.ID == id && acc.TokenPath != "" {
			return auth.Logout(auth.Paths{Token: acc.TokenPath})
		}
	}
	return nil
}

// dump writes one line per status of q to w.
func dump(ctx context.Context, tl app.TimelineService, sess app.Session, q domain.TimelineQuery, w io.Writer) error {
	if _, ok := sess.Current(); !ok && q.Kind.RequiresAuth() {
		return fmt.Errorf("the %s timeline needs a login: %w", q.Kind, domain.ErrNoSession)
	}
	statuses, _, err := tl.Fetch(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return fmt.Errorf("fetching %s: session expired, run kabinka in a terminal to log in again", q.Key())
		}
		return fmt.Errorf("fetching %s: %w", q.Key(), err)
	}
	for _, st := range statuses {
		t := st.Target()
		prefix := ""
		if st.Reblog != nil {
			prefix = "⟳ @" + st.Account.Acct + " "
		}
		text := strings.Join(strings.Fields(t.Content), " ")
		if t.SpoilerText != "" {
			text = "[CW: " + t.SpoilerText + "] " + text
		}
		if _, err := fmt.Fprintf(w, "%s %s@%s: %s\n", t.CreatedAt.Local().Format(time.DateTime), prefix, t.Account.Acct, text); err != nil {
			return err
		}
	}
	return nil
}
