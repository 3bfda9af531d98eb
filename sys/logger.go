package sys

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// --- Globals & Styles ---

var (
	// Level colors
	infoColor  = color.New()
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	fatalColor = color.New(color.FgRed, color.Bold)

	// Component colors
	databaseColor = color.New()
	storeColor    = color.New()
	levelColor    = color.New(color.FgMagenta)
	selfRoleColor = color.New(color.FgMagenta)
	massPingColor = color.New(color.FgMagenta)
	nqnColor      = color.New(color.FgMagenta)
	confessColor  = color.New(color.FgMagenta)
	emojiColor    = color.New(color.FgMagenta)

	// Global state
	DefaultTimeFormat = "15:04:05"
	IsSilent          = false
	LogToFile         = false
	Logger            *slog.Logger

	// Internal state
	logFile *os.File
	logMu   sync.Mutex
)

// --- Initialization ---

func init() {
	InitLogger(false, false)
}

// InitLogger initializes the global structured logger
func InitLogger(silent bool, saveToFile bool) {
	logMu.Lock()
	defer logMu.Unlock()

	IsSilent = silent
	LogToFile = saveToFile
	level := slog.LevelInfo
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		level = slog.LevelDebug
	}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writer io.Writer = os.Stdout
	var err error

	if LogToFile {
		logName := GetProjectName() + ".log"
		logFile, err = os.OpenFile(logName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", logName, err)
		} else {
			writer = io.MultiWriter(os.Stdout, NewStripANSIWriter(logFile))
		}
	}

	color.NoColor = false

	handler := NewBotLogHandler(writer, &BotLogHandlerOptions{
		Silent: IsSilent,
		Level:  level,
	})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func SetSilentMode(silent bool) {
	InitLogger(silent, LogToFile)
}

// --- Public Logging API ---

func LogInfo(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func LogFatal(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	slog.Log(context.Background(), slog.LevelError+4, msg)
	panic(msg)
}

func LogDebug(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// Component Loggers

func LogDatabase(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "database"))
}

// LogStore logs at warn level. The store's only log lines are
// recoveries from corrupt documents.
func LogStore(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...), slog.String("component", "store"))
}

func LogLevel(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "level"))
}

func LogSelfRole(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "selfrole"))
}

func LogMassPing(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "massping"))
}

func LogNQN(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "nqn"))
}

func LogConfess(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "confess"))
}

func LogEmoji(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "emoji"))
}

// --- Log Handler Implementation ---

type BotLogHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type BotLogHandler struct {
	w    io.Writer
	opts *BotLogHandlerOptions
	mu   *sync.Mutex
}

func NewBotLogHandler(w io.Writer, opts *BotLogHandlerOptions) *BotLogHandler {
	if opts == nil {
		opts = &BotLogHandlerOptions{Level: slog.LevelInfo}
	}
	return &BotLogHandler{
		w:    w,
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *BotLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *BotLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Silent {
		return nil
	}

	timeStr := time.Now().Format(DefaultTimeFormat)
	var levelStr string
	var levelColor *color.Color

	switch {
	case r.Level >= slog.LevelError+4:
		levelStr = "FATAL"
		levelColor = fatalColor
	case r.Level >= slog.LevelError:
		levelStr = "ERROR"
		levelColor = errorColor
	case r.Level >= slog.LevelWarn:
		levelStr = "WARN"
		levelColor = warnColor
	default:
		levelStr = "INFO"
		levelColor = infoColor
	}

	component := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return false
		}
		return true
	})

	fmt.Fprintf(h.w, "%s", timeStr)

	if component != "" {
		if levelStr != "INFO" {
			fmt.Fprintf(h.w, " %s", levelColor.Sprintf("[%s]", levelStr))
		}
		compColor := getComponentColor(component)
		fmt.Fprintf(h.w, " %s\n", colorizeWithResets(compColor, fmt.Sprintf("[%s] %s", component, r.Message)))
	} else {
		fmt.Fprintf(h.w, " %s\n", colorizeWithResets(levelColor, fmt.Sprintf("[%s] %s", levelStr, r.Message)))
	}

	return nil
}

func (h *BotLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *BotLogHandler) WithGroup(name string) slog.Handler       { return h }

// --- Formatting Helpers ---

func getComponentColor(name string) *color.Color {
	switch name {
	case "DATABASE":
		return databaseColor
	case "STORE":
		return storeColor
	case "LEVEL":
		return levelColor
	case "SELFROLE":
		return selfRoleColor
	case "MASSPING":
		return massPingColor
	case "NQN":
		return nqnColor
	case "CONFESS":
		return confessColor
	case "EMOJI":
		return emojiColor
	default:
		return infoColor
	}
}

// colorizeWithResets ensures that if the text contains ANSI reset codes,
// the starting color of the Color object is re-applied after each reset.
func colorizeWithResets(c *color.Color, text string) string {
	if !strings.Contains(text, "\x1b[0m") {
		return c.Sprint(text)
	}

	marker := "@@@MSG@@@"
	wrapped := c.Sprint(marker)
	idx := strings.Index(wrapped, marker)
	if idx <= 0 {
		return text
	}
	startSeq := wrapped[:idx]

	modifiedText := strings.ReplaceAll(text, "\x1b[0m", "\x1b[0m"+startSeq)
	return c.Sprint(modifiedText)
}

// --- ANSI Stripper ---

type StripANSIWriter struct {
	w  io.Writer
	re *regexp.Regexp
}

func NewStripANSIWriter(w io.Writer) *StripANSIWriter {
	return &StripANSIWriter{
		w:  w,
		re: regexp.MustCompile(`\x1b\[[0-9;]*m`),
	}
}

func (s *StripANSIWriter) Write(p []byte) (n int, err error) {
	clean := s.re.ReplaceAll(p, []byte(""))
	if _, err := s.w.Write(clean); err != nil {
		return 0, err
	}
	return len(p), nil
}

// @src
const (
	// Configuration
	MsgConfigFailedToLoad = "Failed to load config: %v"
	MsgConfigMissingToken = "DISCORD_TOKEN is not set in .env file"

	// Data layer
	MsgDatabaseInitSuccess = "Database initialized successfully"
	MsgDatabaseTableError  = "Failed to create table: %w"
	MsgDatabasePragmaError = "Failed to set pragma %s: %w"

	// Command Registry
	MsgLoaderSyncCommands   = "Syncing commands (%s mode)..."
	MsgLoaderUpToDate       = "Commands are up to date. (Hash: %s)"
	MsgLoaderProdStarting   = "Registering commands globally..."
	MsgLoaderProdFail       = "failed to register global commands: %w"
	MsgLoaderProdRegistered = "Registered global command: %s"
	MsgLoaderDevStarting    = "Registering commands to guild: %s"
	MsgLoaderDevFail        = "Failed to register guild commands: %v"
	MsgLoaderDevRegistered  = "Registered guild command: %s"
	MsgLoaderGlobalClear    = "Clearing global commands..."
	MsgLoaderGlobalFail     = "Failed to clear global commands: %v"
	MsgLoaderCleanup        = "Cleaning up commands from previous guild: %s"
	MsgLoaderPanicRecovered = "Recovered from handler panic: %v"

	// Bot Lifecycle
	MsgBotStarting     = "Starting %s..."
	MsgBotReady        = "%s is ready! (ID: %s) (PID: %d) (took %dms)"
	MsgBotShutdown     = "Shutting down %s..."
	MsgBotRegisterFail = "Command registration failed: %v"
	MsgBotGatewayFail  = "failed to open gateway: %w"
	MsgBotSkipReg      = "Skipping command registration as requested."
	MsgDaemonStarting  = "Starting..."
	MsgDaemonShutdown  = "Shutting down all daemons..."
	MsgGenericError    = "%v"
)

// @store
const (
	MsgStoreCorruptDocument = "Corrupt document %s, treating as empty: %v"
	MsgStoreSaveFail        = "failed to save document %s: %w"
)

// @level
const (
	MsgLevelUpSendFail     = "Failed to announce level-up for %s in guild %s: %v"
	MsgLevelRewardSkipped  = "Missing permission to grant role reward %s in guild %s, skipping"
	MsgLevelAwardFail      = "Failed to award XP to %s in guild %s: %v"
	MsgLevelSweeperPruned  = "Pruned %d stale cooldown entries"
	MsgLevelDefaultMessage = "🎉 {user} leveled up to **Level {level}**!"

	// User-facing messages
	ErrLevelBotsNoXP       = "❌ Bots don't have levels!"
	ErrLevelGuildOnly      = "❌ This command only works in a server."
	ErrLevelNoRecords      = "❌ No one has earned XP yet!"
	MsgLevelRewardEarned   = "🎁 %s earned the **%s** role!"
	MsgLevelXPAdded        = "✅ Added **%d XP** to %s (Level %d → %d)"
	MsgLevelXPRemoved      = "✅ Removed **%d XP** from %s (Level %d → %d)"
	MsgLevelXPSet          = "✅ Set %s's XP to **%d** (Level %d)"
	MsgLevelXPReset        = "✅ Reset %s's XP and level"
	MsgLevelToggled        = "%s XP system"
	MsgLevelChannelIgnored = "❌ %s will no longer earn XP"
	MsgLevelChannelAllowed = "✅ %s will now earn XP"
	MsgLevelRoleIgnored    = "❌ Members with **%s** will no longer earn XP"
	MsgLevelRoleAllowed    = "✅ Members with **%s** will now earn XP"
	MsgLevelRewardSet      = "✅ Set %s as reward for reaching Level %d"
)

// @selfrole
const (
	MsgSelfRolePanelsLoaded = "Loaded %d self-role panels across %d guild(s)"
	MsgSelfRoleCreateFail   = "Failed to create role %q in guild %s: %v"
	MsgSelfRoleDeleteFail   = "Failed to delete remote role %s in guild %s: %v"

	// User-facing messages
	ErrSelfRoleGuildOnly     = "❌ Self-roles only work in a server."
	ErrSelfRoleBadCategory   = "❌ Category names cannot contain `:`"
	ErrSelfRoleNoPermission  = "❌ I don't have permission to manage roles!"
	ErrSelfRoleNotFound      = "❌ Role not found!"
	ErrSelfRoleCategoryEmpty = "❌ No roles found in category **%s**!"
	ErrSelfRoleNoCategories  = "❌ No self-roles configured yet!"
	ErrSelfRoleToggleFail    = "❌ Couldn't assign **%s**. I removed your other %s roles but the grant was denied."
	MsgSelfRoleCreated       = "✅ Created role **%s** in category **%s** (ID: %s)"
	MsgSelfRoleDeleted       = "✅ Deleted role **%s**"
	MsgSelfRoleRemoved       = "✅ Removed role: **%s**"
	MsgSelfRoleAdded         = "✅ Added role: **%s**\n(Removed other %s roles)"
	MsgSelfRolePanelCreated  = "✅ Self-role panel for **%s** created!"
)

// @massping
const (
	MsgMassPingStarted   = "Started mass ping of %s in guild %s (%d rounds)"
	MsgMassPingStopped   = "Stopped mass ping of %s"
	MsgMassPingDone      = "Finished mass ping of %s (%d/%d sent)"
	MsgMassPingSendFail  = "Failed to send ping %d/%d: %v"
	MsgMassPingRateLimit = "Rate limited, backing off for %v"

	// User-facing messages
	ErrMassPingCountLow     = "❌ Count must be at least 1!"
	ErrMassPingCountHigh    = "❌ Count cannot exceed 50 (rate limits)!"
	ErrMassPingHierarchy    = "❌ You cannot mass ping someone with an equal or higher role!"
	ErrMassPingActive       = "❌ Already mass pinging %s!"
	ErrMassPingNotActive    = "❌ No active mass ping for %s!"
	ErrMassPingNoneActive   = "❌ No mass pings are running in this server!"
	MsgMassPingActiveList   = "🔔 Active mass pings:"
	MsgMassPingConfirm      = "🔔 Starting mass ping on %s (%d times)..."
	MsgMassPingStopConfirm  = "⏹️ Stopped mass pinging %s!"
	MsgMassPingDoneFollowup = "✅ Finished pinging %s %d times!"
)

// @mod
const (
	// User-facing messages
	ErrModSelfTarget     = "❌ You can't %s yourself!"
	ErrModBotTarget      = "❌ You can't %s bots!"
	ErrModOwnerTarget    = "❌ You can't %s the server owner!"
	ErrModHierarchy      = "❌ You can't %s someone with a higher or equal role!"
	ErrModForbidden      = "❌ I don't have permission to %s this member!"
	ErrModTimeoutTooLong = "❌ Timeout duration can't exceed 28 days (40320 minutes)!"
	ErrModNotTimedOut    = "❌ %s is not timed out!"
	ErrModBadDeleteDays  = "❌ Delete messages days must be between 0-7!"
	ErrModBadUserID      = "❌ Invalid user ID!"
	ErrModUserNotFound   = "❌ User not found!"
	ErrModNotBanned      = "❌ This user is not banned!"
	ErrModBadPurgeCount  = "❌ Amount must be between 1 and 100!"
	ErrModPurgeForbidden = "❌ I don't have permission to delete messages!"
	ErrModUnbanForbidden = "❌ I don't have permission to unban users!"
	MsgModNoReason       = "No reason provided"
	MsgModPurged         = "✅ Deleted %d message(s)!"
	MsgModUntimeout      = "✅ Removed timeout from %s"
)

// @confess
const (
	MsgConfessLogFail = "Failed to log confession in guild %s: %v"

	// User-facing messages
	ErrConfessNoChannel   = "No confession channel has been set up!\nAsk an admin to use `/confession-setup` first."
	ErrConfessChannelGone = "Confession channel not found! Please ask an admin to set it up again."
	ErrConfessSendFail    = "I don't have permission to send messages in the confession channel!"
	MsgConfessSubmitted   = "Your confession has been submitted anonymously!"
	MsgConfessSetup       = "Confession channel set to %s!\nUsers can now use `/confess` to submit anonymous confessions."
)

// @nqn
const (
	MsgNQNWebhookFail = "Failed to prepare webhook for channel %s: %v"
	MsgNQNRelayFail   = "Failed to relay message in channel %s: %v"
	MsgNQNDeleteFail  = "Failed to delete original message %s: %v"

	MsgNQNCacheRefreshed = "Refreshed emoji cache for guild %s (%d animated)"
)

// @emoji
const (
	MsgEmojiNoPermission  = "❌ Missing Manage Emojis permission."
	MsgEmojiLimitReached  = "⚠️ Emoji limit reached."
	MsgEmojiImportReport  = "✅ Added: %d | ⏭️ Skipped: %d"
	MsgEmojiUploadFail    = "Failed to add %s: %v"
	MsgEmojiDirUnreadable = "Failed to read emoji directory %s: %v"
)
