package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/milldrew/journeylog/internal/export"
	"github.com/milldrew/journeylog/internal/maplink"
	"github.com/milldrew/journeylog/internal/model"
	"github.com/milldrew/journeylog/internal/resolver"
	"github.com/milldrew/journeylog/internal/store"
)

// Messenger is the outbound side of the Telegram API the handler needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, filename string, contents io.Reader) error
}

// JourneyResolver resolves one share link into a journey record.
type JourneyResolver interface {
	Resolve(ctx context.Context, link string) (*model.JourneyRecord, error)
}

// Handler processes incoming messages: share links become journey rows,
// slash commands query the log.
type Handler struct {
	api       Messenger
	resolver  JourneyResolver
	store     store.Store
	allowed   map[int64]bool
	loc       *time.Location
	now       func() time.Time
	exportDir string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	API            Messenger
	Resolver       JourneyResolver
	Store          store.Store
	AllowedChatIDs []int64
	Location       *time.Location
	Now            func() time.Time
	ExportDir      string
}

// NewHandler creates a Handler. An empty allow-list rejects everyone.
func NewHandler(opts HandlerOptions) *Handler {
	allowed := make(map[int64]bool, len(opts.AllowedChatIDs))
	for _, id := range opts.AllowedChatIDs {
		allowed[id] = true
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	return &Handler{
		api:       opts.API,
		resolver:  opts.Resolver,
		store:     opts.Store,
		allowed:   allowed,
		loc:       loc,
		now:       now,
		exportDir: exportDir,
	}
}

// HandleMessage routes one incoming message. Unauthorized chats are
// silently dropped.
func (h *Handler) HandleMessage(ctx context.Context, msg *Message) {
	if msg == nil || msg.Text == "" {
		return
	}
	if !h.allowed[msg.Chat.ID] {
		zap.L().Warn("bot: message from unauthorized chat", zap.Int64("chat_id", msg.Chat.ID))
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start" || text == "/help":
		h.reply(ctx, msg.Chat.ID, helpText)
	case strings.HasPrefix(text, "/recent"):
		h.handleRecent(ctx, msg.Chat.ID, text)
	case strings.HasPrefix(text, "/export"):
		h.handleExport(ctx, msg.Chat.ID)
	default:
		h.handleLink(ctx, msg.Chat.ID, text)
	}
}

const helpText = `Send me a Google or Apple Maps share link and I'll log the journey.

Commands:
/recent [n] - show the latest journeys
/export - download the journey log as a spreadsheet`

func (h *Handler) handleLink(ctx context.Context, chatID int64, text string) {
	link := extractLink(text)
	note := strings.TrimSpace(strings.Replace(text, link, "", 1))

	rec, err := h.resolver.Resolve(ctx, link)
	if errors.Is(err, maplink.ErrUnsupportedLink) {
		h.reply(ctx, chatID, "That doesn't look like a map link I can read. Send a Google or Apple Maps share link.")
		return
	}
	if errors.Is(err, resolver.ErrResolutionFailed) {
		h.reply(ctx, chatID, "I couldn't work out either end of that journey. Nothing was logged.")
		return
	}
	if err != nil {
		zap.L().Error("bot: resolve failed", zap.Error(err))
		h.reply(ctx, chatID, "Something went wrong while resolving that link. Nothing was logged.")
		return
	}

	ts := h.now().In(h.loc)
	row := model.NewJourneyRow(rec, link, note, ts)
	stored, err := h.store.AppendJourney(ctx, row)
	if err != nil {
		zap.L().Error("bot: append journey failed", zap.Error(err))
		h.reply(ctx, chatID, "The journey resolved but could not be saved.")
		return
	}

	zap.L().Info("bot: journey logged",
		zap.String("id", stored.ID),
		zap.String("dest_town", stored.DestTown),
		zap.String("visit_type", stored.VisitType),
	)
	h.reply(ctx, chatID, formatRecord(rec, ts))
}

func (h *Handler) handleRecent(ctx context.Context, chatID int64, text string) {
	limit := 5
	if fields := strings.Fields(text); len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	rows, err := h.store.ListJourneys(ctx, limit)
	if err != nil {
		zap.L().Error("bot: list journeys failed", zap.Error(err))
		h.reply(ctx, chatID, "Could not read the journey log.")
		return
	}
	if len(rows) == 0 {
		h.reply(ctx, chatID, "No journeys logged yet.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d journeys:\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "%s  %s -> %s  (%s)", row.Processed, orDash(row.OriginTown), orDash(row.DestTown), row.VisitType)
		if row.Miles != "" {
			fmt.Fprintf(&b, "  %s mi", row.Miles)
		}
		b.WriteString("\n")
	}
	h.reply(ctx, chatID, strings.TrimRight(b.String(), "\n"))
}

func (h *Handler) handleExport(ctx context.Context, chatID int64) {
	rows, err := h.store.ListJourneys(ctx, 0)
	if err != nil {
		zap.L().Error("bot: list journeys for export failed", zap.Error(err))
		h.reply(ctx, chatID, "Could not read the journey log.")
		return
	}

	filename := fmt.Sprintf("journeys-%s.xlsx", h.now().In(h.loc).Format("2006-01-02"))
	path := filepath.Join(h.exportDir, filename)
	if err := export.WriteXLSX(path, rows); err != nil {
		zap.L().Error("bot: export failed", zap.Error(err))
		h.reply(ctx, chatID, "Export failed.")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		zap.L().Error("bot: open export failed", zap.Error(err))
		h.reply(ctx, chatID, "Export failed.")
		return
	}
	defer f.Close()

	if err := h.api.SendDocument(ctx, chatID, filename, f); err != nil {
		zap.L().Error("bot: send export failed", zap.Error(err))
		h.reply(ctx, chatID, "Export built but could not be sent.")
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.api.SendMessage(ctx, chatID, text); err != nil {
		zap.L().Error("bot: send reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// formatRecord renders the confirmation reply for a logged journey.
func formatRecord(rec *model.JourneyRecord, ts time.Time) string {
	var b strings.Builder
	b.WriteString("Journey logged\n")
	fmt.Fprintf(&b, "When: %s\n", ts.Format(model.ProcessedLayout))
	fmt.Fprintf(&b, "From: %s\n", formatEndpoint(rec.Origin))
	fmt.Fprintf(&b, "To: %s\n", formatEndpoint(rec.Destination))
	fmt.Fprintf(&b, "Type: %s", rec.Visit)
	if rec.DistanceMiles != nil {
		fmt.Fprintf(&b, "\nDistance: %.2f miles", *rec.DistanceMiles)
	}
	return b.String()
}

func formatEndpoint(loc model.LocationInfo) string {
	switch {
	case loc.Town != "" && loc.Postcode != "":
		return loc.Town + ", " + loc.Postcode
	case loc.Town != "":
		return loc.Town
	case loc.Postcode != "":
		return loc.Postcode
	default:
		return "unknown"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// extractLink picks the first URL-looking token from a message, falling back
// to the whole text so the resolver can reject it properly.
func extractLink(text string) string {
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			return field
		}
	}
	return text
}
