package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"fithub/internal/config"
	"fithub/internal/filter"
	"fithub/internal/metrics"
	"fithub/internal/planner"
	"fithub/internal/recipe"
	"fithub/internal/shopping"
	"fithub/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers meal planning commands over Telegram.
type Bot struct {
	api      *tgbotapi.BotAPI
	out      sender
	engine   *planner.Engine
	store    storage.Store
	cfg      *config.Config
	dataPath string
	logger   *slog.Logger

	mu    sync.Mutex
	repos map[int64]*planner.PlanRepository
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, engine *planner.Engine, store storage.Store, dataPath string, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", "description", resp.Description)

	return &Bot{
		api:      api,
		out:      api,
		engine:   engine,
		store:    store,
		cfg:      cfg,
		dataPath: dataPath,
		logger:   logger,
	}, nil
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if !slices.Contains(b.cfg.TelegramAllowedUserIDs, msg.From.ID) {
		b.logger.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	go b.processMessage(msg)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	text := b.reply(ctx, msg.From.ID, msg.Command(), msg.CommandArguments())
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.out.Send(out); err != nil {
		b.logger.Warn("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

// plans returns the user's repository. One repository per user is shared by
// all of that user's messages so its writes are serialized.
func (b *Bot) plans(userID int64) *planner.PlanRepository {
	b.mu.Lock()
	defer b.mu.Unlock()

	if repo, ok := b.repos[userID]; ok {
		return repo
	}
	if b.repos == nil {
		b.repos = make(map[int64]*planner.PlanRepository)
	}
	repo := planner.NewPlanRepository(b.store, "tg-"+strconv.FormatInt(userID, 10))
	b.repos[userID] = repo
	return repo
}

// reply runs one command for userID and returns the Markdown answer.
func (b *Bot) reply(ctx context.Context, userID int64, command, args string) string {
	repo := b.plans(userID)

	switch command {
	case "random":
		c, err := filter.ParseArgs(strings.Fields(args))
		if err != nil {
			return "❌ " + escape(err.Error())
		}
		plan := b.engine.GenerateRandomMealPlan(ctx, c)
		if err := repo.SaveState(ctx, planner.PlanState{Filters: c, Plan: plan}); err != nil {
			b.logger.Warn("failed to save plan state", "user_id", userID, "error", err)
		}
		return formatPlanMarkdown(plan)

	case "plan":
		state, err := repo.LoadState(ctx)
		if err != nil {
			return b.failure("loading your plan", err)
		}
		return formatPlanMarkdown(state.Plan)

	case "clear":
		state, err := repo.LoadState(ctx)
		if err != nil {
			return b.failure("loading your plan", err)
		}
		state.Plan.Clear()
		if err := repo.SaveState(ctx, state); err != nil {
			return b.failure("clearing your plan", err)
		}
		return "🧹 Meal plan cleared."

	case "save":
		var budget *float64
		if v, ok := filter.NormalizeNumber(args); ok {
			budget = &v
		}
		state, err := repo.LoadState(ctx)
		if err != nil {
			return b.failure("loading your plan", err)
		}
		if state.Plan.IsEmpty() {
			return "Nothing to save yet. Try /random first."
		}
		saved, err := repo.Save(ctx, state.Plan, budget)
		if err != nil {
			return b.failure("saving your plan", err)
		}
		text := fmt.Sprintf("💾 Saved plan `%s` (%.2f)", saved.ID, saved.TotalCost)
		if saved.OverBudget() {
			text += fmt.Sprintf("\n⚠️ Over your %.2f budget", *saved.Budget)
		}
		return text

	case "plans":
		saved, err := repo.List(ctx)
		if err != nil {
			return b.failure("listing your plans", err)
		}
		return formatSavedPlansMarkdown(saved)

	case "delete":
		id := strings.TrimSpace(args)
		if id == "" {
			return "Usage: /delete <plan id>"
		}
		if err := repo.Delete(ctx, id); err != nil {
			if errors.Is(err, planner.ErrPlanNotFound) {
				return "No saved plan with that id."
			}
			return b.failure("deleting that plan", err)
		}
		return "🗑 Plan deleted."

	case "status":
		return formatHealthMarkdown(metrics.Snapshot(b.dataPath))
	}

	return helpText
}

func (b *Bot) failure(action string, err error) string {
	b.logger.Warn("bot command failed", "action", action, "error", err)
	return fmt.Sprintf("❌ *Error %s.*", action)
}

const helpText = `🥗 *FitHub Planner*

/random [min_cost=3 max_calories=700 ...] - draw a plan
/plan - show your current plan
/clear - empty your current plan
/save [budget] - keep the current plan
/plans - list kept plans
/delete <id> - forget a kept plan
/status - service health`

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatPlanMarkdown(plan planner.MealPlan) string {
	s := planner.Summarize(plan)

	var sb strings.Builder
	sb.WriteString("📅 *Today's Meal Plan*\n\n")
	for _, mt := range recipe.MealTypes {
		r := plan.Get(mt)
		if r == nil {
			sb.WriteString(fmt.Sprintf("*%s*: _no match_\n", titleCase(string(mt))))
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s*: %s (%.2f)", titleCase(string(mt)), escape(r.Name), r.CostPerServing))
		if t := r.TotalTime(); t > 0 {
			sb.WriteString(fmt.Sprintf(" ⏱ %d min", t))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\n💰 *Total:* %.2f\n", s.Cost))
	sb.WriteString(fmt.Sprintf("🔥 %.0f kcal • P %.1fg • C %.1fg • F %.1fg\n",
		s.Nutrition.Calories, s.Nutrition.Protein, s.Nutrition.Carbs, s.Nutrition.Fat))
	if len(s.Allergens) > 0 {
		sb.WriteString(fmt.Sprintf("⚠️ *Allergens:* %s\n", escape(strings.Join(s.Allergens, ", "))))
	}

	sb.WriteString("\n🛒 *Markets*\n")
	for _, m := range shopping.Markets {
		marker := ""
		if m == s.CheapestMarket {
			marker = " ✅"
		}
		sb.WriteString(fmt.Sprintf("• %s: %.2f%s\n", m, s.MarketCosts[m], marker))
	}
	return sb.String()
}

func formatSavedPlansMarkdown(plans []planner.SavedPlan) string {
	if len(plans) == 0 {
		return "_No saved plans yet._"
	}
	var sb strings.Builder
	sb.WriteString("📚 *Saved Plans*\n\n")
	for _, p := range plans {
		sb.WriteString(fmt.Sprintf("• `%s` %s: %.2f", p.ID, p.SavedAt.Format("2006-01-02"), p.TotalCost))
		if p.OverBudget() {
			sb.WriteString(" ⚠️")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatHealthMarkdown(h metrics.Health) string {
	var sb strings.Builder
	sb.WriteString("🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %s (Alloc) / %s (Sys)\n", h.Alloc(), h.Sys()))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", h.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", h.Uptime.Truncate(time.Second)))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", h.DataSize()))
	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
