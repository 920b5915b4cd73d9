package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"fithub/internal/catalog"
	"fithub/internal/config"
	"fithub/internal/metrics"
	"fithub/internal/planner"
	"fithub/internal/recipe"
	"fithub/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poolCatalog map[string][]recipe.Recipe

func (p poolCatalog) Search(_ context.Context, params url.Values) (*catalog.Page, error) {
	pool := p[params.Get("meal_type")]
	return &catalog.Page{Results: pool, Count: len(pool)}, nil
}

func (p poolCatalog) Get(context.Context, int64) (*recipe.Recipe, error) {
	return nil, catalog.ErrUnauthorized
}

type recordingSender struct {
	sent []tgbotapi.MessageConfig
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func newTestBot(t *testing.T) (*Bot, *recordingSender) {
	t.Helper()
	cat := poolCatalog{
		"breakfast": {{ID: 1, Name: "Simit_Tost", CostPerServing: 3, PrepTime: 5, Allergens: []string{"gluten"},
			MarketCosts: map[string]float64{"A101": 2.5, "BIM": 2.75}}},
		"dinner": {{ID: 2, Name: "Kofte", CostPerServing: 9, Allergens: []string{"gluten"},
			MarketCosts: map[string]float64{"A101": 8, "BIM": 9}}},
	}
	engine := planner.NewEngine(cat, planner.WithRandom(func(int) int { return 0 }))
	out := &recordingSender{}
	return &Bot{
		out:      out,
		engine:   engine,
		store:    storage.NewMemoryStore(),
		cfg:      &config.Config{TelegramAllowedUserIDs: []int64{7}},
		dataPath: t.TempDir(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, out
}

func TestReplyRandomThenSaveAndDelete(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	text := b.reply(ctx, 7, "random", "max_cost=20")
	assert.Contains(t, text, `*Breakfast*: Simit\_Tost (3.00) ⏱ 5 min`)
	assert.Contains(t, text, "*Lunch*: _no match_")
	assert.Contains(t, text, "*Total:* 12.00")
	assert.Contains(t, text, "*Allergens:* gluten")
	assert.Contains(t, text, "• A101: 10.50 ✅")

	assert.Contains(t, b.reply(ctx, 7, "plan", ""), "Kofte")

	text = b.reply(ctx, 7, "save", "10")
	assert.Contains(t, text, "Saved plan")
	assert.Contains(t, text, "Over your 10.00 budget")

	saved, err := b.plans(7).List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	assert.Contains(t, b.reply(ctx, 7, "plans", ""), saved[0].ID)
	assert.Equal(t, "🗑 Plan deleted.", b.reply(ctx, 7, "delete", saved[0].ID))
	assert.Equal(t, "No saved plan with that id.", b.reply(ctx, 7, "delete", saved[0].ID))
	assert.Equal(t, "_No saved plans yet._", b.reply(ctx, 7, "plans", ""))
}

// slowStore widens the read-modify-write window the way disk-backed stores do.
type slowStore struct {
	*storage.MemoryStore
}

func (s slowStore) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(time.Millisecond)
	return s.MemoryStore.Get(ctx, key)
}

func TestReplyConcurrentSavesAreAllKept(t *testing.T) {
	b, _ := newTestBot(t)
	b.store = slowStore{storage.NewMemoryStore()}
	ctx := context.Background()

	b.reply(ctx, 7, "random", "")

	const n = 30
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.reply(ctx, 7, "save", "")
		}()
	}
	wg.Wait()

	saved, err := b.plans(7).List(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, n)
}

func TestReplyPlansAreScopedPerUser(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	b.reply(ctx, 7, "random", "")
	assert.Equal(t, "Nothing to save yet. Try /random first.", b.reply(ctx, 8, "save", ""))
	assert.Contains(t, b.reply(ctx, 8, "plan", ""), "*Dinner*: _no match_")
}

func TestReplyClearAndErrors(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	b.reply(ctx, 7, "random", "")
	assert.Equal(t, "🧹 Meal plan cleared.", b.reply(ctx, 7, "clear", ""))
	assert.Contains(t, b.reply(ctx, 7, "plan", ""), "*Breakfast*: _no match_")

	assert.Contains(t, b.reply(ctx, 7, "random", "cheap"), "expected key=value")
	assert.Equal(t, "Usage: /delete <plan id>", b.reply(ctx, 7, "delete", " "))
	assert.Equal(t, helpText, b.reply(ctx, 7, "", ""))
	assert.Contains(t, b.reply(ctx, 7, "status", ""), "*System Health*")
}

func TestProcessMessageSendsMarkdownReply(t *testing.T) {
	b, out := newTestBot(t)

	b.processMessage(&tgbotapi.Message{
		Text:     "/random",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/random")}},
		Chat:     &tgbotapi.Chat{ID: 55},
		From:     &tgbotapi.User{ID: 7},
	})

	require.Len(t, out.sent, 1)
	assert.Equal(t, int64(55), out.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, out.sent[0].ParseMode)
	assert.True(t, strings.HasPrefix(out.sent[0].Text, "📅 *Today's Meal Plan*"))
}

func TestFormatSavedPlansMarkdown(t *testing.T) {
	budget := 5.0
	text := formatSavedPlansMarkdown([]planner.SavedPlan{
		{ID: "a", SavedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), TotalCost: 7, Budget: &budget},
		{ID: "b", SavedAt: time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC), TotalCost: 4},
	})

	assert.Contains(t, text, "• `a` 2026-02-03: 7.00 ⚠️\n")
	assert.Contains(t, text, "• `b` 2026-02-04: 4.00\n")
}

func TestFormatHealthMarkdown(t *testing.T) {
	text := formatHealthMarkdown(metrics.Health{Goroutines: 3, DataBytes: 2000, Uptime: 90 * time.Second})
	assert.Contains(t, text, "• Goroutines: 3")
	assert.Contains(t, text, "• Disk Data: 2.0 kB")
	assert.Contains(t, text, "• Uptime: 1m30s")
}
