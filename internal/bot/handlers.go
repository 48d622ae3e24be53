package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/omarshaarawi/golfbot/internal/config"
	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/service"
)

const helpText = `Available commands:
/standings - Net standings with weekly nets
/leaderboard [net|total] - Compact leaderboard
/awards [week] - Low-Man and High-Man
/handicaps - Current handicaps
/player <name> - One player's card
/course - Current week and next course
/summary - Latest weekly summary`

const adminHelpText = `

Admin commands:
/score <week> <score> <player> - Record a score (x, ns or dnp for did not play)
/hc <week> <value|-> <player> - Set or clear a handicap
/setcourse <week> <course> - Set a week's course
/addweek - Open a new week
/addplayer <name> - Add a player
/recompute - Fill handicaps from scores
/news <week> <title> | <content> - Post a weekly summary
/refresh - Reload league data
/history - Recent saved versions`

const historyLimit = 10

type Handler struct {
	leagueService *service.LeagueService
	admins        config.TelegramBot
}

func NewHandler(leagueService *service.LeagueService, admins config.TelegramBot) *Handler {
	return &Handler{leagueService: leagueService, admins: admins}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	m := update.Message
	msg := tgbotapi.NewMessage(m.Chat.ID, "")
	command := strings.ToLower(m.Command())
	args := strings.TrimSpace(m.CommandArguments())
	msg.ParseMode = tgbotapi.ModeMarkdown

	switch command {
	case "start":
		msg.Text = "Welcome to GolfBot! Use /help to see available commands."
	case "help":
		msg.Text = helpText
		if h.isAdmin(m) {
			msg.Text += adminHelpText
		}
		msg.ParseMode = ""
	case "standings":
		h.reply(&msg, "Error fetching standings", func() (string, error) {
			return h.leagueService.GetStandings(ctx)
		})
	case "leaderboard":
		h.reply(&msg, "Error fetching leaderboard", func() (string, error) {
			return h.leagueService.GetLeaderboard(ctx, args)
		})
	case "awards":
		h.handleAwards(ctx, &msg, args)
	case "handicaps":
		h.reply(&msg, "Error fetching handicaps", func() (string, error) {
			return h.leagueService.GetHandicaps(ctx)
		})
	case "player":
		if args == "" {
			msg.Text = "Please provide a player name. Usage: /player <name>"
			return msg
		}
		h.reply(&msg, "Error fetching player", func() (string, error) {
			return h.leagueService.GetPlayer(ctx, args)
		})
	case "course":
		h.reply(&msg, "Error fetching course", func() (string, error) {
			return h.leagueService.GetCourse(ctx)
		})
	case "summary":
		h.reply(&msg, "Error fetching summary", func() (string, error) {
			return h.leagueService.GetSummary(ctx)
		})
	case "score", "hc", "setcourse", "addweek", "addplayer", "recompute", "news", "refresh", "history":
		msg.ParseMode = ""
		if !h.isAdmin(m) {
			slog.Info("Rejected admin command", "command", command, "chat", m.Chat.ID)
			msg.Text = "⛔ That command is for league admins."
			return msg
		}
		h.handleAdmin(ctx, &msg, command, args)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) reply(msg *tgbotapi.MessageConfig, errPrefix string, fn func() (string, error)) {
	text, err := fn()
	if err != nil {
		msg.Text = fmt.Sprintf("%s: %v", errPrefix, err)
		msg.ParseMode = ""
		return
	}
	msg.Text = text
}

func (h *Handler) isAdmin(m *tgbotapi.Message) bool {
	if h.admins.IsAdmin(m.Chat.ID) {
		return true
	}
	return m.From != nil && h.admins.IsAdmin(m.From.ID)
}

func (h *Handler) handleAwards(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	week := 0
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			msg.Text = "Please provide a week number. Usage: /awards [week]"
			return
		}
		week = n
	}
	h.reply(msg, "Error fetching awards", func() (string, error) {
		return h.leagueService.GetWeeklyAwards(ctx, week)
	})
}

func (h *Handler) handleAdmin(ctx context.Context, msg *tgbotapi.MessageConfig, command, args string) {
	var (
		text string
		err  error
	)

	switch command {
	case "score":
		text, err = h.handleScore(ctx, args)
	case "hc":
		text, err = h.handleHandicap(ctx, args)
	case "setcourse":
		text, err = h.handleSetCourse(ctx, args)
	case "addweek":
		var week int
		week, err = h.leagueService.AddWeek(ctx)
		text = fmt.Sprintf("✅ Opened week %d.", week)
	case "addplayer":
		if args == "" {
			text = "Usage: /addplayer <name>"
			break
		}
		err = h.leagueService.AddPlayer(ctx, args)
		text = fmt.Sprintf("✅ Added %s.", args)
	case "recompute":
		var filled int
		filled, err = h.leagueService.RecomputeHandicaps(ctx)
		text = fmt.Sprintf("✅ Recomputed handicaps, %d filled.", filled)
	case "news":
		text, err = h.handleNews(ctx, args)
	case "refresh":
		err = h.leagueService.Refresh(ctx)
		text = "✅ League data reloaded."
	case "history":
		text, err = h.leagueService.GetHistory(ctx, historyLimit)
	}

	if err != nil {
		slog.Error("Admin command failed", "command", command, "args", args, "error", err)
		msg.Text = fmt.Sprintf("Error running /%s: %v", command, err)
		return
	}
	msg.Text = text
}

// splitWeek peels a leading week number off the arguments.
func splitWeek(args string) (int, string, bool) {
	head, rest, _ := strings.Cut(args, " ")
	week, err := strconv.Atoi(head)
	if err != nil || week < 1 {
		return 0, "", false
	}
	return week, strings.TrimSpace(rest), true
}

func (h *Handler) handleScore(ctx context.Context, args string) (string, error) {
	week, rest, ok := splitWeek(args)
	cell, player, _ := strings.Cut(rest, " ")
	player = strings.TrimSpace(player)
	if !ok || cell == "" || player == "" {
		return "Usage: /score <week> <score> <player>", nil
	}

	name, err := h.leagueService.RecordScore(ctx, week, player, models.Cell(cell))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Week %d: %s → %s", week, name, cell), nil
}

func (h *Handler) handleHandicap(ctx context.Context, args string) (string, error) {
	week, rest, ok := splitWeek(args)
	value, player, _ := strings.Cut(rest, " ")
	player = strings.TrimSpace(player)
	if !ok || value == "" || player == "" {
		return "Usage: /hc <week> <value|-> <player>", nil
	}

	var hc models.Handicap
	if value != "-" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "Handicap must be a whole number of 0 or more, or - to clear.", nil
		}
		hc = models.HandicapOf(n)
	}

	name, err := h.leagueService.SetHandicap(ctx, week, player, hc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Week %d handicap for %s: %s", week, name, hc), nil
}

func (h *Handler) handleSetCourse(ctx context.Context, args string) (string, error) {
	week, course, ok := splitWeek(args)
	if !ok {
		return "Usage: /setcourse <week> <course>", nil
	}
	if err := h.leagueService.SetCourse(ctx, week, course); err != nil {
		return "", err
	}
	if course == "" {
		return fmt.Sprintf("✅ Cleared the week %d course.", week), nil
	}
	return fmt.Sprintf("✅ Week %d course: %s", week, course), nil
}

func (h *Handler) handleNews(ctx context.Context, args string) (string, error) {
	week, rest, ok := splitWeek(args)
	title, content, found := strings.Cut(rest, "|")
	title = strings.TrimSpace(title)
	if !ok || !found || title == "" {
		return "Usage: /news <week> <title> | <content>", nil
	}

	if err := h.leagueService.SaveSummary(ctx, week, title, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Posted the week %d summary.", week), nil
}
