package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

// Reply-keyboard button captions double as the routing keys in handleText.
const (
	btnMyMatches       = "Мои матчи"
	btnMyTeams         = "Мои команды"
	btnMyChampionships = "Мои чемпионаты"
	btnRecommended     = "Рекомендуемые чемпионаты"
	btnInvitations     = "Приглашения"
	btnHelp            = "Помощь"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMyMatches)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyChampionships),
			tgbotapi.NewKeyboardButton(btnMyTeams),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRecommended),
			tgbotapi.NewKeyboardButton(btnInvitations),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelp)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// matchDeclineKeyboard is the inline control under a single match card.
// Callback data format: "decline_match_<matchID>_<teamID>".
func matchDeclineKeyboard(matchID, teamID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отклонить участие",
				fmt.Sprintf("decline_match_%d_%d", matchID, teamID)),
		),
	)
}

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Поделиться номером"),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// formatMatch renders one match card; the card carries its own decline
// button, so each match goes out as a separate message.
func formatMatch(m model.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s\n", m.TournamentName)
	fmt.Fprintf(&b, "🆚 %s — %s\n", m.HomeTeamName, m.AwayTeamName)
	fmt.Fprintf(&b, "📍 Место: %s\n", m.LocationName)
	fmt.Fprintf(&b, "📆 Дата: %s в %s", m.StartTime.Format("02.01.2006"), m.StartTime.Format("15:04"))
	return b.String()
}

func formatTeams(teams []model.Team) string {
	if len(teams) == 0 {
		return "Вы не состоите ни в одной команде."
	}
	var b strings.Builder
	b.WriteString("👥 Ваши команды:\n\n")
	for _, t := range teams {
		fmt.Fprintf(&b, "%s\n", t.Name)
		fmt.Fprintf(&b, "⚽ Вид спорта: %s\n", t.Sport)
		if t.City != "" {
			fmt.Fprintf(&b, "🌆 Город: %s\n", t.City)
		}
		if t.IsCaptain {
			b.WriteString("👑 Вы капитан этой команды\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Чтобы просмотреть подробную информацию о команде, отправьте /team_<id>, например /team_123")
	return b.String()
}

func formatTeamDetails(t *model.TeamDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 %s\n\n", t.Name)
	fmt.Fprintf(&b, "⚽ Вид спорта: %s\n", t.Sport)
	fmt.Fprintf(&b, "👨‍👩‍👧‍👦 Участников: %d\n", t.MemberCount)
	fmt.Fprintf(&b, "🏆 Побед: %d\n", t.Wins)
	fmt.Fprintf(&b, "❌ Поражений: %d\n\n", t.Losses)
	b.WriteString("👥 Состав команды:\n")
	for _, m := range t.Members {
		name := m.FirstName + " " + m.LastName
		if m.IsCaptain {
			name += " 👑"
		}
		fmt.Fprintf(&b, "- %s\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

const recommendationDescriptionLimit = 200

// formatRecommendedChampionship is the short card used in recommendation
// listings: long descriptions are truncated, and the details command is
// appended so the user can drill down.
func formatRecommendedChampionship(c model.ChampionshipDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s\n\n", c.Name)
	fmt.Fprintf(&b, "⚽ Вид спорта: %s\n", c.Sport)
	fmt.Fprintf(&b, "🌆 Город: %s\n", c.City)
	fmt.Fprintf(&b, "👥 Размер команды: %d участников\n", c.TeamSize)
	fmt.Fprintf(&b, "📅 Дедлайн подачи заявок: %s\n\n", c.ApplicationDeadline)
	if desc := c.Description; desc != "" {
		if r := []rune(desc); len(r) > recommendationDescriptionLimit {
			desc = string(r[:recommendationDescriptionLimit-3]) + "..."
		}
		fmt.Fprintf(&b, "📝 Описание:\n%s\n\n", desc)
	}
	fmt.Fprintf(&b, "Для получения подробной информации отправьте /championship_%d", c.ID)
	return b.String()
}

func formatChampionshipDetails(c *model.ChampionshipDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s\n\n", c.Name)
	fmt.Fprintf(&b, "⚽ Вид спорта: %s\n", c.Sport)
	fmt.Fprintf(&b, "🌆 Город: %s\n", c.City)
	fmt.Fprintf(&b, "👥 Размер команды: %d участников\n", c.TeamSize)
	fmt.Fprintf(&b, "📅 Дедлайн подачи заявок: %s\n", c.ApplicationDeadline)
	if len(c.Stages) > 0 {
		b.WriteString("\n📊 Этапы чемпионата:\n")
		for _, s := range c.Stages {
			status := "⏳ Не опубликован"
			if s.IsPublished {
				status = "✅ Опубликован"
			}
			fmt.Fprintf(&b, "- %s: %s\n", s.Name, status)
		}
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\n📝 Описание:\n%s\n", c.Description)
	}
	org := c.OrgName
	if org == "" {
		org = "Не указан"
	}
	fmt.Fprintf(&b, "\n👔 Организатор: %s\n", org)
	if c.IsStopped {
		b.WriteString("⚠️ Чемпионат остановлен\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatChampionships(cs []model.Championship) string {
	if len(cs) == 0 {
		return "Вы не участвуете ни в одном чемпионате."
	}
	var b strings.Builder
	b.WriteString("🏆 Ваши чемпионаты:\n\n")
	for _, c := range cs {
		fmt.Fprintf(&b, "%s\n", c.Name)
		fmt.Fprintf(&b, "⚽ Вид спорта: %s\n", c.Sport)
		fmt.Fprintf(&b, "🌆 Город: %s\n", c.City)
		status := "Неизвестно"
		switch c.Status {
		case "active":
			status = "Активный"
		case "past":
			status = "Завершён"
		}
		fmt.Fprintf(&b, "📊 Статус: %s\n", status)
		if c.Position > 0 {
			fmt.Fprintf(&b, "🏅 Позиция: %d\n", c.Position)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatInvitations(invs []model.Invitation) string {
	if len(invs) == 0 {
		return "У вас нет активных приглашений."
	}
	var b strings.Builder
	b.WriteString("✉️ Ваши приглашения:\n\n")
	for _, inv := range invs {
		switch inv.Kind {
		case model.InvitationCommittee:
			fmt.Fprintf(&b, "🏛 Оргкомитет «%s»\n", inv.FromName)
		default:
			fmt.Fprintf(&b, "👥 Команда «%s»\n", inv.FromName)
		}
		if inv.Message != "" {
			fmt.Fprintf(&b, "💬 %s\n", inv.Message)
		}
		b.WriteString("\n")
	}
	b.WriteString("Ответить на приглашение можно кнопками под соответствующим уведомлением.")
	return b.String()
}
