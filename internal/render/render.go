// Package render turns outbox rows into display text and inline actions.
// Rendering is a pure function of the row: no I/O, no clock, no state.
package render

import (
	"regexp"
	"strings"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
)

// Message is the rendered form handed to the delivery channel.
type Message struct {
	Text    string
	Actions []adapter.Action
}

// One fixed template per kind. Placeholders are {key} lookups into the
// row's metadata map; producers only partially populate metadata, so a
// missing key substitutes as an empty string rather than failing the row.
var templates = map[model.Kind]string{
	model.KindTeamApplication:     "📝 Заявка команды «{team_name}» на чемпионат «{championship_name}» отправлена.",
	model.KindApplicationCancel:   "🚫 Заявка команды «{team_name}» на чемпионат «{championship_name}» отклонена. {reason}",
	model.KindChampionshipCancel:  "🏁 Чемпионат «{championship_name}» завершён. {reason}",
	model.KindNewMatch:            "⚽ Назначен новый матч!\n🏆 {tournament_name}\n🆚 Соперник: {opponent_name}\n📍 Место: {location_name}\n📆 Дата: {match_date} в {match_time}",
	model.KindMatchReschedule:     "📅 Матч с командой «{opponent_name}» перенесён.\nНовая дата: {match_date} в {match_time}\n📍 Место: {location_name}",
	model.KindPlayoffResult:       "🏅 Результаты плей-офф чемпионата «{championship_name}»: {result}",
	model.KindMatchReminder:       "⏰ Напоминание: завтра матч!\n🏆 {tournament_name}\n🆚 Соперник: {opponent_name}\n📍 Место: {location_name}\n📆 {match_date} в {match_time}",
	model.KindNewChampionship:     "🎉 Новый чемпионат «{championship_name}» ({sport}, {city}). Открыт приём заявок!",
	model.KindCommitteeMessage:    "📣 Сообщение от оргкомитета «{committee_name}»:\n{message}",
	model.KindTeamInvitation:      "👥 Вас приглашают в команду «{team_name}»! {message}",
	model.KindCommitteeInvitation: "🏛 Вас приглашают в оргкомитет «{committee_name}»! {message}",
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render produces the message for one outbox row. Unknown kinds fall back
// to the row's raw title/body with no actions, so every row is displayable.
func Render(n *model.Notification) Message {
	tpl, ok := templates[n.Kind]
	if !ok {
		return Message{Text: fallbackText(n)}
	}

	text := placeholderRe.ReplaceAllStringFunc(tpl, func(ph string) string {
		key := ph[1 : len(ph)-1]
		return n.Metadata[key]
	})
	text = strings.TrimRight(text, " \n")

	return Message{Text: text, Actions: invitationActions(n)}
}

// invitationActions builds the accept/decline pair for invitation kinds.
// Without an invitation_id there is nothing to respond to, so the message
// goes out plain.
func invitationActions(n *model.Notification) []adapter.Action {
	var kind string
	switch n.Kind {
	case model.KindTeamInvitation:
		kind = string(model.InvitationTeam)
	case model.KindCommitteeInvitation:
		kind = string(model.InvitationCommittee)
	default:
		return nil
	}

	id := n.Metadata["invitation_id"]
	if id == "" {
		return nil
	}
	return []adapter.Action{
		{Label: "✅ Принять", Verb: "accept", InvitationKind: kind, InvitationID: id},
		{Label: "❌ Отклонить", Verb: "decline", InvitationKind: kind, InvitationID: id},
	}
}

func fallbackText(n *model.Notification) string {
	switch {
	case n.Title != "" && n.Body != "":
		return n.Title + "\n\n" + n.Body
	case n.Title != "":
		return n.Title
	default:
		return n.Body
	}
}
