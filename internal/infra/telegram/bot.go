package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/config"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
	red "github.com/DMUsenkov/sports-platform-notifier/internal/infra/redis"
	"github.com/DMUsenkov/sports-platform-notifier/internal/usecase"
)

const (
	msgGenericError = "❌ Произошла ошибка. Пожалуйста, попробуйте позже."
	msgNotLinked    = "Ваш аккаунт не привязан к боту. Отправьте /start для привязки."
	msgHelp         = "Этот бот присылает уведомления спортивной платформы: назначенные матчи, " +
		"переносы, результаты плей-офф и приглашения в команды и оргкомитеты.\n\n" +
		"Кнопки меню:\n" +
		"• «Мои матчи» — предстоящие матчи\n" +
		"• «Мои команды» и «Мои чемпионаты» — ваше участие\n" +
		"• «Рекомендуемые чемпионаты» — подборка открытых чемпионатов\n" +
		"• «Приглашения» — активные приглашения\n\n" +
		"Команды /team_<id> и /championship_<id> показывают подробности."
)

// Bot is the inbound side: long polling, command/button routing, the
// contact-based phone link, and invitation callbacks. Outbound pushes go
// through Channel, not here.
type Bot struct {
	api      *tgbotapi.BotAPI
	userUC   usecase.UserUseCase
	invUC    usecase.InvitationUseCase
	platform adapter.PlatformAPI
	limiter  *red.RateLimiter
	workers  int
	log      *zerolog.Logger

	// Chats mid-way through a match decline: the next plain message from
	// such a chat is consumed as the decline reason.
	declineMu      sync.Mutex
	pendingDecline map[int64]matchDecline

	cancelPolling context.CancelFunc
}

type matchDecline struct {
	MatchID int64
	TeamID  int64
}

func NewBot(cfg *config.BotConfig, userUC usecase.UserUseCase, invUC usecase.InvitationUseCase, platformAPI adapter.PlatformAPI, limiter *red.RateLimiter, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot api: %w", err)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Bot{
		api:            api,
		userUC:         userUC,
		invUC:          invUC,
		platform:       platformAPI,
		limiter:        limiter,
		workers:        workers,
		log:            logger,
		pendingDecline: make(map[int64]matchDecline),
	}, nil
}

// API exposes the underlying client so the delivery channel can share one
// authenticated session with the polling side.
func (b *Bot) API() *tgbotapi.BotAPI { return b.api }

// StartPolling consumes updates until ctx is canceled.
func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	work := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case upd, ok := <-work:
					if !ok {
						return
					}
					if err := b.handleUpdate(ctx, upd); err != nil {
						b.log.Error().Err(err).Int("worker", workerID).Msg("update handling failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(work)
		for {
			select {
			case upd := <-updates:
				select {
				case work <- upd:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	b.log.Info().Int("workers", b.workers).Msg("telegram polling started")
	<-ctx.Done()
	b.api.StopReceivingUpdates()
	wg.Wait()
	return nil
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		return b.handleMessage(ctx, upd.Message)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	tgID := msg.From.ID

	if !b.allow(ctx, tgID, "message") {
		return nil
	}

	if msg.Contact != nil {
		return b.handleContact(ctx, msg)
	}

	// A chat waiting for a decline reason consumes the next message whole,
	// commands included.
	if req, ok := b.takePendingDecline(tgID); ok {
		return b.finishMatchDecline(ctx, tgID, req, strings.TrimSpace(msg.Text))
	}

	if msg.IsCommand() {
		cmd := msg.Command()
		switch {
		case cmd == "start":
			return b.handleStart(ctx, tgID)
		case cmd == "help":
			return b.reply(tgID, msgHelp, mainMenuKeyboard())
		case strings.HasPrefix(cmd, "team_"):
			return b.handleTeamDetails(ctx, tgID, strings.TrimPrefix(cmd, "team_"))
		case strings.HasPrefix(cmd, "championship_"):
			return b.handleChampionshipDetails(ctx, tgID, strings.TrimPrefix(cmd, "championship_"))
		default:
			return b.reply(tgID, "Неизвестная команда. Отправьте /help.", nil)
		}
	}

	return b.handleText(ctx, tgID, strings.TrimSpace(msg.Text))
}

func (b *Bot) handleStart(ctx context.Context, tgID int64) error {
	user, err := b.userUC.GetByTelegramID(ctx, tgID)
	if err == nil {
		return b.reply(tgID, fmt.Sprintf("С возвращением, %s! Вы уже получаете уведомления платформы.", user.FirstName), mainMenuKeyboard())
	}
	if !errors.Is(err, domain.ErrNotFound) {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("start: user lookup failed")
		return b.reply(tgID, msgGenericError, nil)
	}
	return b.reply(tgID,
		"Здравствуйте! Чтобы получать уведомления спортивной платформы, привяжите номер телефона, "+
			"указанный при регистрации на платформе.",
		contactKeyboard())
}

func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) error {
	tgID := msg.From.ID
	// Only the chat owner's own contact links the account.
	if msg.Contact.UserID != 0 && msg.Contact.UserID != tgID {
		return b.reply(tgID, "Пожалуйста, поделитесь своим собственным номером телефона.", contactKeyboard())
	}

	user, err := b.userUC.LinkPhone(ctx, msg.Contact.PhoneNumber, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrPhoneNotRegistered) {
			return b.reply(tgID, "Этот номер не зарегистрирован на платформе. Сначала создайте аккаунт на сайте.", nil)
		}
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("phone link failed")
		return b.reply(tgID, msgGenericError, nil)
	}
	return b.reply(tgID,
		fmt.Sprintf("✅ Готово, %s! Аккаунт привязан, уведомления платформы будут приходить сюда.", user.FirstName),
		mainMenuKeyboard())
}

func (b *Bot) handleText(ctx context.Context, tgID int64, text string) error {
	if text == btnHelp {
		return b.reply(tgID, msgHelp, mainMenuKeyboard())
	}

	user, err := b.userUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(tgID, msgNotLinked, nil)
		}
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("user lookup failed")
		return b.reply(tgID, msgGenericError, nil)
	}

	switch text {
	case btnMyMatches:
		return b.handleMyMatches(ctx, tgID, user.ID)
	case btnRecommended:
		return b.handleRecommended(ctx, tgID, user.ID)
	case btnMyTeams:
		teams, err := b.platform.UserTeams(ctx, user.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("fetch teams failed")
			return b.reply(tgID, msgGenericError, nil)
		}
		return b.reply(tgID, formatTeams(teams), nil)
	case btnMyChampionships:
		cs, err := b.platform.UserChampionships(ctx, user.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("fetch championships failed")
			return b.reply(tgID, msgGenericError, nil)
		}
		return b.reply(tgID, formatChampionships(cs), nil)
	case btnInvitations:
		invs, err := b.platform.UserInvitations(ctx, user.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("fetch invitations failed")
			return b.reply(tgID, msgGenericError, nil)
		}
		return b.reply(tgID, formatInvitations(invs), nil)
	}

	return b.reply(tgID, "Не понимаю эту команду. Используйте кнопки меню или /help.", mainMenuKeyboard())
}

// handleMyMatches sends each upcoming match as its own card so a decline
// button can sit under the specific match it withdraws from.
func (b *Bot) handleMyMatches(ctx context.Context, tgID, userID int64) error {
	matches, err := b.platform.UserMatches(ctx, userID, "upcoming")
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("fetch matches failed")
		return b.reply(tgID, msgGenericError, nil)
	}
	if len(matches) == 0 {
		return b.reply(tgID, "У вас нет предстоящих матчей.", nil)
	}

	// The decline callback needs the user's side of the match. A failed
	// teams lookup only loses the buttons, not the listing.
	myTeams := map[int64]bool{}
	if teams, err := b.platform.UserTeams(ctx, userID); err == nil {
		for _, t := range teams {
			myTeams[t.ID] = true
		}
	} else {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("teams lookup failed; match cards go out without actions")
	}

	if err := b.reply(tgID, "📅 Ваши предстоящие матчи:", nil); err != nil {
		return err
	}
	for _, m := range matches {
		var kb interface{}
		switch {
		case myTeams[m.HomeTeamID]:
			kb = matchDeclineKeyboard(m.ID, m.HomeTeamID)
		case myTeams[m.AwayTeamID]:
			kb = matchDeclineKeyboard(m.ID, m.AwayTeamID)
		}
		if err := b.reply(tgID, formatMatch(m), kb); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleRecommended(ctx context.Context, tgID, userID int64) error {
	recs, err := b.platform.RecommendedChampionships(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("fetch recommendations failed")
		return b.reply(tgID, msgGenericError, nil)
	}
	if len(recs) == 0 {
		return b.reply(tgID, "На данный момент у нас нет рекомендаций для вас. Пожалуйста, проверьте позже.", mainMenuKeyboard())
	}
	if err := b.reply(tgID, "🏆 Вот чемпионаты, которые могут вас заинтересовать:", mainMenuKeyboard()); err != nil {
		return err
	}
	for _, c := range recs {
		if err := b.reply(tgID, formatRecommendedChampionship(c), nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleTeamDetails(ctx context.Context, tgID int64, rawID string) error {
	if _, ok := b.requireLinked(ctx, tgID); !ok {
		return nil
	}
	teamID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return b.reply(tgID, "Неверный формат команды. Используйте /team_<id>, например /team_123", nil)
	}
	team, err := b.platform.TeamDetails(ctx, teamID)
	if err != nil {
		b.log.Error().Err(err).Int64("team_id", teamID).Msg("fetch team details failed")
		return b.reply(tgID, "Команда не найдена или у вас нет доступа к ней.", nil)
	}
	return b.reply(tgID, formatTeamDetails(team), nil)
}

func (b *Bot) handleChampionshipDetails(ctx context.Context, tgID int64, rawID string) error {
	if _, ok := b.requireLinked(ctx, tgID); !ok {
		return nil
	}
	championshipID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return b.reply(tgID, "Неверный формат команды. Используйте /championship_<id>, например /championship_123", nil)
	}
	c, err := b.platform.ChampionshipDetails(ctx, championshipID)
	if err != nil {
		b.log.Error().Err(err).Int64("championship_id", championshipID).Msg("fetch championship details failed")
		return b.reply(tgID, "Чемпионат не найден.", nil)
	}
	return b.reply(tgID, formatChampionshipDetails(c), nil)
}

// requireLinked resolves the chat to a linked account, telling the user to
// link first when it cannot.
func (b *Bot) requireLinked(ctx context.Context, tgID int64) (*model.User, bool) {
	user, err := b.userUC.GetByTelegramID(ctx, tgID)
	if err == nil {
		return user, true
	}
	if errors.Is(err, domain.ErrNotFound) {
		_ = b.reply(tgID, msgNotLinked, nil)
	} else {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("user lookup failed")
		_ = b.reply(tgID, msgGenericError, nil)
	}
	return nil, false
}

// handleCallback processes the accept/decline buttons rendered under
// invitation notifications. Data format: "<verb>_<kind>_<id>".
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}
	tgID := cb.From.ID

	if strings.HasPrefix(cb.Data, "decline_match_") {
		return b.startMatchDecline(ctx, cb)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "Обрабатываем ваше решение...")); err != nil {
		b.log.Debug().Err(err).Msg("callback ack failed")
	}

	verb, kind, id, err := parseCallbackData(cb.Data)
	if err != nil {
		b.log.Warn().Str("data", cb.Data).Msg("malformed callback data")
		return b.editResult(cb, "❓ Неизвестная операция.")
	}

	if _, err := b.userUC.GetByTelegramID(ctx, tgID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.reply(tgID, msgNotLinked, nil)
		}
		return b.editResult(cb, msgGenericError)
	}

	if err := b.invUC.Respond(ctx, verb, kind, id); err != nil {
		// Cause is in logs; the user only sees the generic failure text.
		return b.editResult(cb, "❌ Не удалось выполнить операцию. Пожалуйста, попробуйте позже.")
	}

	result := "❌ Вы отклонили приглашение."
	if verb == "accept" {
		if kind == model.InvitationCommittee {
			result = "✅ Вы приняли приглашение! Теперь вы член оргкомитета."
		} else {
			result = "✅ Вы приняли приглашение! Теперь вы участник команды."
		}
	}
	return b.editResult(cb, result)
}

// startMatchDecline opens the two-step decline: remember which match the
// chat is declining and ask for the reason. The next message from the chat
// completes it in finishMatchDecline.
func (b *Bot) startMatchDecline(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	tgID := cb.From.ID

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "Отклонение участия в матче...")); err != nil {
		b.log.Debug().Err(err).Msg("callback ack failed")
	}

	matchID, teamID, err := parseMatchDeclineData(cb.Data)
	if err != nil {
		b.log.Warn().Str("data", cb.Data).Msg("malformed match decline data")
		return b.reply(tgID, "❓ Неизвестная операция.", nil)
	}
	if _, ok := b.requireLinked(ctx, tgID); !ok {
		return nil
	}

	b.setPendingDecline(tgID, matchDecline{MatchID: matchID, TeamID: teamID})
	return b.reply(tgID, "Пожалуйста, укажите причину отклонения участия в матче:", nil)
}

func (b *Bot) finishMatchDecline(ctx context.Context, tgID int64, req matchDecline, reason string) error {
	if err := b.platform.DeclineMatch(ctx, req.MatchID, req.TeamID, reason); err != nil {
		b.log.Error().Err(err).
			Int64("match_id", req.MatchID).
			Int64("team_id", req.TeamID).
			Msg("match decline failed")
		return b.reply(tgID, "❌ Произошла ошибка при отклонении участия в матче. Пожалуйста, попробуйте позже.", mainMenuKeyboard())
	}
	return b.reply(tgID, "✅ Вы успешно отклонили участие в матче. Организаторы чемпионата будут уведомлены.", mainMenuKeyboard())
}

func (b *Bot) setPendingDecline(tgID int64, req matchDecline) {
	b.declineMu.Lock()
	defer b.declineMu.Unlock()
	b.pendingDecline[tgID] = req
}

// takePendingDecline pops the chat's pending decline, if any. Popping, not
// peeking, makes the reason message single-shot.
func (b *Bot) takePendingDecline(tgID int64) (matchDecline, bool) {
	b.declineMu.Lock()
	defer b.declineMu.Unlock()
	req, ok := b.pendingDecline[tgID]
	if ok {
		delete(b.pendingDecline, tgID)
	}
	return req, ok
}

// parseMatchDeclineData parses "decline_match_<matchID>_<teamID>".
func parseMatchDeclineData(data string) (matchID, teamID int64, err error) {
	rest := strings.TrimPrefix(data, "decline_match_")
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("match decline data %q: %w", data, domain.ErrInvalidArgument)
	}
	matchID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("match id %q: %w", parts[0], domain.ErrInvalidArgument)
	}
	teamID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("team id %q: %w", parts[1], domain.ErrInvalidArgument)
	}
	return matchID, teamID, nil
}

func parseCallbackData(data string) (verb string, kind model.InvitationKind, id int64, err error) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("callback data %q: %w", data, domain.ErrInvalidArgument)
	}
	id, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("callback id %q: %w", parts[2], domain.ErrInvalidArgument)
	}
	return parts[0], model.InvitationKind(parts[1]), id, nil
}

// editResult appends the decision to the original notification text and
// removes the buttons so the invitation cannot be answered twice.
func (b *Bot) editResult(cb *tgbotapi.CallbackQuery, result string) error {
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, cb.Message.Text+"\n\n"+result)
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) reply(tgID int64, text string, keyboard interface{}) error {
	msg := tgbotapi.NewMessage(tgID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	_, err := b.api.Send(msg)
	return err
}

// allow applies the per-user fixed-window throttle. A limiter outage fails
// open.
func (b *Bot) allow(ctx context.Context, tgID int64, kind string) bool {
	if b.limiter == nil {
		return true
	}
	ok, err := b.limiter.Allow(ctx, red.UserCommandKey(tgID, kind), 20, time.Minute)
	if err != nil {
		b.log.Debug().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		b.log.Info().Int64("tg_id", tgID).Msg("user throttled")
	}
	return ok
}
