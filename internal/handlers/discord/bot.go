package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/command"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	// maxMessageLength is Discord's limit for a single message
	maxMessageLength = 2000

	defaultOutboxSize      = 64
	defaultDispatchTimeout = 5 * time.Second

	// lateReplyWindow bounds how long a timed out command may still answer
	lateReplyWindow = time.Minute
)

// Router answers a parsed chat command
type Router interface {
	Handle(ctx context.Context, cmd *models.Command) string
}

// Runner executes fn on the game loop and waits for it to finish
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// messageSender is the part of discordgo.Session the bot writes through
type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	sender     messageSender
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	router     Router
	config     *Config
	logger     *zap.Logger

	outbox chan string
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// ChannelID receives messages that are not replies, such as round results
	ChannelID string

	// Prefix marks chat commands, "!" by default
	Prefix string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	Loop Runner

	// OutboxSize bounds queued out-of-band messages
	OutboxSize int

	// DispatchTimeout bounds how long a command waits for the game loop
	DispatchTimeout time.Duration

	Logger *zap.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.ChannelID == "" {
		return nil, errors.New("channel id cannot be empty")
	}

	if cfg.Loop == nil {
		return nil, errors.New("loop cannot be nil")
	}

	if cfg.Prefix == "" {
		cfg.Prefix = command.DefaultPrefix
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = defaultOutboxSize
	}
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = defaultDispatchTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session:    session,
		sender:     session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		config:     cfg,
		logger:     logger.With(zap.String("component", "discord")),
		outbox:     make(chan string, cfg.OutboxSize),
		done:       make(chan struct{}),
	}

	session.AddHandler(bot.handleMessageCreate)
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start opens the Discord connection, registers /play and begins
// delivering out-of-band messages. The router is taken here rather than in
// Config because the game modes it serves need the bot as their sink.
func (b *Bot) Start(router Router) error {
	if router == nil {
		return errors.New("router cannot be nil")
	}
	b.router = router

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.RegisterCommand(NewPlayCommand(b.config.Prefix, b.dispatch)); err != nil {
		return fmt.Errorf("failed to register play command: %w", err)
	}

	b.startDelivery()

	b.logger.Info("bot is running", zap.String("channel_id", b.config.ChannelID))
	return nil
}

// Stop halts delivery, removes slash commands and closes the Discord
// connection. Queued messages that were not yet sent are dropped.
func (b *Bot) Stop() error {
	b.stopDelivery()

	appID := b.applicationID()
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn("failed to delete command",
				zap.String("command", cmdName),
				zap.String("command_id", cmdID),
				zap.Error(err))
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a slash command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	createdCmd, err := b.session.ApplicationCommandCreate(b.applicationID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info("registered command",
		zap.String("command", cmd.GetName()),
		zap.String("command_id", createdCmd.ID),
		zap.String("guild_id", b.config.GuildID))

	return nil
}

// Emit queues a message for the configured channel. It never blocks, so
// game code may call it from the loop goroutine.
func (b *Bot) Emit(message string) {
	if message == "" {
		return
	}

	select {
	case b.outbox <- message:
	default:
		b.logger.Warn("outbox full, dropping message", zap.Int("length", len(message)))
	}
}

func (b *Bot) applicationID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to the session user when no application ID is configured
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) startDelivery() {
	b.wg.Add(1)
	go b.deliver()
}

func (b *Bot) stopDelivery() {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()
}

// deliver sends queued messages in the order they were emitted
func (b *Bot) deliver() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case msg := <-b.outbox:
			b.send(b.config.ChannelID, msg)
		}
	}
}

// handleMessageCreate handles chat messages carrying prefixed commands
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	b.handleMessage(m.Message)
}

func (b *Bot) handleMessage(m *discordgo.Message) {
	cmd := command.Parse(b.config.Prefix, m.Content, m.Author.ID)
	if cmd == nil {
		return
	}
	cmd.DisplayName = displayName(m.Member, m.Author)

	reply, err := b.dispatch(m.ChannelID, cmd)
	if err != nil {
		b.logger.Error("failed to dispatch command",
			zap.String("command", cmd.Name),
			zap.String("identity", cmd.Identity),
			zap.Error(err))
		return
	}

	b.send(m.ChannelID, reply)
}

// handleInteraction handles slash commands
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	if h, ok := b.commands[name]; ok {
		if err := h.Handle(s, i); err != nil {
			b.logger.Error("failed to handle command", zap.String("command", name), zap.Error(err))
		}
	}
}

// dispatch runs the router on the game loop. When the loop is too busy to
// answer in time the command may still run later; its reply is then sent to
// channelID on its own.
func (b *Bot) dispatch(channelID string, cmd *models.Command) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.DispatchTimeout)
	defer cancel()

	// buffered so a callback that runs after the timeout does not block the loop
	replies := make(chan string, 1)
	handleCtx := context.WithoutCancel(ctx)
	err := b.config.Loop.Do(ctx, func() {
		replies <- b.router.Handle(handleCtx, cmd)
	})
	if errors.Is(err, context.DeadlineExceeded) {
		go b.awaitLateReply(channelID, cmd, replies)
	}
	if err != nil {
		return "", err
	}

	return <-replies, nil
}

func (b *Bot) awaitLateReply(channelID string, cmd *models.Command, replies <-chan string) {
	select {
	case reply := <-replies:
		b.logger.Warn("command finished after dispatch timeout",
			zap.String("command", cmd.Name),
			zap.String("identity", cmd.Identity))
		b.send(channelID, reply)
	case <-b.done:
	case <-time.After(lateReplyWindow):
		b.logger.Warn("command never ran", zap.String("command", cmd.Name))
	}
}

func (b *Bot) send(channelID, content string) {
	for _, part := range splitMessage(content, maxMessageLength) {
		if _, err := b.sender.ChannelMessageSend(channelID, part); err != nil {
			b.logger.Warn("failed to send message", zap.String("channel_id", channelID), zap.Error(err))
			return
		}
	}
}

// displayName prefers the guild nickname, then the global name, then the
// username. Identities are always the user ID.
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// splitMessage breaks content into parts no longer than limit bytes,
// preferring line boundaries
func splitMessage(content string, limit int) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if len(content) <= limit {
		return []string{content}
	}

	var parts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		for len(line) > limit {
			flush()
			cut := runeBoundary(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()

	return parts
}

// runeBoundary returns the largest index <= limit that does not split a rune
func runeBoundary(s string, limit int) int {
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
