package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/reverie/internal/ai"
	"github.com/keshon/reverie/internal/config"
	"github.com/keshon/reverie/internal/mind"
	"github.com/keshon/reverie/internal/storage"
)

// Bot is the consuming caller of the thought engine: it records every user
// message as an interaction, and before composing a reply asks the engine
// for at most one surfacable thought. The engine never blocks or breaks the
// reply path; a failed thought lookup just means a plain reply.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	st       *storage.Storage
	runner   *mind.Runner
	provider ai.Provider
	identity string
}

// StartBot runs the Discord bot until ctx is done.
func StartBot(ctx context.Context, cfg *config.Config, st *storage.Storage, runner *mind.Runner, provider ai.Provider, identity string) error {
	b := &Bot{
		cfg:      cfg,
		st:       st,
		runner:   runner,
		provider: provider,
		identity: identity,
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s", s.State.User.Username)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	userID := m.Author.ID
	now := time.Now()

	if err := b.st.AppendDialogue(userID, storage.DialogueRecord{
		Role:    "user",
		Content: m.Content,
		At:      now,
	}); err != nil {
		log.Printf("[ERR] append dialogue: %v", err)
	}
	b.runner.RecordInteraction(userID, now)

	mentioned := m.GuildID == "" // DMs always count as addressed
	for _, user := range m.Mentions {
		if user.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return
	}

	b.reply(s, m, userID)
}

// reply composes and sends the next outgoing message, injecting at most one
// surfacable thought ahead of the reply body.
func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, userID string) {
	thought, err := b.runner.GetSurfacableThought(userID)
	if err != nil {
		log.Printf("[ERR] surfacable thought lookup: %v", err)
		thought = nil
	}

	body := b.composeReply(userID)

	var parts []string
	if thought != nil {
		if phrased := b.runner.AuthorThoughtText(userID, thought); phrased != "" {
			parts = append(parts, phrased)
		}
	}
	if body != "" {
		parts = append(parts, body)
	}
	if len(parts) == 0 {
		return
	}
	out := strings.Join(parts, "\n\n")

	for _, chunk := range splitMessage(out, 2000) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Printf("[ERR] send failed %s: %v", m.ChannelID, err)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}

	// Acknowledge only after the message actually went out.
	if thought != nil {
		b.runner.OnThoughtSurfaced(userID, thought.ID)
		log.Printf("[MIND] thought surfaced user=%s id=%s", userID, thought.ID)
	}

	if err := b.st.AppendDialogue(userID, storage.DialogueRecord{
		Role:    "assistant",
		Content: out,
		At:      time.Now(),
	}); err != nil {
		log.Printf("[ERR] append dialogue: %v", err)
	}
}

// composeReply builds a plain conversational reply from identity plus the
// recent dialogue. Returns "" on generation failure; the thought (if any)
// still goes out alone.
func (b *Bot) composeReply(userID string) string {
	lines, err := b.st.RecentDialogue(userID, 12)
	if err != nil {
		log.Printf("[ERR] recent dialogue: %v", err)
		return ""
	}

	msgs := []ai.Message{{Role: "system", Content: b.identity}}
	for _, l := range lines {
		role := "user"
		if l.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: l.Content})
	}

	reply, err := b.provider.Generate(msgs)
	if err != nil {
		log.Printf("[ERR] generate reply: %v", err)
		return ""
	}
	return strings.TrimSpace(reply)
}

func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut == -1 {
			cut = limit
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}
