package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/deepgram/shopfront/internal/services"
	"github.com/deepgram/shopfront/internal/services/audio"
	"github.com/deepgram/shopfront/internal/services/cart"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/internal/services/transcription"
	"github.com/deepgram/shopfront/internal/services/widget"
	"github.com/spf13/cobra"
)

const terminalSession = "terminal"

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		Long: `Talk to the assistant from the terminal.

Commands: /voice toggles spoken replies (typed lines stand in for speech),
/gift asks for a gift suggestion, /lang <code> switches language,
/add <product id> adds to the cart, /quit exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			return runChat(cmd.InOrStdin(), cmd.OutOrStdout(), lang)
		},
	}
	cmd.Flags().String("lang", "en", "conversation language")
	return cmd
}

// lineRecognizer treats each typed line as a recognised utterance.
type lineRecognizer struct {
	lines chan string
}

func newLineRecognizer() *lineRecognizer {
	return &lineRecognizer{lines: make(chan string, 1)}
}

// say hands line to the next recognition, replacing one left unread.
func (l *lineRecognizer) say(line string) {
	for {
		select {
		case l.lines <- line:
			return
		default:
		}
		select {
		case <-l.lines:
		default:
		}
	}
}

func (l *lineRecognizer) Recognize(ctx context.Context, _ string) (string, error) {
	select {
	case line := <-l.lines:
		if err := ctx.Err(); err != nil {
			// Leave the line for the session that replaced this one.
			select {
			case l.lines <- line:
			default:
			}
			return "", err
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// transcriptPrinter writes messages as they are appended, plus alerts.
type transcriptPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	catalog *catalog.Catalog
	printed int
	alert   string
	version uint64
}

func (p *transcriptPrinter) onChange(s widget.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Version <= p.version {
		return
	}
	p.version = s.Version

	if s.Alert != "" && s.Alert != p.alert {
		fmt.Fprintf(p.out, "! %s\n", s.Alert)
	}
	p.alert = s.Alert

	for ; p.printed < len(s.Messages); p.printed++ {
		m := s.Messages[p.printed]
		if m.Role != widget.RoleAssistant {
			continue
		}
		fmt.Fprintf(p.out, "assistant> %s\n", m.Text)
		for _, id := range m.ProductIDs {
			if prod, ok := p.catalog.ByID(id); ok {
				fmt.Fprintf(p.out, "    [%s] %s  %.2f\n", prod.ID, prod.Name, prod.Price)
			}
		}
	}
}

func runChat(in io.Reader, out io.Writer, lang string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := services.InitializeServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	cat := svc.GetCatalog()
	carts := svc.GetCartService()
	printer := &transcriptPrinter{out: out, catalog: cat}
	recognizer := newLineRecognizer()

	effects := cart.NewEffects(carts, terminalSession,
		func(state *cart.State) {
			count, subtotal := carts.Totals(state)
			fmt.Fprintf(out, "cart: %d items, %.2f\n", count, subtotal)
		},
		func(productID string) {
			if p, ok := cat.ByID(productID); ok {
				fmt.Fprintf(out, "%s: %s\n", p.Name, p.Description)
			}
		},
	)

	c := widget.NewController(ctx, widget.Config{
		Backend:       svc.GetChatService(),
		Catalog:       cat,
		Listener:      transcription.NewAdapter(recognizer),
		Speaker:       audio.NewCodec(audio.NewSpeakerPlayer()),
		Effects:       effects,
		Language:      lang,
		PeekDismissed: true,
		OnChange:      printer.onChange,
	})
	defer c.Shutdown()
	c.Open()

	fmt.Fprintln(out, "Type a message, or /quit.")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch fields := strings.Fields(line); fields[0] {
		case "/quit":
			return nil
		case "/voice":
			if !c.Toggle() {
				c.ChooseAction(ctx, widget.ActionVoice)
			}
			continue
		case "/gift":
			if !c.ChooseAction(ctx, widget.ActionGift) {
				fmt.Fprintln(out, "gift suggestions start a new conversation")
			}
			continue
		case "/lang":
			if len(fields) > 1 {
				c.SetLocale(ctx, fields[1])
			}
			continue
		case "/add":
			if len(fields) < 2 || !c.AddToCart(fields[1]) {
				fmt.Fprintln(out, "unknown product")
			}
			continue
		}

		if c.Snapshot().Mode == widget.ModeVoice {
			if !speakLine(ctx, c, recognizer, line) && c.Snapshot().Mode == widget.ModeVoice {
				fmt.Fprintln(out, "(nothing heard)")
			}
			continue
		}
		c.Submit(ctx, line)
	}
	return scanner.Err()
}

// speakLine feeds line to the microphone as one utterance and blocks until
// the resulting turn, speech included, has finished. It reports false when
// the utterance produced no turn.
func speakLine(ctx context.Context, c *widget.Controller, recognizer *lineRecognizer, line string) bool {
	if !c.Listening() && !c.Listen() {
		return false
	}
	before := len(c.Snapshot().Messages)
	recognizer.say(line)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !c.Busy() {
			if len(c.Snapshot().Messages) > before {
				return true
			}
			if !c.Listening() {
				return false
			}
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
