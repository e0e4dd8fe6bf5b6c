// Package notify шлёт оповещения кассы в Telegram: смена статуса заказа и заканчивающиеся материалы.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/jobs"
)

// Sender: часть tgbotapi.BotAPI, которой пользуется Notifier.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	api        Sender // nil: только лог
	recipients []int64
	log        *slog.Logger
}

// New подключается к Telegram. Пустой токен: оповещения только пишутся в лог.
func New(token string, recipients []int64, log *slog.Logger) (*Notifier, error) {
	if token == "" {
		log.Warn("telegram token is empty, notifications go to log only")
		return &Notifier{recipients: recipients, log: log}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram: %w", err)
	}
	log.Info("telegram notifier ready", "bot", api.Self.UserName)
	return NewWithSender(api, recipients, log), nil
}

func NewWithSender(api Sender, recipients []int64, log *slog.Logger) *Notifier {
	return &Notifier{api: api, recipients: recipients, log: log}
}

// broadcast шлёт текст каждому получателю один раз.
func (n *Notifier) broadcast(text string) {
	if n.api == nil {
		n.log.Info("notification", "text", text)
		return
	}
	sent := map[int64]struct{}{}
	for _, chatID := range n.recipients {
		if chatID == 0 {
			continue
		}
		if _, ok := sent[chatID]; ok {
			continue
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.log.Error("send failed", "chat_id", chatID, "err", err)
			continue
		}
		sent[chatID] = struct{}{}
	}
}

func StatusText(ev jobs.Event) string {
	text := fmt.Sprintf("🧾 Заказ #%d: %s → %s", ev.ReceiptID, ev.From, ev.To)
	if ev.Settled.IsPositive() {
		text += fmt.Sprintf("\nДолг %s закрыт при выдаче.", ev.Settled.StringFixed(2))
	}
	return text
}

func LowStockText(items []inventory.Item) string {
	var b strings.Builder
	b.WriteString("⚠️ Материалы:")
	for _, it := range items {
		if it.StockLevel < 0 {
			fmt.Fprintf(&b, "\n— %s: закончились (%.2f %s)", it.Name, it.StockLevel, it.Unit)
			continue
		}
		fmt.Fprintf(&b, "\n— %s — %.2f %s заканчиваются…", it.Name, it.StockLevel, it.Unit)
	}
	return b.String()
}

func (n *Notifier) StatusChanged(_ context.Context, ev jobs.Event) {
	n.broadcast(StatusText(ev))
}

func (n *Notifier) LowStock(_ context.Context, items []inventory.Item) {
	if len(items) == 0 {
		return
	}
	n.broadcast(LowStockText(items))
}
