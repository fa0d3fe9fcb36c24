package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "date-classifier/internal/application"
	"date-classifier/internal/domain/entity"
)

const (
	msgStart = `🌴 Hello! I detect the type of a date fruit from a photo.

📸 Take a photo or attach an image from your gallery, check the preview and press Submit.

📋 Commands:
/submit — classify the current image
/clear — reset and start over
/help — help`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of a date (or attach a jpg, png or gif file)
2️⃣ Check the preview and press Submit
3️⃣ Read the predicted class and confidence level
4️⃣ Press Clear to try another date

💡 Original files must be jpg, png or gif and smaller than 2MB.`

	msgSendPhoto      = "📸 Please send a photo of a date fruit."
	msgUnknownCommand = "❓ Unknown command. Use /help."
	msgPreview        = "🖼 Preview %dx%d. Press Submit to classify."
	msgLoading        = "⏳ Loading..."
	msgCleared        = "🧹 Cleared. Send a new photo."
	msgResultHeader   = "✅ Prediction Result"

	callbackSubmit = "submit"
	callbackClear  = "clear"
)

// Bot представляет Telegram-бота
type Bot struct {
	api    *tgbotapi.BotAPI
	forms  *app.FormService
	client *http.Client
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, forms *app.FormService, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("Authorized on account", zap.String("username", api.Self.UserName))

	return &Bot{
		api:    api,
		forms:  forms,
		client: http.DefaultClient,
		log:    log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Запрос к классификатору может быть долгим, не блокируем другие чаты
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото с камеры или файл из галереи
	if sel, ok := selectionFromMessage(msg); ok {
		b.handleSelection(ctx, msg.Chat.ID, sel)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "submit":
		b.submit(ctx, msg.Chat.ID)

	case "clear", "cancel":
		b.clear(ctx, msg.Chat.ID)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handleCallback обрабатывает нажатия кнопок Submit и Clear
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Отвечаем сразу: запрос к классификатору может идти дольше, чем Telegram ждёт ответа
	b.answerCallback(tgbotapi.NewCallback(cq.ID, ""))
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	switch cq.Data {
	case callbackSubmit:
		b.submit(ctx, chatID)
	case callbackClear:
		b.clear(ctx, chatID)
	}
}

// handleSelection скачивает файл, сжимает его и отправляет превью
func (b *Bot) handleSelection(ctx context.Context, chatID int64, sel selection) {
	data, err := b.downloadFile(ctx, sel.fileID)
	if err != nil {
		b.log.Error("Error downloading file", zap.Int64("chat", chatID), zap.Error(err))
		b.sendMessage(chatID, app.MsgUnreadable)
		return
	}

	img := sel.image
	img.Data = data
	if img.Size == 0 {
		img.Size = int64(len(data))
	}

	form, err := b.forms.Select(ctx, sessionID(chatID), sel.source, &img)
	if err != nil {
		b.sendMessage(chatID, errorText(err))
		return
	}

	preview, _, err := b.forms.Preview(ctx, form.Compressed.PreviewID)
	if err != nil {
		b.log.Error("Error reading preview", zap.Int64("chat", chatID), zap.Error(err))
		b.sendMessage(chatID, app.MsgUnreadable)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: form.Compressed.Name, Bytes: preview})
	photo.Caption = fmt.Sprintf(msgPreview, form.Compressed.Width, form.Compressed.Height)
	photo.ReplyMarkup = keyboard("Submit", callbackSubmit)
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error("Error sending preview", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// submit отправляет изображение на классификацию и сообщает результат
func (b *Bot) submit(ctx context.Context, chatID int64) {
	state, err := b.forms.State(ctx, sessionID(chatID))
	if err == nil && state.CanSubmit() {
		b.sendMessage(chatID, msgLoading)
	}

	form, err := b.forms.Submit(ctx, sessionID(chatID))
	if err != nil {
		b.sendMessage(chatID, errorText(err))
		return
	}

	b.sendResult(chatID, form)
}

// clear сбрасывает форму чата
func (b *Bot) clear(ctx context.Context, chatID int64) {
	if _, err := b.forms.Clear(ctx, sessionID(chatID)); err != nil {
		b.sendMessage(chatID, errorText(err))
		return
	}
	b.sendMessage(chatID, msgCleared)
}

func (b *Bot) sendResult(chatID int64, form *entity.Form) {
	lines := form.ResultLines()
	if lines == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, renderResult(lines))
	msg.ReplyMarkup = keyboard("Clear", callbackClear)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Error sending result", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Error sending message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (b *Bot) answerCallback(cfg tgbotapi.CallbackConfig) {
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Warn("Error answering callback", zap.Error(err))
	}
}

// selection описывает файл, выбранный в сообщении, до скачивания
type selection struct {
	fileID string
	source string
	image  entity.SelectedImage
}

// selectionFromMessage берёт ровно один файл из сообщения: фото максимального
// размера или вложенный документ.
func selectionFromMessage(msg *tgbotapi.Message) (selection, bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return selection{
			fileID: photo.FileID,
			source: app.SourceCamera,
			image: entity.SelectedImage{
				Name:      "photo_" + photo.FileUniqueID + ".jpg",
				MediaType: "image/jpeg",
				Size:      int64(photo.FileSize),
			},
		}, true
	}

	if doc := msg.Document; doc != nil {
		name := doc.FileName
		if name == "" {
			name = "document_" + doc.FileUniqueID
		}
		return selection{
			fileID: doc.FileID,
			source: app.SourceGallery,
			image: entity.SelectedImage{
				Name:      name,
				MediaType: doc.MimeType,
				Size:      int64(doc.FileSize),
			},
		}, true
	}

	return selection{}, false
}

// errorText готовит сообщение об ошибке; ошибки проверки помечаются как предупреждение
func errorText(err error) string {
	text, alert := app.Describe(err)
	if alert {
		return "⚠️ " + text
	}
	return text
}

func renderResult(lines []string) string {
	return msgResultHeader + "\n\n" + strings.Join(lines, "\n")
}

func keyboard(text, data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data)),
	)
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}
