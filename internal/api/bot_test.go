package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	app "date-classifier/internal/application"
	"date-classifier/internal/domain/entity"
)

func TestSelectionFromMessage_LargestPhoto(t *testing.T) {
	msg := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{
		{FileID: "small", FileUniqueID: "u1", Width: 90, FileSize: 1000},
		{FileID: "large", FileUniqueID: "u2", Width: 1280, FileSize: 90000},
	}}

	sel, ok := selectionFromMessage(msg)
	require.True(t, ok)
	require.Equal(t, "large", sel.fileID)
	require.Equal(t, app.SourceCamera, sel.source)
	require.Equal(t, "image/jpeg", sel.image.MediaType)
	require.Equal(t, "photo_u2.jpg", sel.image.Name)
	require.Equal(t, int64(90000), sel.image.Size)
}

func TestSelectionFromMessage_Document(t *testing.T) {
	msg := &tgbotapi.Message{Document: &tgbotapi.Document{
		FileID:   "doc",
		FileName: "khalas.png",
		MimeType: "image/png",
		FileSize: 4096,
	}}

	sel, ok := selectionFromMessage(msg)
	require.True(t, ok)
	require.Equal(t, "doc", sel.fileID)
	require.Equal(t, app.SourceGallery, sel.source)
	require.Equal(t, entity.SelectedImage{Name: "khalas.png", MediaType: "image/png", Size: 4096}, sel.image)
}

func TestSelectionFromMessage_Text(t *testing.T) {
	_, ok := selectionFromMessage(&tgbotapi.Message{Text: "hello"})
	require.False(t, ok)
}

func TestRenderResult(t *testing.T) {
	form := entity.NewForm("tg:1")
	form.Status = entity.StatusShowingResult
	form.Result = &entity.PredictionResult{Class: "Ajwa", Confidence: 0.92}

	require.Equal(t, "✅ Prediction Result\n\nPredicted Class: Ajwa\nConfidence Level: 92.0%", renderResult(form.ResultLines()))
}

func TestErrorText(t *testing.T) {
	require.Equal(t, "⚠️ Uploaded file size should be less than 2MB",
		errorText(&entity.ValidationError{Reason: entity.ReasonTooLarge, Message: "Uploaded file size should be less than 2MB"}))
	require.Equal(t, app.MsgNoImage, errorText(entity.ErrNoImage))
}

func TestSessionID(t *testing.T) {
	require.Equal(t, "tg:-100123", sessionID(-100123))
}
