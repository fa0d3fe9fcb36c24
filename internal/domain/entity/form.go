package entity

import (
	"errors"
	"fmt"
)

// FormStatus состояние формы классификации
type FormStatus string

const (
	StatusIdle          FormStatus = "idle"           // Ожидание выбора или отправки
	StatusLoading       FormStatus = "loading"        // Запрос к сервису в процессе
	StatusShowingResult FormStatus = "showing_result" // Показан результат
)

var (
	ErrIllegalTransition = errors.New("illegal form transition")
	ErrNoImage           = errors.New("no compressed image to submit")
)

// Form состояние одной сессии: выбранный файл, его сжатая версия и результат
type Form struct {
	SessionID  string
	Status     FormStatus
	Selected   *SelectedImage
	Compressed *CompressedImage
	Result     *PredictionResult
	LastError  string // последняя ошибка отправки или проверки
}

// NewForm создаёт пустую форму в состоянии idle
func NewForm(sessionID string) *Form {
	return &Form{
		SessionID: sessionID,
		Status:    StatusIdle,
	}
}

// Clone возвращает копию формы; байты изображений не копируются.
func (f *Form) Clone() *Form {
	c := *f
	if f.Selected != nil {
		s := *f.Selected
		c.Selected = &s
	}
	if f.Compressed != nil {
		cm := *f.Compressed
		c.Compressed = &cm
	}
	if f.Result != nil {
		r := *f.Result
		c.Result = &r
	}
	return &c
}

// CheckSelect сообщает, можно ли сейчас выбрать новое изображение.
func (f *Form) CheckSelect() error {
	if f.Status != StatusIdle {
		return transitionError(f.Status, "select")
	}
	return nil
}

// Attach прикрепляет новый выбор. Возвращает ID превью, которое он вытеснил.
func (f *Form) Attach(selected *SelectedImage, compressed *CompressedImage) (string, error) {
	if err := f.CheckSelect(); err != nil {
		return "", err
	}

	var superseded string
	if f.Compressed != nil {
		superseded = f.Compressed.PreviewID
	}

	f.Selected = selected
	f.Compressed = compressed
	f.Result = nil
	f.LastError = ""
	return superseded, nil
}

// BeginSubmit проверяет исходный файл и переводит форму idle -> loading.
// При ошибке проверки форма остаётся в idle, а ошибка сохраняется в LastError.
func (f *Form) BeginSubmit(maxSize int64) error {
	if f.Status != StatusIdle {
		return transitionError(f.Status, "submit")
	}
	if f.Compressed == nil || f.Selected == nil {
		return ErrNoImage
	}
	if err := f.Selected.Validate(maxSize); err != nil {
		f.Reject(err)
		return err
	}
	f.Status = StatusLoading
	f.LastError = ""
	return nil
}

// Complete переводит форму loading -> showing_result.
func (f *Form) Complete(result *PredictionResult) error {
	if f.Status != StatusLoading {
		return transitionError(f.Status, "complete")
	}
	f.Result = result
	f.Status = StatusShowingResult
	return nil
}

// Fail возвращает форму loading -> idle и запоминает ошибку.
func (f *Form) Fail(err error) error {
	if f.Status != StatusLoading {
		return transitionError(f.Status, "fail")
	}
	f.Status = StatusIdle
	if err != nil {
		f.LastError = err.Error()
	}
	return nil
}

// Reject запоминает ошибку проверки, не меняя состояния.
func (f *Form) Reject(err error) {
	f.LastError = err.Error()
}

// Clear сбрасывает форму в пустое состояние. Возвращает ID освобождаемого превью.
func (f *Form) Clear() (string, error) {
	if f.Status == StatusLoading {
		return "", transitionError(f.Status, "clear")
	}

	var released string
	if f.Compressed != nil {
		released = f.Compressed.PreviewID
	}

	f.Status = StatusIdle
	f.Selected = nil
	f.Compressed = nil
	f.Result = nil
	f.LastError = ""
	return released, nil
}

// Loading сообщает, идёт ли запрос
func (f *Form) Loading() bool {
	return f.Status == StatusLoading
}

// ShowingResult сообщает, показан ли результат
func (f *Form) ShowingResult() bool {
	return f.Status == StatusShowingResult && f.Result != nil
}

// CanSubmit сообщает, доступна ли кнопка отправки
func (f *Form) CanSubmit() bool {
	return f.Status == StatusIdle && f.Compressed != nil
}

// ResultLines возвращает строки результата для отображения или nil.
func (f *Form) ResultLines() []string {
	if !f.ShowingResult() {
		return nil
	}
	return []string{
		"Predicted Class: " + f.Result.Class,
		"Confidence Level: " + f.Result.ConfidenceLevel(),
	}
}

func transitionError(from FormStatus, action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrIllegalTransition, action, from)
}
