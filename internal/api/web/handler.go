package web

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	app "date-classifier/internal/application"
	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

const (
	sessionCookie = "date_session"
	sessionKey    = "id"
	noticeFlash   = "notice"
	alertFlash    = "alert"
	fileField     = "file"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// maxRequestBody жёсткий предел тела запроса. Он больше предела проверки,
// чтобы крупный файл можно было выбрать и посмотреть превью.
var maxRequestBody int64 = 32 << 20

type Handler struct {
	forms *app.FormService
	log   *zap.Logger
}

func NewHandler(forms *app.FormService, log *zap.Logger) *Handler {
	return &Handler{
		forms: forms,
		log:   log,
	}
}

// Index отрисовывает форму по текущему состоянию сессии
func (h *Handler) Index(c *gin.Context) {
	sid := h.session(c)
	form, err := h.forms.State(c.Request.Context(), sid)
	if err != nil {
		h.log.Error("Failed to load form", zap.String("session", sid), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load form")
		return
	}

	view := newPageView(form)
	view.Notice, view.Alert = h.readFlash(c)
	c.HTML(http.StatusOK, "index.html", view)
}

// SelectPage принимает файл из камеры, галереи или drop-зоны
func (h *Handler) SelectPage(c *gin.Context) {
	_, err := h.selectFile(c)
	h.redirect(c, err)
}

func (h *Handler) SubmitPage(c *gin.Context) {
	_, err := h.forms.Submit(c.Request.Context(), h.session(c))
	h.redirect(c, err)
}

func (h *Handler) ClearPage(c *gin.Context) {
	_, err := h.forms.Clear(c.Request.Context(), h.session(c))
	h.redirect(c, err)
}

// Preview отдаёт превью, только если оно принадлежит форме этой сессии
func (h *Handler) Preview(c *gin.Context) {
	id := c.Param("id")
	form, err := h.forms.State(c.Request.Context(), h.session(c))
	if err != nil || form.Compressed == nil || form.Compressed.PreviewID != id {
		c.Status(http.StatusNotFound)
		return
	}

	data, mediaType, err := h.forms.Preview(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mediaType, data)
}

func (h *Handler) State(c *gin.Context) {
	form, err := h.forms.State(c.Request.Context(), h.session(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form"})
		return
	}
	c.JSON(http.StatusOK, newStateResponse(form))
}

func (h *Handler) Select(c *gin.Context) {
	form, err := h.selectFile(c)
	h.respond(c, form, err)
}

func (h *Handler) Submit(c *gin.Context) {
	form, err := h.forms.Submit(c.Request.Context(), h.session(c))
	h.respond(c, form, err)
}

func (h *Handler) Clear(c *gin.Context) {
	form, err := h.forms.Clear(c.Request.Context(), h.session(c))
	h.respond(c, form, err)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) selectFile(c *gin.Context) (*entity.Form, error) {
	sid := h.session(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody)

	mf, err := c.MultipartForm()
	if err != nil {
		h.log.Warn("Failed to parse multipart form", zap.String("session", sid), zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, app.ErrUploadTooLarge
		}
		return nil, app.ErrNoFile
	}

	fh := firstFile(mf)
	if fh == nil {
		return nil, app.ErrNoFile
	}

	img, err := readSelected(fh)
	if err != nil {
		h.log.Error("Failed to read uploaded file", zap.String("session", sid), zap.Error(err))
		return nil, app.ErrNoFile
	}

	return h.forms.Select(c.Request.Context(), sid, sourceOf(mf), img)
}

func (h *Handler) redirect(c *gin.Context, err error) {
	if err != nil {
		text, alert := app.Describe(err)
		h.writeFlash(c, text, alert)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) respond(c *gin.Context, form *entity.Form, err error) {
	if err == nil {
		c.JSON(http.StatusOK, newStateResponse(form))
		return
	}

	text, _ := app.Describe(err)
	body := gin.H{"error": text}
	if form != nil {
		body["state"] = newStateResponse(form)
	}
	c.JSON(statusFor(err), body)
}

// session возвращает ID сессии из подписанной cookie, выдавая новый при необходимости
func (h *Handler) session(c *gin.Context) string {
	s := sessions.Default(c)
	if id, ok := s.Get(sessionKey).(string); ok && id != "" {
		return "web:" + id
	}

	id := uuid.New().String()
	s.Set(sessionKey, id)
	if err := s.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err))
	}
	return "web:" + id
}

func statusFor(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, app.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNoImage), errors.Is(err, entity.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, port.ErrDecode), errors.Is(err, port.ErrEmptyEncoding):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// firstFile берёт первый файл: сначала из поля file, затем из любого другого
func firstFile(mf *multipart.Form) *multipart.FileHeader {
	if files := mf.File[fileField]; len(files) > 0 {
		return files[0]
	}

	fields := make([]string, 0, len(mf.File))
	for name := range mf.File {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		if files := mf.File[name]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func readSelected(fh *multipart.FileHeader) (*entity.SelectedImage, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &entity.SelectedImage{
		Name:      fh.Filename,
		MediaType: declaredMediaType(fh),
		Data:      data,
		Size:      fh.Size,
	}, nil
}

// declaredMediaType берёт заявленный клиентом тип, а без него тип по расширению
func declaredMediaType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

func sourceOf(mf *multipart.Form) string {
	if v := mf.Value["source"]; len(v) > 0 {
		switch v[0] {
		case app.SourceCamera, app.SourceGallery, app.SourceDrop:
			return v[0]
		}
	}
	return app.SourceGallery
}

func (h *Handler) writeFlash(c *gin.Context, text string, alert bool) {
	kind := noticeFlash
	if alert {
		kind = alertFlash
	}
	s := sessions.Default(c)
	s.AddFlash(text, kind)
	if err := s.Save(); err != nil {
		h.log.Error("Failed to save flash", zap.Error(err))
	}
}

// readFlash забирает сообщения, оставленные перед редиректом
func (h *Handler) readFlash(c *gin.Context) (notice, alert string) {
	s := sessions.Default(c)
	notices := s.Flashes(noticeFlash)
	alerts := s.Flashes(alertFlash)
	if len(notices) == 0 && len(alerts) == 0 {
		return "", ""
	}
	if err := s.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err))
	}
	return lastString(notices), lastString(alerts)
}

func lastString(values []interface{}) string {
	if len(values) == 0 {
		return ""
	}
	text, _ := values[len(values)-1].(string)
	return text
}
