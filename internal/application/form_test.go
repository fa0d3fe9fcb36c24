package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
	"date-classifier/internal/infrastructure/imaging"
	"date-classifier/internal/infrastructure/predictor"
	"date-classifier/internal/infrastructure/storage"
)

type fakePredictor struct {
	mu      sync.Mutex
	calls   int
	result  *entity.PredictionResult
	err     error
	started chan struct{}
	release chan struct{}
}

func (p *fakePredictor) Predict(ctx context.Context, img *entity.CompressedImage) (*entity.PredictionResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		<-p.release
	}
	return p.result, p.err
}

func (p *fakePredictor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type failingCompressor struct{}

func (failingCompressor) Compress(ctx context.Context, img *entity.SelectedImage) (*entity.CompressedImage, error) {
	return nil, port.ErrEmptyEncoding
}

type fixture struct {
	svc       *FormService
	repo      *storage.MemoryFormRepository
	previews  *storage.MemoryPreviewStore
	predictor *fakePredictor
}

func newFixture(p *fakePredictor) *fixture {
	repo := storage.NewMemoryFormRepository()
	previews := storage.NewMemoryPreviewStore()
	svc := NewFormService(
		repo,
		previews,
		imaging.NewCompressor(800, 70),
		p,
		entity.MaxOriginalSize,
		zap.NewNop(),
	)
	return &fixture{svc: svc, repo: repo, previews: previews, predictor: p}
}

func pngImage(t *testing.T, w, h int, declaredSize int64) *entity.SelectedImage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return &entity.SelectedImage{
		Name:      "dates.png",
		MediaType: "image/png",
		Data:      buf.Bytes(),
		Size:      declaredSize,
	}
}

func TestSelect_CompressesAndShowsPreview(t *testing.T) {
	f := newFixture(&fakePredictor{})
	ctx := context.Background()

	form, err := f.svc.Select(ctx, "s1", SourceGallery, pngImage(t, 500, 1000, 1<<20))
	require.NoError(t, err)
	require.Equal(t, 800, form.Compressed.Width)
	require.Equal(t, 1600, form.Compressed.Height)
	require.Equal(t, "dates.png", form.Compressed.Name)
	require.True(t, form.CanSubmit())

	data, mt, err := f.svc.Preview(ctx, form.Compressed.PreviewID)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", mt)
	require.Equal(t, form.Compressed.Data, data)
}

func TestSelect_NoFile(t *testing.T) {
	f := newFixture(&fakePredictor{})

	_, err := f.svc.Select(context.Background(), "s1", SourceDrop, nil)
	require.ErrorIs(t, err, ErrNoFile)
	_, err = f.svc.Select(context.Background(), "s1", SourceDrop, &entity.SelectedImage{Name: "empty"})
	require.ErrorIs(t, err, ErrNoFile)
}

func TestSelect_ReleasesSupersededPreview(t *testing.T) {
	f := newFixture(&fakePredictor{})
	ctx := context.Background()

	first, err := f.svc.Select(ctx, "s1", SourceCamera, pngImage(t, 10, 10, 100))
	require.NoError(t, err)
	second, err := f.svc.Select(ctx, "s1", SourceCamera, pngImage(t, 20, 10, 100))
	require.NoError(t, err)

	require.NotEqual(t, first.Compressed.PreviewID, second.Compressed.PreviewID)
	require.Equal(t, 1, f.previews.Len())
	_, _, err = f.svc.Preview(ctx, first.Compressed.PreviewID)
	require.Error(t, err)
}

func TestSelect_CompressionFailureIsReported(t *testing.T) {
	previews := storage.NewMemoryPreviewStore()
	svc := NewFormService(storage.NewMemoryFormRepository(), previews, failingCompressor{}, &fakePredictor{}, 0, zap.NewNop())

	form, err := svc.Select(context.Background(), "s1", SourceGallery, pngImage(t, 10, 10, 100))
	require.ErrorIs(t, err, port.ErrEmptyEncoding)
	require.Nil(t, form.Compressed)
	require.Equal(t, 0, previews.Len())
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(&fakePredictor{result: &entity.PredictionResult{Class: "Ajwa", Confidence: 0.92}})
	ctx := context.Background()

	_, err := f.svc.Select(ctx, "s1", SourceGallery, pngImage(t, 50, 50, 1<<20))
	require.NoError(t, err)

	form, err := f.svc.Submit(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.StatusShowingResult, form.Status)
	require.Equal(t, []string{"Predicted Class: Ajwa", "Confidence Level: 92.0%"}, form.ResultLines())
	require.Equal(t, 1, f.predictor.Calls())
}

func TestSubmit_OversizedOriginalBlocked(t *testing.T) {
	f := newFixture(&fakePredictor{result: &entity.PredictionResult{Class: "Ajwa", Confidence: 0.9}})
	ctx := context.Background()

	img := pngImage(t, 60, 40, 6_000_000)
	img.MediaType = "image/jpeg"
	img.Name = "big.jpg"

	// Превью создаётся независимо от размера исходника
	form, err := f.svc.Select(ctx, "s1", SourceGallery, img)
	require.NoError(t, err)
	require.NotEmpty(t, form.Compressed.PreviewID)
	require.Less(t, form.Compressed.Size(), entity.MaxOriginalSize)

	form, err = f.svc.Submit(ctx, "s1")
	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, entity.ReasonTooLarge, verr.Reason)
	require.Equal(t, "Uploaded file size should be less than 2MB", form.LastError)
	require.Equal(t, entity.StatusIdle, form.Status)
	require.Equal(t, 0, f.predictor.Calls())
}

func TestSubmit_UnsupportedTypeBlocked(t *testing.T) {
	f := newFixture(&fakePredictor{})
	ctx := context.Background()

	img := pngImage(t, 10, 10, 100)
	img.MediaType = "image/webp"
	_, err := f.svc.Select(ctx, "s1", SourceDrop, img)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, "s1")
	var verr *entity.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, entity.ReasonMediaType, verr.Reason)
	require.Equal(t, 0, f.predictor.Calls())
}

func TestSubmit_ServerErrorReturnsToIdle(t *testing.T) {
	f := newFixture(&fakePredictor{err: &predictor.StatusError{Code: http.StatusInternalServerError}})
	ctx := context.Background()

	_, err := f.svc.Select(ctx, "s1", SourceGallery, pngImage(t, 10, 10, 100))
	require.NoError(t, err)

	form, err := f.svc.Submit(ctx, "s1")
	var statusErr *predictor.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, entity.StatusIdle, form.Status)
	require.Nil(t, form.Result)
	require.Nil(t, form.ResultLines())
	require.True(t, form.CanSubmit())
	require.NotEmpty(t, form.LastError)
}

func TestSubmit_WithoutImage(t *testing.T) {
	f := newFixture(&fakePredictor{})

	_, err := f.svc.Submit(context.Background(), "s1")
	require.ErrorIs(t, err, entity.ErrNoImage)
	require.Equal(t, 0, f.predictor.Calls())
}

func TestSubmit_SingleInFlight(t *testing.T) {
	p := &fakePredictor{
		result:  &entity.PredictionResult{Class: "Sukkari", Confidence: 0.7},
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	f := newFixture(p)
	ctx := context.Background()

	_, err := f.svc.Select(ctx, "s1", SourceGallery, pngImage(t, 10, 10, 100))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(ctx, "s1")
		done <- err
	}()
	<-p.started

	state, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	require.True(t, state.Loading())

	_, err = f.svc.Submit(ctx, "s1")
	require.ErrorIs(t, err, entity.ErrIllegalTransition)
	_, err = f.svc.Clear(ctx, "s1")
	require.ErrorIs(t, err, entity.ErrIllegalTransition)
	_, err = f.svc.Select(ctx, "s1", SourceGallery, pngImage(t, 10, 10, 100))
	require.ErrorIs(t, err, entity.ErrIllegalTransition)

	close(p.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, p.Calls())
	require.Equal(t, 1, f.previews.Len())
}

func TestClear_ResetsAndAllowsReselect(t *testing.T) {
	f := newFixture(&fakePredictor{result: &entity.PredictionResult{Class: "Ajwa", Confidence: 0.92}})
	ctx := context.Background()
	img := pngImage(t, 30, 30, 100)

	_, err := f.svc.Select(ctx, "s1", SourceCamera, img)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "s1")
	require.NoError(t, err)

	// С результатом на экране новый выбор недоступен до очистки
	_, err = f.svc.Select(ctx, "s1", SourceCamera, img)
	require.ErrorIs(t, err, entity.ErrIllegalTransition)

	form, err := f.svc.Clear(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.NewForm("s1"), form)
	require.Equal(t, 0, f.previews.Len())

	form, err = f.svc.Select(ctx, "s1", SourceCamera, img)
	require.NoError(t, err)
	require.True(t, form.CanSubmit())
}

func TestSelect_KeepsOnlyOriginalMetadata(t *testing.T) {
	f := newFixture(&fakePredictor{})
	ctx := context.Background()

	img := pngImage(t, 40, 40, 0)
	form, err := f.svc.Select(ctx, "s1", SourceGallery, img)
	require.NoError(t, err)
	require.Nil(t, form.Selected.Data)
	require.Equal(t, int64(len(img.Data)), form.Selected.Size)
	require.NotEmpty(t, img.Data)

	stored, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, stored.Selected.Data)
	require.Equal(t, "image/png", stored.Selected.MediaType)
}

func TestClear_RemovesStoredForm(t *testing.T) {
	f := newFixture(&fakePredictor{})
	ctx := context.Background()

	_, err := f.svc.Select(ctx, "s1", SourceCamera, pngImage(t, 10, 10, 100))
	require.NoError(t, err)
	require.Equal(t, 1, f.repo.Len())

	_, err = f.svc.Clear(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 0, f.repo.Len())

	form, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.NewForm("s1"), form)
}
