package web

import (
	"date-classifier/internal/domain/entity"
)

type pageView struct {
	PreviewURL    string
	Width         int
	Height        int
	CanSubmit     bool
	Loading       bool
	ShowingResult bool
	ResultLines   []string
	Notice        string
	Alert         string
}

func newPageView(form *entity.Form) pageView {
	view := pageView{
		CanSubmit:     form.CanSubmit(),
		Loading:       form.Loading(),
		ShowingResult: form.ShowingResult(),
		ResultLines:   form.ResultLines(),
	}
	if form.Compressed != nil {
		view.PreviewURL = previewURL(form.Compressed)
		view.Width = form.Compressed.Width
		view.Height = form.Compressed.Height
	}
	return view
}

type previewResponse struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

type stateResponse struct {
	Status          entity.FormStatus        `json:"status"`
	Preview         *previewResponse         `json:"preview,omitempty"`
	Result          *entity.PredictionResult `json:"result,omitempty"`
	ConfidenceLevel string                   `json:"confidence_level,omitempty"`
	LastError       string                   `json:"last_error,omitempty"`
}

func newStateResponse(form *entity.Form) stateResponse {
	resp := stateResponse{
		Status:    form.Status,
		LastError: form.LastError,
	}
	if form.Compressed != nil {
		resp.Preview = &previewResponse{
			URL:    previewURL(form.Compressed),
			Name:   form.Compressed.Name,
			Width:  form.Compressed.Width,
			Height: form.Compressed.Height,
			Size:   form.Compressed.Size(),
		}
	}
	if form.ShowingResult() {
		resp.Result = form.Result
		resp.ConfidenceLevel = form.Result.ConfidenceLevel()
	}
	return resp
}

func previewURL(c *entity.CompressedImage) string {
	return "/preview/" + c.PreviewID
}
