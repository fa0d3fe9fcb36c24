package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"date-classifier/internal/domain/entity"
	"date-classifier/internal/domain/port"
)

func TestDescribe(t *testing.T) {
	text, alert := Describe(&entity.ValidationError{Reason: entity.ReasonTooLarge, Message: "Uploaded file size should be less than 2MB"})
	require.True(t, alert)
	require.Equal(t, "Uploaded file size should be less than 2MB", text)

	text, alert = Describe(ErrUploadTooLarge)
	require.True(t, alert)
	require.Equal(t, MsgUploadLimit, text)

	cases := map[error]string{
		ErrNoFile:         MsgNoFile,
		entity.ErrNoImage: MsgNoImage,
		fmt.Errorf("%w: cannot submit while loading", entity.ErrIllegalTransition): MsgBusy,
		fmt.Errorf("compress image: %w", port.ErrDecode):                           MsgUnreadable,
		fmt.Errorf("compress image: %w", port.ErrEmptyEncoding):                    MsgUnreadable,
		errors.New("connection refused"):                                           MsgPredictError,
	}
	for err, want := range cases {
		text, alert := Describe(err)
		require.False(t, alert)
		require.Equal(t, want, text, err.Error())
	}
}
