package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  *ConversionError
		want string
	}{
		{
			name: "decode failure carries details",
			err:  NewDecodeError(errors.New("Invalid PDF structure")),
			want: "Failed to convert PDF: Invalid PDF structure",
		},
		{
			name: "load failure carries details",
			err:  NewLoadError(errors.New("engine init timed out")),
			want: "Failed to convert PDF: engine init timed out",
		},
		{
			name: "render failure carries details",
			err:  NewRenderError(errors.New("page render crashed")),
			want: "Failed to convert PDF: page render crashed",
		},
		{
			name: "storage failure carries details",
			err:  NewStorageError(errors.New("bucket unavailable")),
			want: "Failed to convert PDF: bucket unavailable",
		},
		{
			name: "encode failure has fixed text",
			err:  NewEncodeError(errors.New("png: invalid image")),
			want: "Failed to create image blob",
		},
		{
			name: "encode failure without cause has fixed text",
			err:  NewEncodeError(nil),
			want: "Failed to create image blob",
		},
		{
			name: "missing cause",
			err:  NewRenderError(nil),
			want: "Failed to convert PDF: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConversionErrorKind(t *testing.T) {
	assert.Equal(t, ErrorKindLoad, NewLoadError(nil).Kind)
	assert.Equal(t, ErrorKindDecode, NewDecodeError(nil).Kind)
	assert.Equal(t, ErrorKindRender, NewRenderError(nil).Kind)
	assert.Equal(t, ErrorKindEncode, NewEncodeError(nil).Kind)
	assert.Equal(t, ErrorKindStorage, NewStorageError(nil).Kind)
}

func TestConversionErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewDecodeError(cause)

	assert.ErrorIs(t, err, cause)

	var convErr *ConversionError
	assert.ErrorAs(t, error(err), &convErr)
	assert.Equal(t, ErrorKindDecode, convErr.Kind)
}

func TestConversionResult(t *testing.T) {
	success := ConversionResult{
		ImageURL: "https://s3.local/results/id/report.png",
		File:     &File{Name: "report.png", ContentType: ContentTypePNG, Data: []byte{1}},
	}
	assert.False(t, success.Failed())
	assert.Empty(t, success.ErrorText())

	failure := ConversionResult{Err: NewDecodeError(errors.New("Invalid PDF structure"))}
	assert.True(t, failure.Failed())
	assert.Equal(t, "Failed to convert PDF: Invalid PDF structure", failure.ErrorText())
	assert.Nil(t, failure.File)
}
