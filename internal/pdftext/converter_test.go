package pdftext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestConvert_RejectsNonPDF(t *testing.T) {
	c := NewConverter(arbor.NewLogger())

	_, _, err := c.Convert(context.Background(), []byte("<html>not a pdf</html>"))
	assert.Error(t, err)
}

func TestConvert_HonorsCancelledContext(t *testing.T) {
	c := NewConverter(arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Convert(ctx, []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, context.Canceled)
}
