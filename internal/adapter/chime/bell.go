package chime

import (
	"io"
	"os"

	"github.com/example/storefront-console/internal/domain"
)

// Bell — звуковое оповещение сигналом BEL в терминал оператора.
type Bell struct {
	W io.Writer
}

func (b *Bell) Play() error {
	w := b.W
	if w == nil {
		w = os.Stdout
	}
	_, err := w.Write([]byte{0x07})
	return err
}

var _ domain.Chime = (*Bell)(nil)
