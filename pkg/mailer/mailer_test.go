package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return d.err
}

func TestSendTestimonialRequest(t *testing.T) {
	d := &captureDialer{}
	s := &Sender{dialer: d, from: "NOVOCODE <contato@novocode.com.br>"}

	err := s.SendTestimonialRequest(context.Background(), "Maria", "maria@x.com",
		"https://novocode.com.br/depoimento/tok-123")

	require.NoError(t, err)
	require.Len(t, d.messages, 1)
	m := d.messages[0]
	assert.Equal(t, []string{"NOVOCODE <contato@novocode.com.br>"}, m.GetHeader("From"))
	assert.Contains(t, m.GetHeader("To")[0], "maria@x.com")

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "tok-123")
}

func TestSendTestimonialRequest_DeliveryFailure(t *testing.T) {
	s := &Sender{dialer: &captureDialer{err: errors.New("535 auth failed")}}

	err := s.SendTestimonialRequest(context.Background(), "Maria", "maria@x.com", "https://x/depoimento/t")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 auth failed")
}

func TestSendTestimonialRequest_Disabled(t *testing.T) {
	s := NewSender(Config{})

	err := s.SendTestimonialRequest(context.Background(), "Maria", "maria@x.com", "https://x/depoimento/t")

	assert.ErrorIs(t, err, ErrDisabled)
}
